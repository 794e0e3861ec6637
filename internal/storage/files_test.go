package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wattwise/bill-ingest-service/internal/models"
)

func TestContentTypeForFile(t *testing.T) {
	tests := map[string]string{
		"bill.png":        "image/png",
		"BILL.JPG":        "image/jpeg",
		"scan.jpeg":       "image/jpeg",
		"statement.pdf":   "application/pdf",
		"usage.csv":       "text/csv",
		"usage.xls":       "application/vnd.ms-excel",
		"usage.xlsx":      "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"photo.heic":      "application/octet-stream",
		"no-extension":    "application/octet-stream",
		"2024/03/a.b.pdf": "application/pdf",
	}

	for name, want := range tests {
		assert.Equal(t, want, ContentTypeForFile(name), name)
	}
}

func TestResolveContentType(t *testing.T) {
	assert.Equal(t, "image/webp", ResolveContentType("image/webp", "bill.png"))
	assert.Equal(t, "text/csv", ResolveContentType("text/csv; charset=utf-8", "x"))
	assert.Equal(t, "image/png", ResolveContentType("", "bill.png"))
	assert.Equal(t, "image/png", ResolveContentType("  ", "bill.png"))
}

func TestGetFileExtension_RoundTrip(t *testing.T) {
	for _, ext := range []string{".png", ".jpg", ".pdf", ".csv", ".xls", ".xlsx"} {
		assert.Equal(t, ext, GetFileExtension(ContentTypeForFile("f"+ext)))
	}
	assert.Equal(t, ".bin", GetFileExtension("application/zip"))
}

func TestFetcher_FetchURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/files/bill.pdf":
			_, _ = w.Write([]byte("%PDF-1.7"))
		case "/files/typed":
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte{0xff, 0xd8})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher(time.Second, strings.TrimPrefix(srv.URL, "http://"))

	doc, err := f.Fetch(context.Background(), srv.URL+"/files/typed")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", doc.ContentType)
	assert.Equal(t, "typed", doc.Name)

	doc, err = f.Fetch(context.Background(), srv.URL+"/files/bill.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7"), doc.Data)
	assert.Equal(t, "bill.pdf", doc.Name)

	_, err = f.Fetch(context.Background(), srv.URL+"/files/missing.png")
	assert.ErrorIs(t, err, models.ErrFileNotFound)
}

func TestFetcher_RefusesOtherHosts(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte("internal"))
	}))
	defer srv.Close()

	for _, f := range []*Fetcher{
		NewFetcher(time.Second),
		NewFetcher(time.Second, "minio.internal:9000"),
	} {
		_, err := f.Fetch(context.Background(), srv.URL+"/latest/meta-data")
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	}
	assert.Zero(t, hits)
}

func TestFetcher_RejectsOversizedFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	f := NewFetcher(time.Second, strings.TrimPrefix(srv.URL, "http://"))
	f.maxBytes = 4
	_, err := f.Fetch(context.Background(), srv.URL+"/big.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 4 bytes")

	f.maxBytes = 10
	doc, err := f.Fetch(context.Background(), srv.URL+"/exact.pdf")
	require.NoError(t, err)
	assert.Len(t, doc.Data, 10)
}

func TestFetcher_EmptyRef(t *testing.T) {
	_, err := NewFetcher(time.Second).Fetch(context.Background(), " ")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestObjectName(t *testing.T) {
	BucketName = "bills"
	assert.Equal(t, "2024/03/a.png", objectName("bills/2024/03/a.png"))
	assert.Equal(t, "2024/03/a.png", objectName("2024/03/a.png"))
}
