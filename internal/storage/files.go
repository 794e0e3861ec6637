package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/wattwise/bill-ingest-service/internal/models"
)

// maxFetchBytes bounds documents pulled back for a retry
const maxFetchBytes = 25 << 20

// Fetcher resolves file refs: http(s) URLs on an allowed host are downloaded,
// anything else is read from the MinIO bucket.
type Fetcher struct {
	httpClient   *http.Client
	allowedHosts map[string]bool
	maxBytes     int64
}

// NewFetcher creates a Fetcher. allowedHosts are host[:port] values URL refs
// may point at, normally the MinIO endpoint; with none, URL refs are refused.
func NewFetcher(timeout time.Duration, allowedHosts ...string) *Fetcher {
	hosts := make(map[string]bool, len(allowedHosts))
	for _, h := range allowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts[h] = true
		}
	}
	return &Fetcher{
		httpClient:   &http.Client{Timeout: timeout},
		allowedHosts: hosts,
		maxBytes:     maxFetchBytes,
	}
}

// Fetch returns the document behind ref with its content type resolved
func (f *Fetcher) Fetch(ctx context.Context, ref string) (*models.Document, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty file ref", models.ErrInvalidInput)
	}

	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return f.fetchURL(ctx, ref)
	}
	if !Enabled() {
		return nil, fmt.Errorf("storage not configured, cannot fetch %s", ref)
	}
	return fetchObject(ctx, ref)
}

func (f *Fetcher) fetchURL(ctx context.Context, rawURL string) (*models.Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: bad file URL: %v", models.ErrInvalidInput, err)
	}
	if !f.allowedHosts[strings.ToLower(u.Host)] {
		return nil, fmt.Errorf("%w: file host %q is not allowed", models.ErrInvalidInput, u.Host)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", models.ErrFileNotFound, rawURL)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := readLimited(resp.Body, f.maxBytes)
	if err != nil {
		return nil, err
	}

	name := u.Path

	return &models.Document{
		Name:        baseName(name),
		ContentType: ResolveContentType(resp.Header.Get("Content-Type"), name),
		Data:        data,
	}, nil
}

// readLimited reads r fully, failing instead of truncating past limit bytes
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file exceeds %d bytes", limit)
	}
	return data, nil
}

// ResolveContentType prefers the header value and falls back to the file extension
func ResolveContentType(header, filename string) string {
	if header = strings.TrimSpace(header); header != "" {
		if mediaType, _, err := mime.ParseMediaType(header); err == nil {
			return mediaType
		}
	}
	return ContentTypeForFile(filename)
}

// ContentTypeForFile maps the extensions bills arrive with to MIME types
func ContentTypeForFile(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".pdf":
		return "application/pdf"
	case ".csv":
		return "text/csv"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// GetFileExtension extracts file extension from content type
func GetFileExtension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "application/pdf":
		return ".pdf"
	case "text/csv":
		return ".csv"
	case "application/vnd.ms-excel":
		return ".xls"
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return ".xlsx"
	default:
		return ".bin"
	}
}

func baseName(p string) string {
	b := path.Base(p)
	if b == "." || b == "/" {
		return ""
	}
	return b
}
