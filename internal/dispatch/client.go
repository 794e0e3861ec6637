package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wattwise/bill-ingest-service/internal/models"
	"github.com/wattwise/bill-ingest-service/internal/storage"
)

// DefaultMaxBodyChars bounds response bodies and errors kept in results
const DefaultMaxBodyChars = 4096

// Client posts multipart requests to the billing API
type Client struct {
	httpClient   *http.Client
	token        string
	maxBodyChars int
	logger       zerolog.Logger
}

// NewClient creates a billing API client
func NewClient(token string, timeout time.Duration, maxBodyChars int, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxBodyChars <= 0 {
		maxBodyChars = DefaultMaxBodyChars
	}
	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		token:        token,
		maxBodyChars: maxBodyChars,
		logger:       logger.With().Str("component", "billing_client").Logger(),
	}
}

// Send executes one call. It never returns an error: transport failures are
// reported as Status 0 with the error text in CallResult.Error.
func (c *Client) Send(ctx context.Context, spec CallSpec, file *models.Document) CallResult {
	result := CallResult{
		Service:  spec.Service,
		Endpoint: spec.Endpoint,
		Payload:  spec.Fields,
	}

	if spec.RequiresFile && file == nil {
		result.Error = "file required but not available"
		return result
	}

	body, contentType, err := encodeMultipart(spec, file)
	if err != nil {
		result.Error = c.truncate(err.Error())
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, spec.Endpoint, body)
	if err != nil {
		result.Error = c.truncate(fmt.Sprintf("build request: %v", err))
		return result
	}
	req.Header.Set("Content-Type", contentType)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("service", spec.Service).Str("endpoint", spec.Endpoint).Msg("billing call failed")
		result.Error = c.truncate(err.Error())
		return result
	}
	defer resp.Body.Close()

	// read slightly more than we keep so truncation is measured in characters
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, int64(c.maxBodyChars)*4+4))

	result.Status = resp.StatusCode
	result.OK = resp.StatusCode >= 200 && resp.StatusCode < 300
	result.Body = c.truncate(string(raw))
	if readErr != nil {
		// a cut-off response is not a confirmed success
		result.OK = false
		result.Error = c.truncate(fmt.Sprintf("read response: %v", readErr))
	}

	c.logger.Info().
		Str("service", spec.Service).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("billing call completed")

	return result
}

func encodeMultipart(spec CallSpec, file *models.Document) (io.Reader, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	if spec.RequiresFile && file != nil {
		name := file.Name
		if name == "" {
			name = "upload" + storage.GetFileExtension(file.ContentType)
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(name)))
		h.Set("Content-Type", file.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create file part: %w", err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", fmt.Errorf("write file part: %w", err)
		}
	}

	keys := make([]string, 0, len(spec.Fields))
	for k := range spec.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, spec.Fields[k]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return body, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (c *Client) truncate(s string) string {
	return Truncate(s, c.maxBodyChars)
}

// Truncate cuts s to at most max characters
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
