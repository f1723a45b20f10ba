package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/boundary-layer-viewer/internal/domain"
)

// maxBodyBytes caps the size of a remote table. Larger bodies are rejected
// rather than cut mid-row.
var maxBodyBytes int64 = 64 << 20

// Source fetches the raw bytes of a sample table.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	Location() string
}

// NewSource picks an HTTP source for http(s) URLs and a file source otherwise.
func NewSource(location string, timeout time.Duration, logger *slog.Logger) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPSource(location, timeout, logger)
	}
	return FileSource{Path: location}
}

// FileSource reads a table from the local filesystem.
type FileSource struct {
	Path string
}

// Fetch reads the whole file.
func (s FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}
	return data, nil
}

// Location returns the file path.
func (s FileSource) Location() string { return s.Path }

// HTTPSource performs a one-shot GET per fetch.
type HTTPSource struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPSource creates an HTTP source with the given request timeout.
func NewHTTPSource(url string, timeout time.Duration, logger *slog.Logger) *HTTPSource {
	return &HTTPSource{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Fetch downloads the table. Any transport error or non-200 status wraps
// domain.ErrSourceUnavailable; a body over maxBodyBytes wraps domain.ErrDecode.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %w", domain.ErrSourceUnavailable, s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrSourceUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrSourceUnavailable, err)
	}
	if int64(len(data)) > maxBodyBytes {
		return nil, fmt.Errorf("%w: table exceeds %d bytes", domain.ErrDecode, maxBodyBytes)
	}

	s.logger.Debug("sample table fetched",
		"url", s.url,
		"bytes", len(data),
		"duration", time.Since(start),
	)
	return data, nil
}

// Location returns the URL.
func (s *HTTPSource) Location() string { return s.url }
