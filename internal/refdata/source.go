package refdata

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// maxDatasetBytes bounds a single dataset download.
const maxDatasetBytes = 8 << 20

// Source fetches raw dataset bytes by name.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	// Kind labels the source in logs and metrics ("file" or "http").
	Kind() string
}

// NewSource returns an HTTPSource for http(s) locations and a FileSource otherwise.
func NewSource(location string, timeout time.Duration, logger *slog.Logger) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPSource(location, timeout, logger)
	}
	return FileSource{Dir: location}
}

// FileSource reads datasets from a directory.
type FileSource struct {
	Dir string
}

func (s FileSource) Fetch(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, filepath.Clean("/"+name)))
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", name, err)
	}
	return data, nil
}

func (FileSource) Kind() string { return "file" }

// HTTPSource downloads datasets from a static origin. Requests go through a
// circuit breaker so an unavailable origin fails fast during reloads.
type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewHTTPSource creates a source rooted at baseURL.
func NewHTTPSource(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPSource {
	s := &HTTPSource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "reference-data-origin",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return s
}

func (s *HTTPSource) Kind() string { return "http" }

func (s *HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	out, err := s.breaker.Execute(func() (any, error) {
		return s.doRequest(ctx, s.baseURL+"/"+url.PathEscape(name))
	})
	if err != nil {
		return nil, fmt.Errorf("fetch dataset %s: %w", name, err)
	}
	return out.([]byte), nil
}

func (s *HTTPSource) doRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dataset request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("origin error: status %d: %s", resp.StatusCode, body)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDatasetBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(data) > maxDatasetBytes {
		return nil, fmt.Errorf("dataset exceeds %d bytes", maxDatasetBytes)
	}
	return data, nil
}
