// Package ledger loads the position ledger from a tabular source.
package ledger

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Source opens the raw CSV bytes of a ledger.
type Source interface {
	// Name returns the source identifier used in logs and metrics.
	Name() string

	// Open returns a reader over the ledger identified by id.
	Open(ctx context.Context, id string) (io.ReadCloser, error)
}

const defaultSheetsBaseURL = "https://docs.google.com"

// SheetsSource reads a spreadsheet through its CSV export endpoint.
type SheetsSource struct {
	client  *http.Client
	baseURL string
	token   string
}

// SheetsOption configures a SheetsSource.
type SheetsOption func(*SheetsSource)

// WithBaseURL overrides the export host (for testing).
func WithBaseURL(u string) SheetsOption {
	return func(s *SheetsSource) {
		if u != "" {
			s.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

// WithToken sets a bearer token sent with every request.
func WithToken(token string) SheetsOption {
	return func(s *SheetsSource) {
		s.token = token
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) SheetsOption {
	return func(s *SheetsSource) {
		if c != nil {
			s.client = c
		}
	}
}

// NewSheets creates a spreadsheet-backed source.
func NewSheets(opts ...SheetsOption) *SheetsSource {
	s := &SheetsSource{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: defaultSheetsBaseURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SheetsSource) Name() string {
	return "sheets"
}

func (s *SheetsSource) exportURL(id string) string {
	return fmt.Sprintf("%s/spreadsheets/d/%s/export?format=csv", s.baseURL, url.PathEscape(id))
}

func (s *SheetsSource) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("empty spreadsheet id")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.exportURL(id), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching spreadsheet: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("spreadsheet export returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// FileSource reads ledgers from the local filesystem.
type FileSource struct {
	basePath string
}

// NewFile creates a file source. Relative ids are resolved against basePath.
func NewFile(basePath string) *FileSource {
	return &FileSource{basePath: basePath}
}

func (f *FileSource) Name() string {
	return "file"
}

func (f *FileSource) fullPath(id string) string {
	if filepath.IsAbs(id) || f.basePath == "" {
		return id
	}
	return filepath.Join(f.basePath, id)
}

func (f *FileSource) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("empty ledger path")
	}
	return os.Open(f.fullPath(id))
}
