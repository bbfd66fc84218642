package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"clinicpulse/internal/validation"
)

// SourceFetchError reports a source that could not be read. It is fatal to
// the load and carries the underlying cause so the user can self-correct
// the path or URL.
type SourceFetchError struct {
	Source string
	Err    error
}

func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("failed to fetch source %q: %v", e.Source, e.Err)
}

func (e *SourceFetchError) Unwrap() error {
	return e.Err
}

// Fetcher performs the one-shot fetch of a raw table from a file path or a
// remote URL. Fetches are not retried; a failure surfaces immediately.
type Fetcher struct {
	client    *http.Client
	logger    *slog.Logger
	validator *validation.SourceValidator
}

// NewFetcher creates a fetcher. A nil client falls back to
// http.DefaultClient; cancellation and timeouts are whatever the client
// and the caller's context provide.
func NewFetcher(client *http.Client, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:    client,
		logger:    logger.With(slog.String("component", "source_fetcher")),
		validator: validation.NewSourceValidator(logger),
	}
}

// Fetch reads the source and decodes it into a Table. Sources starting with
// http:// or https:// are fetched with a GET; anything else is treated as a
// local file path. The file extension selects the decoder (.xlsx workbook,
// CSV otherwise).
func (f *Fetcher) Fetch(ctx context.Context, source string) (*Table, error) {
	var (
		body io.ReadCloser
		name string
	)

	if isURL(source) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, &SourceFetchError{Source: source, Err: err}
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return nil, &SourceFetchError{Source: source, Err: err}
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close()
			return nil, &SourceFetchError{
				Source: source,
				Err:    fmt.Errorf("unexpected status %s", resp.Status),
			}
		}
		body = resp.Body
		if u, err := url.Parse(source); err == nil {
			name = path.Base(u.Path)
		}
	} else {
		if err := f.validator.ValidateSourceFile(source); err != nil {
			return nil, &SourceFetchError{Source: source, Err: err}
		}
		file, err := os.Open(source)
		if err != nil {
			return nil, &SourceFetchError{Source: source, Err: err}
		}
		body = file
		name = filepath.Base(source)
	}
	defer body.Close()

	table, err := Decode(name, body)
	if err != nil {
		return nil, &SourceFetchError{Source: source, Err: err}
	}

	f.logger.InfoContext(ctx, "source fetched",
		slog.String("source", source),
		slog.Int("columns", len(table.Header)),
		slog.Int("rows", len(table.Rows)))

	return table, nil
}

// Decode reads a table from an already-open stream, choosing the decoder by
// file extension. Upload handlers use this directly with the client-supplied
// filename.
func Decode(name string, r io.Reader) (*Table, error) {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return ReadWorkbook(r)
	}
	return ReadCSV(r)
}

// DecodeUpload reads a table from an uploaded payload held in memory.
func DecodeUpload(filename string, content []byte) (*Table, error) {
	return Decode(filename, bytes.NewReader(content))
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
