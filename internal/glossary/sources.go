package glossary

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

//go:embed data/glossary.csv
var embeddedCSV []byte

// EmbeddedSource reads the glossary compiled into the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) Name() string { return "embedded" }

func (s EmbeddedSource) Load(context.Context) (*Glossary, error) {
	return ParseCSV(bytes.NewReader(embeddedCSV), s.Name())
}

// FileSource reads a glossary CSV from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Load(context.Context) (*Glossary, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("glossary: open %s: %w", s.Path, err)
	}
	defer f.Close()
	return ParseCSV(f, s.Name())
}

// DefaultFetchTimeout bounds a URLSource request when its client has no timeout.
const DefaultFetchTimeout = 10 * time.Second

// maxGlossaryBytes caps a downloaded glossary.
const maxGlossaryBytes = 8 << 20

// URLSource downloads a glossary CSV over HTTP.
type URLSource struct {
	URL    string
	Client *http.Client
}

// NewURLSource creates a URLSource using client, or a client with
// DefaultFetchTimeout when nil.
func NewURLSource(url string, client *http.Client) *URLSource {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	return &URLSource{URL: url, Client: client}
}

func (s *URLSource) Name() string { return "url:" + s.URL }

func (s *URLSource) Load(ctx context.Context) (*Glossary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("glossary: build request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("glossary: fetch %s: %w", s.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("glossary: fetch %s: unexpected status %d", s.URL, resp.StatusCode)
	}
	return ParseCSV(io.LimitReader(resp.Body, maxGlossaryBytes), s.Name())
}
