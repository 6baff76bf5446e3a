// Package ocr turns one image into a single text blob by running an ordered
// ensemble of recognition passes and concatenating their raw outputs. The
// blob is never merged semantically; downstream matching scans it as-is.
package ocr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/skytagbot/skytag/internal/domain"
)

// Character sets applied by the restricted passes.
const (
	registrationAlphabet = "N0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	bracketCharacters    = "()[]{}"
)

// PassConfig describes one recognition pass.
type PassConfig struct {
	Name string
	// SingleBlock switches the engine to uniform-block segmentation (PSM 6).
	SingleBlock bool
	Whitelist   string
	Blacklist   string
}

// DefaultEnsemble is the fixed, ordered pass list. Order is part of the
// contract: downstream candidate selection scans the concatenated blob left
// to right.
var DefaultEnsemble = []PassConfig{
	{Name: "default"},
	{Name: "block", SingleBlock: true},
	{Name: "block-whitelist", SingleBlock: true, Whitelist: registrationAlphabet},
	{Name: "block-blacklist", SingleBlock: true, Blacklist: bracketCharacters},
	{Name: "block-restricted", SingleBlock: true, Whitelist: registrationAlphabet, Blacklist: bracketCharacters},
}

// Engine runs a single recognition pass over raw image bytes.
type Engine interface {
	Recognize(ctx context.Context, image []byte, pass PassConfig) (string, error)
}

// Extractor fetches an image and runs the pass ensemble over it.
type Extractor struct {
	engine   Engine
	client   *http.Client
	ensemble []PassConfig
}

// NewExtractor creates an extractor using the default ensemble.
// client may be nil to use http.DefaultClient.
func NewExtractor(engine Engine, client *http.Client) *Extractor {
	if client == nil {
		client = http.DefaultClient
	}
	return &Extractor{engine: engine, client: client, ensemble: DefaultEnsemble}
}

// WithEnsemble overrides the pass list. Used by tests.
func (e *Extractor) WithEnsemble(passes []PassConfig) *Extractor {
	e.ensemble = passes
	return e
}

// ExtractText downloads the image and returns the newline-joined outputs of
// all passes, each trimmed, in ensemble order. Fetch and decode problems are
// reported as domain.ErrSourceUnavailable; the caller degrades them to empty
// text rather than aborting the post.
func (e *Extractor) ExtractText(ctx context.Context, imageURL string) (string, error) {
	img, err := e.fetch(ctx, imageURL)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(e.ensemble))
	for _, pass := range e.ensemble {
		text, err := e.engine.Recognize(ctx, img, pass)
		if err != nil {
			return "", fmt.Errorf("%w: pass %s: %w", domain.ErrSourceUnavailable, pass.Name, err)
		}
		parts = append(parts, strings.TrimSpace(text))
	}
	return strings.Join(parts, "\n"), nil
}

func (e *Extractor) fetch(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch image: %w", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch image: status %d", domain.ErrSourceUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read image body: %w", domain.ErrSourceUnavailable, err)
	}
	return data, nil
}
