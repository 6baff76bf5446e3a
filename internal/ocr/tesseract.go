package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine implements Engine using the gosseract client. Each pass
// uses a fresh client so pass settings never leak between passes.
type TesseractEngine struct {
	tessdataPrefix string
	clientFactory  func() *gosseract.Client
}

// NewTesseractEngine constructs a Tesseract-backed engine. tessdataPrefix
// may be empty to use the system default.
func NewTesseractEngine(tessdataPrefix string) *TesseractEngine {
	return &TesseractEngine{
		tessdataPrefix: tessdataPrefix,
		clientFactory:  gosseract.NewClient,
	}
}

// Recognize runs one pass over the image.
func (e *TesseractEngine) Recognize(ctx context.Context, image []byte, pass PassConfig) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	c := e.clientFactory()
	defer c.Close()

	if e.tessdataPrefix != "" {
		if err := c.SetTessdataPrefix(e.tessdataPrefix); err != nil {
			return "", fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := c.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if pass.SingleBlock {
		if err := c.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
			return "", fmt.Errorf("set page seg mode: %w", err)
		}
	}
	if pass.Whitelist != "" {
		if err := c.SetWhitelist(pass.Whitelist); err != nil {
			return "", fmt.Errorf("set whitelist: %w", err)
		}
	}
	if pass.Blacklist != "" {
		if err := c.SetBlacklist(pass.Blacklist); err != nil {
			return "", fmt.Errorf("set blacklist: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}
