//go:build !notesseract

// Package ocr recognises text in rasterized statement pages with Tesseract.
// It links libtesseract through cgo, so it lives apart from the packages
// that only need pure Go. Build with -tags notesseract to compile only the
// image preprocessing.
package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract implements the pipeline OCR engine with gosseract.
type Tesseract struct {
	Language string
}

// New returns an engine for the given Tesseract language code.
func New(language string) *Tesseract {
	if language == "" {
		language = "eng"
	}
	return &Tesseract{Language: language}
}

// Recognize returns the text on one page image. Tesseract cannot be
// interrupted, so on cancellation the call returns immediately and the
// recognition finishes in the background.
func (t *Tesseract) Recognize(ctx context.Context, png []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	img, err := preprocess(png)
	if err != nil {
		return "", err
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := t.recognize(img)
		done <- result{text, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.text, r.err
	}
}

func (t *Tesseract) recognize(img []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.Language); err != nil {
		return "", fmt.Errorf("ocr language %q: %w", t.Language, err)
	}
	// Single column of text of variable sizes suits statement layouts.
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_COLUMN); err != nil {
		return "", fmt.Errorf("ocr page mode: %w", err)
	}
	if err := client.SetImageFromBytes(img); err != nil {
		return "", fmt.Errorf("ocr image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr error: %w", err)
	}
	return text, nil
}
