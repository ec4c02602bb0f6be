package extractor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageImagesOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"page-10.png", "page-2.png", "page-1.png", "page-1.txt", "notes.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	files, err := pageImages(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "page-1.png", filepath.Base(files[0]))
	assert.Equal(t, "page-2.png", filepath.Base(files[1]))
	assert.Equal(t, "page-10.png", filepath.Base(files[2]))
}

func TestRasterizeRejectsNonPDF(t *testing.T) {
	r := &PDFRasterizer{}
	_, err := r.Rasterize(context.Background(), "statement.csv")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestRasterizeScannedPDF(t *testing.T) {
	r := &PDFRasterizer{DPI: 72}
	if !r.Available() {
		t.Skip("pdftoppm not installed")
	}
	_, err := r.Rasterize(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}
