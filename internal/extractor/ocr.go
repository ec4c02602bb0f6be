package extractor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ErrRasterizerUnavailable is returned when pdftoppm is not installed.
var ErrRasterizerUnavailable = errors.New("pdftoppm not available (install poppler-utils)")

// DefaultDPI gives Tesseract enough resolution for statement fonts.
const DefaultDPI = 300

// PDFRasterizer renders PDF pages to PNG with poppler's pdftoppm.
type PDFRasterizer struct {
	DPI int
}

// Available reports whether pdftoppm is on PATH.
func (r *PDFRasterizer) Available() bool {
	_, err := exec.LookPath("pdftoppm")
	return err == nil
}

// Rasterize returns one PNG per page, in page order.
func (r *PDFRasterizer) Rasterize(ctx context.Context, path string) ([][]byte, error) {
	if strings.ToLower(filepath.Ext(path)) != ".pdf" {
		return nil, fmt.Errorf("%w: cannot rasterize %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if !r.Available() {
		return nil, ErrRasterizerUnavailable
	}

	tmpDir, err := os.MkdirTemp("", "ocr-pages-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	dpi := r.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	prefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm", "-r", strconv.Itoa(dpi), "-png", path, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}

	files, err := pageImages(tmpDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no page images")
	}

	images := make([][]byte, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read page image: %w", err)
		}
		images = append(images, data)
	}
	return images, nil
}

// pageImages lists the PNGs pdftoppm wrote, ordered by the numeric page
// suffix of each file name.
func pageImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp dir: %w", err)
	}

	type image struct {
		path string
		page int
	}
	var images []image
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".png") {
			continue
		}
		base := strings.TrimSuffix(name, ".png")
		n, err := strconv.Atoi(base[strings.LastIndex(base, "-")+1:])
		if err != nil {
			continue
		}
		images = append(images, image{path: filepath.Join(dir, name), page: n})
	}
	sort.Slice(images, func(a, b int) bool { return images[a].page < images[b].page })

	paths := make([]string, len(images))
	for i, img := range images {
		paths[i] = img.path
	}
	return paths, nil
}
