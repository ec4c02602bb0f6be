package ocr

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// minWidth is the width pages are upscaled to before recognition.
const minWidth = 1600

// preprocess converts the page to grayscale and upscales narrow renders.
func preprocess(png []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(png))
	if err != nil {
		return nil, fmt.Errorf("decode page image: %w", err)
	}

	gray := imaging.Grayscale(img)
	if gray.Bounds().Dx() < minWidth {
		gray = imaging.Resize(gray, minWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, gray, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode page image: %w", err)
	}
	return buf.Bytes(), nil
}
