package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pagePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{R: 200, G: 50, B: 50, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPreprocess(t *testing.T) {
	tests := []struct {
		name           string
		width, height  int
		expectedWidth  int
		expectedHeight int
	}{
		{"narrow page is upscaled", 400, 200, minWidth, 800},
		{"wide page keeps its size", 2000, 100, 2000, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := preprocess(pagePNG(t, tt.width, tt.height))
			require.NoError(t, err)

			img, _, err := image.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedWidth, img.Bounds().Dx())
			assert.Equal(t, tt.expectedHeight, img.Bounds().Dy())

			c := color.NRGBAModel.Convert(img.At(tt.expectedWidth/2, tt.expectedHeight/2)).(color.NRGBA)
			assert.Equal(t, c.R, c.G, "grayscale")
			assert.Equal(t, c.G, c.B, "grayscale")
		})
	}
}

func TestPreprocess_InvalidImage(t *testing.T) {
	_, err := preprocess([]byte("not an image"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode page image")
}
