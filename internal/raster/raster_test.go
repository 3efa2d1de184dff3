package raster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func TestDecodePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(0, 0, color.RGBA{10, 20, 30, 255})
	img.SetRGBA(2, 1, color.RGBA{200, 150, 100, 255})

	buf, err := Decode(encodePNG(t, img))
	require.NoError(t, err)

	assert.Equal(t, 3, buf.Width)
	assert.Equal(t, 2, buf.Height)

	r, g, b := buf.RGB(0, 0)
	assert.Equal(t, [3]uint8{10, 20, 30}, [3]uint8{r, g, b})

	r, g, b = buf.RGB(2, 1)
	assert.Equal(t, [3]uint8{200, 150, 100}, [3]uint8{r, g, b})
}

func TestDecodeCorruptInput(t *testing.T) {
	_, err := Decode(strings.NewReader("definitely not an image"))
	require.Error(t, err)

	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr), "corrupt input must surface as DecodeError")
}

func TestDecodeFileMissing(t *testing.T) {
	_, err := DecodeFile("/nonexistent/field.jpeg")
	require.Error(t, err)

	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr))
}

func TestFromImageCopiesPixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(1, 1, color.RGBA{5, 6, 7, 255})

	buf := FromImage(img)

	// Mutating the source image afterwards must not leak into the buffer.
	img.SetRGBA(1, 1, color.RGBA{99, 99, 99, 255})

	r, g, b := buf.RGB(1, 1)
	assert.Equal(t, [3]uint8{5, 6, 7}, [3]uint8{r, g, b})
}

func TestFromImageNonZeroOrigin(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 10, 14, 13))
	img.SetRGBA(10, 10, color.RGBA{1, 2, 3, 255})

	buf := FromImage(img)
	assert.Equal(t, 4, buf.Width)
	assert.Equal(t, 3, buf.Height)

	r, g, b := buf.RGB(0, 0)
	assert.Equal(t, [3]uint8{1, 2, 3}, [3]uint8{r, g, b})
}
