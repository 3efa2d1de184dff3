// Package raster holds the decoded pixel grid every other analysis stage
// consumes. A Buffer is built once per uploaded or captured photo and never
// mutated afterwards, so concurrent passes can share it freely.
package raster

import (
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeError reports an unreadable or corrupt source image. It aborts the
// whole analysis; no partial result is produced downstream.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("image decode failed: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Buffer is an immutable RGBA pixel grid. Pix is interleaved r,g,b,a with
// pixel (x,y) starting at (y*Width+x)*4.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// Decode reads any registered image format (JPEG, PNG, GIF, WebP, TIFF, BMP)
// into a Buffer.
func Decode(r io.Reader) (*Buffer, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return FromImage(img), nil
}

// DecodeFile decodes the image at path.
func DecodeFile(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	defer f.Close()
	return Decode(f)
}

// FromImage copies an already-decoded image into a Buffer.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	rgba, ok := img.(*image.RGBA)
	if !ok || bounds.Min != (image.Point{}) || rgba.Stride != width*4 {
		rgba = image.NewRGBA(image.Rect(0, 0, width, height))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	pix := make([]uint8, len(rgba.Pix))
	copy(pix, rgba.Pix)

	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    pix,
	}
}

// RGB returns the color channels of pixel (x,y).
func (b *Buffer) RGB(x, y int) (r, g, bl uint8) {
	i := (y*b.Width + x) * 4
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2]
}

// RGBA returns all four channels of pixel (x,y).
func (b *Buffer) RGBA(x, y int) (r, g, bl, a uint8) {
	i := (y*b.Width + x) * 4
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]
}
