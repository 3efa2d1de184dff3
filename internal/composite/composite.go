// Package composite renders false-color rasters from a decoded field photo.
// Each view mode is one full O(width*height) pass; the threshold-to-color
// scales are explicit ordered tables evaluated top-down so the breakpoint
// behavior survives review and reimplementation.
package composite

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/croplens/croplens/internal/raster"
	"github.com/croplens/croplens/internal/spectral"
)

// Kind identifies a view mode.
type Kind string

const (
	KindOriginal    Kind = "original"
	KindCIR         Kind = "cir"
	KindNDVI        Kind = "ndvi"
	KindNDWI        Kind = "ndwi"
	KindStress      Kind = "stress"
	KindNIREnhanced Kind = "nirEnhanced"
)

// Kinds lists the five derived view modes a full analysis renders eagerly.
var Kinds = []Kind{KindCIR, KindNDVI, KindNDWI, KindStress, KindNIREnhanced}

// Raster is a rendered composite with the same shape as its source buffer.
type Raster struct {
	Kind   Kind
	Width  int
	Height int
	Pix    []uint8
}

// Image converts the composite to a standard library image for encoding.
func (r *Raster) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	copy(img.Pix, r.Pix)
	return img
}

// colorStop pairs an exclusive threshold with the color used below (NDVI
// scale) or above (NDWI/stress scales) it. First match wins.
type colorStop struct {
	threshold float64
	c         color.RGBA
}

// ndviScale: matched low to high with "<" comparisons.
var ndviScale = []colorStop{
	{-0.2, color.RGBA{0, 0, 150, 255}},    // water / shadow
	{0, color.RGBA{139, 90, 43, 255}},     // bare soil
	{0.2, color.RGBA{255, 255, 150, 255}}, // sparse vegetation
	{0.4, color.RGBA{192, 255, 62, 255}},  // moderate vegetation
	{0.6, color.RGBA{76, 187, 23, 255}},   // healthy vegetation
}

var ndviElse = color.RGBA{0, 100, 0, 255} // dense canopy

// ndwiScale: matched high to low with ">" comparisons.
var ndwiScale = []colorStop{
	{0.3, color.RGBA{0, 100, 255, 255}},
	{0.1, color.RGBA{0, 200, 200, 255}},
	{-0.1, color.RGBA{100, 200, 100, 255}},
	{-0.3, color.RGBA{255, 200, 0, 255}},
}

var ndwiElse = color.RGBA{255, 50, 0, 255}

// stressScale: matched high to low with ">" comparisons against the blended
// stress score.
var stressScale = []colorStop{
	{0.8, color.RGBA{0, 150, 0, 255}},
	{0.6, color.RGBA{100, 200, 50, 255}},
	{0.4, color.RGBA{255, 200, 0, 255}},
	{0.2, color.RGBA{255, 100, 0, 255}},
}

var stressElse = color.RGBA{200, 0, 0, 255}

func ndviColor(ndvi float64) color.RGBA {
	for _, stop := range ndviScale {
		if ndvi < stop.threshold {
			return stop.c
		}
	}
	return ndviElse
}

func ndwiColor(ndwi float64) color.RGBA {
	for _, stop := range ndwiScale {
		if ndwi > stop.threshold {
			return stop.c
		}
	}
	return ndwiElse
}

// StressScore blends NDVI, VARI and ExG (weights 0.5/0.3/0.2) after shifting
// each into [0,1].
func StressScore(s spectral.BandSample) float64 {
	return (s.NDVI+1)/2*0.5 + (s.VARI+1)/2*0.3 + (s.ExG+1)/2*0.2
}

func stressColor(score float64) color.RGBA {
	for _, stop := range stressScale {
		if score > stop.threshold {
			return stop.c
		}
	}
	return stressElse
}

// nirEnhancedColor renders vegetation in CIR convention: saturated red for
// vigorous canopy fading to yellow as NDVI drops toward 0.2, tan for bare
// ground, blue for water and shadow.
func nirEnhancedColor(s spectral.BandSample) color.RGBA {
	switch {
	case s.NDVI > 0.2:
		health := (s.NDVI - 0.2) / 0.8
		if health > 1 {
			health = 1
		}
		g := uint8(math.Round(255 * (1 - health)))
		return color.RGBA{255, g, 0, 255}
	case s.NDVI > -0.1:
		return color.RGBA{180, 140, 100, 255}
	default:
		return color.RGBA{50, 80, 150, 255}
	}
}

func pixelColor(kind Kind, r, g, b uint8) color.RGBA {
	switch kind {
	case KindOriginal:
		return color.RGBA{r, g, b, 255}
	case KindCIR:
		s := spectral.SimulateNIR(r, g, b)
		return color.RGBA{uint8(s), r, g, 255}
	case KindNDVI:
		return ndviColor(spectral.NDVI(r, g, b))
	case KindNDWI:
		return ndwiColor(spectral.NDWI(r, g, b))
	case KindStress:
		return stressColor(StressScore(spectral.Sample(r, g, b)))
	case KindNIREnhanced:
		return nirEnhancedColor(spectral.Sample(r, g, b))
	}
	return color.RGBA{r, g, b, 255}
}

// Render produces one composite from the buffer.
func Render(buf *raster.Buffer, kind Kind) (*Raster, error) {
	if buf == nil || len(buf.Pix) == 0 {
		return nil, fmt.Errorf("empty raster buffer for %s composite", kind)
	}

	out := &Raster{
		Kind:   kind,
		Width:  buf.Width,
		Height: buf.Height,
		Pix:    make([]uint8, len(buf.Pix)),
	}

	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			r, g, b := buf.RGB(x, y)
			c := pixelColor(kind, r, g, b)
			i := (y*buf.Width + x) * 4
			out.Pix[i] = c.R
			out.Pix[i+1] = c.G
			out.Pix[i+2] = c.B
			out.Pix[i+3] = c.A
		}
	}

	return out, nil
}

// RenderAll renders the five derived composites. The passes are independent
// per-pixel work, so they run concurrently; the first failure cancels the
// rest.
func RenderAll(ctx context.Context, buf *raster.Buffer) (map[Kind]*Raster, error) {
	results := make(map[Kind]*Raster, len(Kinds))
	eg, _ := errgroup.WithContext(ctx)

	rendered := make([]*Raster, len(Kinds))
	for i, kind := range Kinds {
		i, kind := i, kind
		eg.Go(func() error {
			r, err := Render(buf, kind)
			if err != nil {
				return err
			}
			rendered[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for i, kind := range Kinds {
		results[kind] = rendered[i]
	}
	return results, nil
}
