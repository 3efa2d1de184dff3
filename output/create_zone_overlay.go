package output

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"

	"github.com/croplens/croplens/internal/health"
	"github.com/croplens/croplens/internal/raster"
)

// CreateZoneOverlay draws the zone grid over the source photo with each
// zone's name and health score, and saves the result as a PNG.
func CreateZoneOverlay(buf *raster.Buffer, zones []health.ClassifiedZone, dir, prefix string) (string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create output folder: %w", err)
	}

	base := image.NewRGBA(image.Rect(0, 0, buf.Width, buf.Height))
	copy(base.Pix, buf.Pix)

	dc := gg.NewContextForRGBA(base)
	dc.SetLineWidth(2)

	for _, z := range zones {
		rect := z.Rect
		dc.SetRGBA(1, 1, 1, 0.9)
		dc.DrawRectangle(float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Dx()), float64(rect.Dy()))
		dc.Stroke()

		label := fmt.Sprintf("%s  %d", z.Name, z.HealthScore)
		tx := float64(rect.Min.X) + 6
		ty := float64(rect.Min.Y) + 14

		// Shadow first so the label stays readable on bright canopy.
		dc.SetRGBA(0, 0, 0, 0.8)
		dc.DrawString(label, tx+1, ty+1)
		dc.SetRGBA(1, 1, 1, 1)
		dc.DrawString(label, tx, ty)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_zones.png", prefix))
	if err := dc.SavePNG(path); err != nil {
		return "", fmt.Errorf("failed to save zone overlay: %w", err)
	}
	return path, nil
}
