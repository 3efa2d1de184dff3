// Package output writes analysis artifacts to disk: false-color composites,
// the zone overlay, thumbnails, and the zone report exports.
package output

import (
	"fmt"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"

	"github.com/croplens/croplens/internal/composite"
	"github.com/croplens/croplens/internal/utils"
)

const thumbnailWidth = 240

// CreateCompositeImages writes one PNG per rendered composite plus a small
// JPEG thumbnail, named <prefix>_<kind>.png under dir. Kinds are written in
// sorted order so repeated runs produce the same file listing.
func CreateCompositeImages(composites map[composite.Kind]*composite.Raster, dir, prefix string) ([]string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create output folder: %w", err)
	}

	var written []string
	for _, kind := range utils.SortedKeys(composites) {
		raster := composites[kind]
		img := raster.Image()

		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", prefix, kind))
		file, err := os.Create(path)
		if err != nil {
			return written, fmt.Errorf("failed to create composite file: %w", err)
		}
		if err := png.Encode(file, img); err != nil {
			file.Close()
			return written, fmt.Errorf("failed to encode %s composite: %w", kind, err)
		}
		file.Close()
		written = append(written, path)

		thumb := resize.Resize(thumbnailWidth, 0, img, resize.Lanczos3)
		thumbPath := strings.TrimSuffix(path, ".png") + "_thumb.jpeg"
		thumbFile, err := os.Create(thumbPath)
		if err != nil {
			return written, fmt.Errorf("failed to create thumbnail file: %w", err)
		}
		if err := jpeg.Encode(thumbFile, thumb, &jpeg.Options{Quality: 85}); err != nil {
			thumbFile.Close()
			return written, fmt.Errorf("failed to encode %s thumbnail: %w", kind, err)
		}
		thumbFile.Close()
		written = append(written, thumbPath)
	}

	return written, nil
}
