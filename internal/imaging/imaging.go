package imaging

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"math"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// DefaultTargetWidth is the length of the longer side of the museum preview.
const DefaultTargetWidth = 400

// previewQuality is the JPEG quality of written previews.
const previewQuality = 90

// ErrEmptyImage is returned for images without pixels.
var ErrEmptyImage = errors.New("image has no pixels")

// ScaleFactor returns the factor that brings the longer side of a w×h image
// to target.
func ScaleFactor(target, w, h int) (float64, error) {
	longest := max(w, h)
	if longest <= 0 {
		return 0, ErrEmptyImage
	}
	return float64(target) / float64(longest), nil
}

// ScaledLength truncates n×scale to an integer of at least 1.
// The small epsilon absorbs float error so 500×0.4 is 200, not 199.
func ScaledLength(n int, scale float64) int {
	return max(1, int(math.Floor(float64(n)*scale+1e-9)))
}

// ScaledSize returns the dimensions of a w×h image scaled by scale.
func ScaledSize(w, h int, scale float64) (int, int) {
	return ScaledLength(w, scale), ScaledLength(h, scale)
}

// Load decodes the image file at path.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the image cache
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// Scale resamples img by scale with Catmull-Rom interpolation.
func Scale(img image.Image, scale float64) image.Image {
	bounds := img.Bounds()
	w, h := ScaledSize(bounds.Dx(), bounds.Dy(), scale)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// SaveScaled writes img scaled by scale to path as a JPEG file.
func SaveScaled(img image.Image, path string, scale float64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create preview directory: %w", err)
	}

	f, err := os.Create(path) //nolint:gosec // path is built from the results directory
	if err != nil {
		return fmt.Errorf("failed to create preview: %w", err)
	}

	if err := jpeg.Encode(f, Scale(img, scale), &jpeg.Options{Quality: previewQuality}); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("failed to encode preview %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write preview %s: %w", path, err)
	}
	return nil
}
