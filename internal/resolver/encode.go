package resolver

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dsoprea/go-exif/v3"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/nao1215/museumstyle/internal/model"
)

// tempPrefix starts the name of an image that is still being written.
const tempPrefix = ".asset-"

// jpegQuality is used when re-encoding JPEG files.
const jpegQuality = 95

// storeImage decodes data, re-encodes it in the format implied by the
// extension of path and writes it atomically. It returns the dimensions and
// credits of the image.
func storeImage(data []byte, path string) (model.Asset, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return model.Asset{}, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	asset := model.Asset{
		Path:   path,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Credit: readCredit(data),
	}

	if err := writeAtomic(path, func(w io.Writer) error {
		return encode(w, img, format, filepath.Ext(path))
	}); err != nil {
		return model.Asset{}, err
	}
	return asset, nil
}

// encode writes img in the format named by ext. Unknown extensions fall back
// to the source format when it can be encoded, and to JPEG otherwise.
func encode(w io.Writer, img image.Image, sourceFormat, ext string) error {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".jpe":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case ".gif":
		return gif.Encode(w, img, nil)
	case ".png":
		return png.Encode(w, img)
	case ".bmp":
		return bmp.Encode(w, img)
	case ".tif", ".tiff":
		return tiff.Encode(w, img, nil)
	}

	switch sourceFormat {
	case "gif":
		return gif.Encode(w, img, nil)
	case "png":
		return png.Encode(w, img)
	default:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	}
}

// writeAtomic writes to a temporary file next to path and renames it into
// place, so a partially written image is never visible in the cache.
func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create asset directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create asset file: %w", err)
	}
	tmpName := tmp.Name()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to encode image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write asset file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write asset file: %w", err)
	}
	return nil
}

// readCredit extracts attribution tags from the EXIF block of data, if any.
func readCredit(data []byte) model.ImageCredit {
	var credit model.ImageCredit

	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return credit
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return credit
	}

	for _, entry := range entries {
		value := strings.TrimSpace(entry.Formatted)
		if value == "" {
			continue
		}
		switch entry.TagName {
		case "Artist":
			credit.Artist = value
		case "Copyright":
			credit.Copyright = value
		case "ImageDescription":
			credit.Description = value
		}
	}
	return credit
}
