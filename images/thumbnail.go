package images

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path"
	"path/filepath"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	thumbnailWidth = 400
	jpegQuality    = 80
)

// DeriveThumbnail downscales a stored cover image into a JPEG thumbnail in
// the same slug directory and returns the thumbnail's public path. Formats
// the decoder cannot handle (AVIF) return an error; callers treat
// derivation as best-effort.
func (s *Saver) DeriveThumbnail(slug, coverPublicPath string) (string, error) {
	f, err := os.Open(s.LocalPath(coverPublicPath))
	if err != nil {
		return "", fmt.Errorf("open cover: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode cover: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > thumbnailWidth {
		newH := h * thumbnailWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, thumbnailWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}

	name := fileName("thumbnail", "derived.jpg")
	dir := filepath.Join(s.Dir, "peaks", slug)
	if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write thumbnail: %w", err)
	}
	return path.Join(s.PublicPrefix, "peaks", slug, name), nil
}
