// Package images persists uploaded image files under the public image
// root and derives thumbnail variants.
package images

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Size ceilings. The peak attachment flow and the inline content flow
// historically carried different limits; both are kept.
const (
	MaxPeakImageBytes    = 10 << 20 // 10MB
	MaxContentImageBytes = 15 << 20 // 15MB
)

// ErrInvalid marks a client-correctable upload failure (bad type, too
// large). Callers surface these as validation errors.
var ErrInvalid = errors.New("invalid image")

var allowedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".avif": true,
}

var allowedMIMETypes = map[string]bool{
	"image/jpeg": true, "image/jpg": true, "image/png": true,
	"image/gif": true, "image/webp": true, "image/avif": true,
}

// Saver writes uploads below Dir and reports them as public paths below
// PublicPrefix. Peak images are partitioned into per-slug subdirectories;
// inline content images share a flat directory.
type Saver struct {
	Dir          string // filesystem root, e.g. public/images
	PublicPrefix string // URL prefix, e.g. /images
}

// NewSaver creates a Saver over the image root.
func NewSaver(dir string) *Saver {
	return &Saver{Dir: dir, PublicPrefix: "/images"}
}

// Validate checks the declared size, extension, and MIME type of an upload
// against the allow-list. A file passes the type check when either its
// extension or its declared content type is allowed, matching the
// permissive behavior the upload UI depends on.
func Validate(fh *multipart.FileHeader, maxBytes int64) error {
	if fh.Size > maxBytes {
		return fmt.Errorf("%w: file too large: %.2fMB exceeds the %dMB limit",
			ErrInvalid, float64(fh.Size)/(1<<20), maxBytes>>20)
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	mimeType := fh.Header.Get("Content-Type")
	if !allowedExtensions[ext] && !allowedMIMETypes[mimeType] {
		return fmt.Errorf("%w: unsupported type %q (extension %q); allowed: JPEG, PNG, GIF, WebP, AVIF",
			ErrInvalid, mimeType, ext)
	}
	return nil
}

// fileName builds a collision-resistant name: category prefix, millisecond
// timestamp, and a short random suffix, keeping the original extension.
func fileName(category, original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if ext == "" {
		ext = ".jpg"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%d-%s%s", category, time.Now().UnixMilli(), suffix, ext)
}

// SavePeak validates and writes a peak-scoped upload (cover, thumb,
// content-inline) under the slug's directory and returns its public path.
func (s *Saver) SavePeak(slug, category string, fh *multipart.FileHeader) (string, error) {
	if err := Validate(fh, MaxPeakImageBytes); err != nil {
		return "", err
	}
	name := fileName(category, fh.Filename)
	dir := filepath.Join(s.Dir, "peaks", slug)
	if err := s.write(dir, name, fh); err != nil {
		return "", err
	}
	return path.Join(s.PublicPrefix, "peaks", slug, name), nil
}

// SaveContent validates and writes an inline content upload to the flat
// content directory, returning its public path and file name.
func (s *Saver) SaveContent(fh *multipart.FileHeader) (string, string, error) {
	if err := Validate(fh, MaxContentImageBytes); err != nil {
		return "", "", err
	}
	name := fileName("content", fh.Filename)
	if err := s.write(filepath.Join(s.Dir, "content"), name, fh); err != nil {
		return "", "", err
	}
	return path.Join(s.PublicPrefix, "content", name), name, nil
}

// SaveFlat validates and writes an upload to the flat peaks directory.
// Used by the standalone upload endpoint for non-content types.
func (s *Saver) SaveFlat(fh *multipart.FileHeader) (string, string, error) {
	if err := Validate(fh, MaxContentImageBytes); err != nil {
		return "", "", err
	}
	name := fileName("content", fh.Filename)
	if err := s.write(filepath.Join(s.Dir, "peaks"), name, fh); err != nil {
		return "", "", err
	}
	return path.Join(s.PublicPrefix, "peaks", name), name, nil
}

func (s *Saver) write(dir, name string, fh *multipart.FileHeader) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create image dir: %w", err)
	}
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	return nil
}

// LocalPath maps a public image path back to its location on disk.
func (s *Saver) LocalPath(publicPath string) string {
	rel := strings.TrimPrefix(publicPath, s.PublicPrefix)
	return filepath.Join(s.Dir, filepath.FromSlash(rel))
}
