// Package storage keeps uploaded post images on an afero filesystem rooted at the media directory.
package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"mime"
	"net/http"
	"os"
	"path"
	"strings"
	"unicode"

	"inkwell/internal/models"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// PostsDir is the directory, relative to the media root, holding post images.
const PostsDir = "posts"

// ImageField is the form field validation errors are reported against.
const ImageField = "image"

// ImageStore validates and persists uploaded images.
type ImageStore struct {
	fs       afero.Fs
	maxBytes int64
}

// NewImageStore stores files on fs, rejecting uploads larger than maxBytes.
func NewImageStore(fs afero.Fs, maxBytes int64) *ImageStore {
	return &ImageStore{fs: fs, maxBytes: maxBytes}
}

// NewDiskImageStore stores files under root on the OS filesystem, creating it if needed.
func NewDiskImageStore(root string, maxBytes int64) (*ImageStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return NewImageStore(afero.NewBasePathFs(afero.NewOsFs(), root), maxBytes), nil
}

// Fs exposes the underlying filesystem for serving files.
func (s *ImageStore) Fs() afero.Fs {
	return s.fs
}

// Validate checks that content is a decodable GIF, JPEG, PNG or WebP image
// within the size limit. Errors are field errors on ImageField.
func (s *ImageStore) Validate(content []byte, contentType string) error {
	if len(content) == 0 {
		return models.NewFieldError(ImageField, "The submitted file is empty.")
	}
	if s.maxBytes > 0 && int64(len(content)) > s.maxBytes {
		return models.NewFieldError(ImageField, fmt.Sprintf("File too large (max %dMB).", s.maxBytes/(1024*1024)))
	}

	detected := http.DetectContentType(content)
	if !isAllowedImageMIME(detected) {
		return models.NewFieldError(ImageField, "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}
	if _, _, err := image.Decode(bytes.NewReader(content)); err != nil {
		return models.NewFieldError(ImageField, "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}
	if provided := normalizeContentType(contentType); strings.HasPrefix(provided, "image/") && !isMatchingContentType(provided, detected) {
		return models.NewFieldError(ImageField, "Image content type mismatch.")
	}
	return nil
}

// Save writes content under posts/<filename> and returns that relative path.
// When the name is taken a short random suffix goes before the extension.
func (s *ImageStore) Save(filename string, content []byte) (string, error) {
	if err := s.fs.MkdirAll(PostsDir, 0o750); err != nil {
		return "", models.NewInternalError(err)
	}

	name := SanitizeFilename(filename)
	rel := path.Join(PostsDir, name)
	for {
		exists, err := afero.Exists(s.fs, rel)
		if err != nil {
			return "", models.NewInternalError(err)
		}
		if !exists {
			break
		}
		rel = path.Join(PostsDir, withSuffix(name, uuid.NewString()[:7]))
	}

	if err := afero.WriteFile(s.fs, rel, content, 0o640); err != nil {
		return "", models.NewInternalError(err)
	}
	return rel, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *ImageStore) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	if err := s.fs.Remove(rel); err != nil && !os.IsNotExist(err) {
		return models.NewInternalError(err)
	}
	return nil
}

// SanitizeFilename keeps the base name and replaces characters outside
// letters, digits, dot, dash and underscore.
func SanitizeFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}
	name := strings.Trim(b.String(), ".")
	if name == "" {
		return "upload"
	}
	return name
}

func withSuffix(name, suffix string) string {
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "_" + suffix + ext
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	return p == d || (p == "image/jpg" && d == "image/jpeg")
}
