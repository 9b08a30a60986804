package usecase

import (
	"bytes"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/webp" // Register WebP decoder

	"recipe_backend/internal/feature/recipe/domain"
)

// ImageUploadDir is the directory, relative to the media root, that holds recipe images.
const ImageUploadDir = "uploads/recipe"

// ImageFilePath generates a unique path for an uploaded recipe image.
// Only the extension of the client supplied filename is kept.
func ImageFilePath(filename string) string {
	ext := strings.ToLower(filepath.Ext(path.Base(strings.ReplaceAll(filename, `\`, "/"))))
	return path.Join(ImageUploadDir, uuid.NewString()+ext)
}

// validateImage checks that data decodes as a supported image format.
func validateImage(data []byte) error {
	if len(data) == 0 {
		return domain.ErrImageRequired
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width == 0 || cfg.Height == 0 {
		return domain.ErrInvalidImage
	}
	return nil
}
