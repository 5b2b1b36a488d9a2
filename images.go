package cocktailsgram

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

const (
	maxImageWidth = 800
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
	recipesSubdir = "recipes"
)

var errImageTooLarge = errors.New("image is larger than 10MB")

// processImage decodes an image from src, resizes it to maxImageWidth when
// wider, and encodes it as JPEG.
func processImage(src io.Reader) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// readRecipeImage validates and re-encodes an uploaded recipe photo. The
// returned path is where saveRecipeImage will put it, relative to /media/.
func readRecipeImage(file *multipart.FileHeader) (name string, data []byte, err error) {
	if file.Size > maxUploadSize {
		return "", nil, errImageTooLarge
	}
	src, err := file.Open()
	if err != nil {
		return "", nil, err
	}
	defer src.Close()

	data, err = processImage(io.LimitReader(src, maxUploadSize))
	if err != nil {
		return "", nil, err
	}
	return filepath.ToSlash(filepath.Join(recipesSubdir, uuid.NewString()+".jpg")), data, nil
}

// saveRecipeImage writes an image produced by readRecipeImage under MediaDir.
func (a *App) saveRecipeImage(name string, data []byte) error {
	path := filepath.Join(a.Config.MediaDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create media dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	return nil
}

func (a *App) removeRecipeImage(name string) {
	_ = os.Remove(filepath.Join(a.Config.MediaDir, filepath.FromSlash(name)))
}

// mediaURL returns the public URL for a file stored under MediaDir.
func mediaURL(name string) string {
	return "/media/" + name
}
