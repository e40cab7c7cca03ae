// Package media stores user-uploaded images as resized WebP files.
package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"net/http"
	"os"
	"path/filepath"

	"inkwell/internal/featureflags"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// Upload kinds. Each kind is stored in its own directory.
const (
	KindAvatar = "avatar"
	KindHeader = "header"
)

const (
	DefaultMaxUploadMB = 5
	MaxEdge            = 1600
	AvatarMaxEdge      = 512
	WebPQuality        = 80
)

// Service validates, resizes and stores images under a root directory that is
// served at /media.
type Service struct {
	root     string
	maxBytes int64
	flags    *featureflags.Manager
}

// NewService creates a Service writing below root.
func NewService(root string, maxUploadMB int, flags *featureflags.Manager) *Service {
	if maxUploadMB <= 0 {
		maxUploadMB = DefaultMaxUploadMB
	}
	return &Service{
		root:     root,
		maxBytes: int64(maxUploadMB) * 1024 * 1024,
		flags:    flags,
	}
}

// Root is the directory files are written to.
func (s *Service) Root() string {
	return s.root
}

// SaveImage stores the image read from r and returns its public path.
func (s *Service) SaveImage(ctx context.Context, ownerID uint, kind, filename string, r io.Reader) (url string, err error) {
	ctx, span := observability.StartSpan(ctx, "media.SaveImage")
	defer func() {
		result := "ok"
		if err != nil {
			result = "rejected"
			if appErr, ok := models.AsAppError(err); ok && appErr.Code == models.CodeInternal {
				result = "failed"
			}
		}
		observability.MediaUploads.WithLabelValues(kind, result).Inc()
		observability.EndSpan(span, err)
	}()

	if !s.flags.Enabled(featureflags.MediaUploads, ownerID) {
		return "", models.ErrFeatureDisabled
	}
	maxEdge, ok := maxEdgeFor(kind)
	if !ok {
		return "", models.NewFieldError("kind", "Must be avatar or header.")
	}

	content, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", models.NewInternalError(err)
	}
	if len(content) == 0 {
		return "", models.NewFieldError("image", "No file uploaded.")
	}
	if int64(len(content)) > s.maxBytes {
		return "", models.NewFieldError("image", fmt.Sprintf("File too large (max %dMB).", s.maxBytes/(1024*1024)))
	}
	if !isAllowedImageMIME(http.DetectContentType(content)) {
		return "", models.NewFieldError("image", "Unsupported image type "+filepath.Ext(filename)+".")
	}

	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return "", models.NewFieldError("image", "Invalid image file.")
	}
	if err := ctx.Err(); err != nil {
		return "", models.NewInternalError(err)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, resizeToFit(decoded, maxEdge), &webp.Options{Quality: WebPQuality}); err != nil {
		return "", models.NewInternalError(err)
	}

	name := uuid.NewString() + ".webp"
	if err := writeFile(filepath.Join(s.root, kind, name), buf.Bytes()); err != nil {
		return "", models.NewInternalError(err)
	}
	return "/media/" + kind + "/" + name, nil
}

func maxEdgeFor(kind string) (int, bool) {
	switch kind {
	case KindAvatar:
		return AvatarMaxEdge, true
	case KindHeader:
		return MaxEdge, true
	}
	return 0, false
}

func isAllowedImageMIME(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

// resizeToFit scales src down so its longer side is at most maxEdge.
func resizeToFit(src image.Image, maxEdge int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 || (w <= maxEdge && h <= maxEdge) {
		return src
	}

	scale := float64(maxEdge) / float64(max(w, h))
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
