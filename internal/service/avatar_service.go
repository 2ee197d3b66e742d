package service

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"mime"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"aurachat/internal/config"
	"aurachat/internal/models"
	"aurachat/internal/observability"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
)

const (
	DefaultAvatarSize    = 200
	AvatarJPEGQuality    = 85
	AvatarWebPQuality    = 80
	AvatarMimeType       = "image/jpeg"
	WebPMimeType         = "image/webp"
	maxAvatarUploadBytes = 16 << 20
	maxAvatarSide        = 4096
	maxAvatarPixels      = 16_000_000
)

var defaultAvatarExtensions = []string{"png", "jpg", "jpeg", "gif"}

var allowedAvatarMIME = []string{"image/png", "image/jpeg", "image/gif"}

// AvatarProcessor validates uploaded images and normalizes them to a square JPEG.
type AvatarProcessor struct {
	size       int
	extensions []string
}

// NewAvatarProcessor reads the target size and extension allow-list from cfg.
func NewAvatarProcessor(cfg *config.Config) *AvatarProcessor {
	p := &AvatarProcessor{size: DefaultAvatarSize, extensions: defaultAvatarExtensions}
	if cfg != nil {
		if cfg.AvatarSize > 0 {
			p.size = cfg.AvatarSize
		}
		if exts := cfg.AllowedAvatarExtensions(); len(exts) > 0 {
			p.extensions = exts
		}
	}
	return p
}

// Size is the edge length of processed avatars in pixels.
func (p *AvatarProcessor) Size() int { return p.size }

// Process checks the file name and content, then resizes the image to
// size x size and re-encodes it as JPEG. The aspect ratio is not preserved.
func (p *AvatarProcessor) Process(filename, contentType string, content []byte) (out []byte, err error) {
	start := time.Now()
	defer func() { observability.ObserveAvatar(start, err) }()

	if strings.TrimSpace(filename) == "" || len(content) == 0 {
		return nil, models.NewValidationError("No file selected")
	}
	if len(content) > maxAvatarUploadBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", maxAvatarUploadBytes>>20))
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" || !slices.Contains(p.extensions, ext) {
		return nil, models.NewValidationError("Invalid file type. Allowed: " + strings.ToUpper(strings.Join(p.extensions, ", ")))
	}

	detected := normalizeContentType(http.DetectContentType(content))
	if !slices.Contains(allowedAvatarMIME, detected) {
		return nil, models.NewValidationError("Invalid file MIME type")
	}
	if provided := normalizeContentType(contentType); strings.HasPrefix(provided, "image/") && !isMatchingContentType(provided, detected) {
		return nil, models.NewValidationError("Invalid file MIME type")
	}

	// Headers are checked first so a tiny file declaring huge dimensions
	// never reaches the full decoder.
	header, _, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}
	if header.Width <= 0 || header.Height <= 0 ||
		header.Width > maxAvatarSide || header.Height > maxAvatarSide ||
		header.Width*header.Height > maxAvatarPixels {
		return nil, models.NewValidationError("Invalid image file")
	}

	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}

	resized := resizeSquare(decoded, p.size)
	out, err = encodeJPEG(resized, AvatarJPEGQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

// ToWebP re-encodes a stored avatar for clients that asked for WebP.
func (p *AvatarProcessor) ToWebP(stored []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(stored))
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("decode stored avatar: %w", err))
	}
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: AvatarWebPQuality}); err != nil {
		return nil, models.NewInternalError(err)
	}
	return buf.Bytes(), nil
}

// resizeSquare scales src to size x size onto an opaque white canvas, since
// JPEG has no alpha channel.
func resizeSquare(src image.Image, size int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
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
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}
