package service

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/jpeg"
	"testing"

	"aurachat/internal/config"
	"aurachat/internal/testutil"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvatarProcessor_ResizesToSquareJPEG(t *testing.T) {
	t.Parallel()
	p := NewAvatarProcessor(nil)

	inputs := map[string][]byte{
		"wide.png":  testutil.PNG(t, 640, 320),
		"tall.jpg":  testutil.JPEG(t, 100, 400),
		"tiny.gif":  testutil.GIF(t, 20, 20),
		"UPPER.PNG": testutil.PNG(t, 300, 300),
	}
	for name, content := range inputs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			out, err := p.Process(name, "", content)
			require.NoError(t, err)

			cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, "jpeg", format)
			assert.Equal(t, DefaultAvatarSize, cfg.Width)
			assert.Equal(t, DefaultAvatarSize, cfg.Height)
		})
	}
}

func TestAvatarProcessor_Rejections(t *testing.T) {
	t.Parallel()
	p := NewAvatarProcessor(nil)
	png := testutil.PNG(t, 10, 10)

	tests := []struct {
		name        string
		filename    string
		contentType string
		content     []byte
		msg         string
	}{
		{"empty filename", "", "", png, "No file selected"},
		{"empty content", "a.png", "", nil, "No file selected"},
		{"bad extension", "a.bmp", "", png, "Invalid file type. Allowed: PNG, JPG, JPEG, GIF"},
		{"no extension", "avatar", "", png, "Invalid file type. Allowed: PNG, JPG, JPEG, GIF"},
		{"text disguised as png", "a.png", "", []byte("definitely not an image"), "Invalid file MIME type"},
		{"declared type mismatch", "a.png", "image/gif", png, "Invalid file MIME type"},
		{"truncated png", "a.png", "image/png", png[:40], "Invalid image file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := p.Process(tt.filename, tt.contentType, tt.content)
			appErr := assertAppCode(t, err, "VALIDATION_ERROR")
			assert.Equal(t, tt.msg, appErr.Message)
		})
	}
}

// pngHeader returns a PNG signature plus an IHDR chunk declaring w x h
// 8-bit grayscale, with no pixel data behind it.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth; color type 0, compression, filter, interlace stay 0

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestAvatarProcessor_RejectsOversizedDimensions(t *testing.T) {
	t.Parallel()
	p := NewAvatarProcessor(nil)

	tests := map[string][]byte{
		"huge square":       pngHeader(16000, 16000),
		"one side too long": pngHeader(5000, 10),
		"over pixel budget": pngHeader(4000, 4001),
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			out, err := p.Process("a.png", "image/png", content)
			appErr := assertAppCode(t, err, "VALIDATION_ERROR")
			assert.Equal(t, "Invalid image file", appErr.Message)
			assert.Nil(t, out)
		})
	}

	_, _, err := image.DecodeConfig(bytes.NewReader(pngHeader(16000, 16000)))
	require.NoError(t, err, "header must parse so the dimension check is what rejects it")
}

func TestAvatarProcessor_ConfigOverrides(t *testing.T) {
	t.Parallel()
	p := NewAvatarProcessor(&config.Config{AvatarSize: 64, AvatarAllowedExtensions: "png"})
	assert.Equal(t, 64, p.Size())

	_, err := p.Process("a.jpg", "", testutil.JPEG(t, 10, 10))
	assertValidationError(t, err)

	out, err := p.Process("a.png", "image/png", testutil.PNG(t, 10, 10))
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
}

func TestAvatarProcessor_ToWebP(t *testing.T) {
	t.Parallel()
	p := NewAvatarProcessor(nil)
	stored, err := p.Process("a.png", "", testutil.PNG(t, 50, 50))
	require.NoError(t, err)

	converted, err := p.ToWebP(stored)
	require.NoError(t, err)
	cfg, err := webp.DecodeConfig(bytes.NewReader(converted))
	require.NoError(t, err)
	assert.Equal(t, DefaultAvatarSize, cfg.Width)

	_, err = p.ToWebP([]byte("garbage"))
	assertAppCode(t, err, "INTERNAL_ERROR")
}
