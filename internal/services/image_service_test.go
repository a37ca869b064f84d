package services

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// uploadedFile round-trips content through a multipart form so the header is
// backed by a real part, the same as a gin upload
func uploadedFile(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func TestImageService_SaveConvertsToWebP(t *testing.T) {
	dir := t.TempDir()
	service := NewImageService(dir, "uploads/")

	url, err := service.Save(uploadedFile(t, "me.PNG", pngBytes(t, 1000, 500)), UploadStaffPhoto)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "/uploads/staff/"), url)
	assert.True(t, strings.HasSuffix(url, ".webp"), url)

	stored, err := os.ReadFile(filepath.Join(dir, "staff", filepath.Base(url)))
	require.NoError(t, err)
	cfg, err := webp.DecodeConfig(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, 600, cfg.Width)
	assert.Equal(t, 300, cfg.Height)

	require.NoError(t, service.Delete(url))
	_, err = os.Stat(filepath.Join(dir, "staff", filepath.Base(url)))
	assert.True(t, os.IsNotExist(err))
}

func TestImageService_SaveRejects(t *testing.T) {
	service := NewImageService(t.TempDir(), "/uploads")
	small := UploadKind{Folder: "tiny", MaxBytes: 64, MaxWidth: 10, MaxHeight: 10}

	tests := []struct {
		name    string
		file    *multipart.FileHeader
		kind    UploadKind
		message string
	}{
		{"missing", nil, UploadStaffPhoto, "No file uploaded"},
		{"extension", uploadedFile(t, "notes.txt", []byte("hello")), UploadStaffPhoto, "Only image files (jpeg, jpg, png, webp) are allowed"},
		{"content", uploadedFile(t, "fake.jpg", []byte("definitely not an image")), UploadStaffPhoto, "Only image files (jpeg, jpg, png, webp) are allowed"},
		{"size", uploadedFile(t, "big.png", pngBytes(t, 200, 200)), small, "File too large. Maximum size is 64B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Save(tt.file, tt.kind)
			require.Error(t, err)
			assert.Equal(t, KindInvalidArgument, KindOf(err))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestImageService_DeleteIgnoresForeignPaths(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(dir, "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))
	service := NewImageService(filepath.Join(dir, "uploads"), "/uploads")

	assert.NoError(t, service.Delete("assets/room-1.png"))
	assert.NoError(t, service.Delete("/uploads/../keep.txt"))
	assert.NoError(t, service.Delete("/uploads/rooms/missing.webp"))
	assert.NoError(t, service.Delete(""))

	_, err := os.Stat(outside)
	assert.NoError(t, err)
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "5MB", humanSize(5<<20))
	assert.Equal(t, "500KB", humanSize(500<<10))
	assert.Equal(t, "64B", humanSize(64))
}
