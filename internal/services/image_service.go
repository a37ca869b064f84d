package services

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// UploadKind describes where an uploaded image goes and how it is constrained
type UploadKind struct {
	Folder    string
	MaxBytes  int64
	MaxWidth  int
	MaxHeight int
}

// Upload kinds used by the roster, staff and settings endpoints
var (
	UploadStudentPhoto = UploadKind{Folder: "students", MaxBytes: 5 << 20, MaxWidth: 800, MaxHeight: 800}
	UploadRoomImage    = UploadKind{Folder: "rooms", MaxBytes: 5 << 20, MaxWidth: 1600, MaxHeight: 1200}
	UploadCarousel     = UploadKind{Folder: "carousel", MaxBytes: 1 << 20, MaxWidth: 1920, MaxHeight: 1080}
	UploadAboutImage   = UploadKind{Folder: "about", MaxBytes: 500 << 10, MaxWidth: 1200, MaxHeight: 900}
	UploadAmenities    = UploadKind{Folder: "amenities", MaxBytes: 500 << 10, MaxWidth: 1200, MaxHeight: 900}
	UploadCampus       = UploadKind{Folder: "campus", MaxBytes: 1 << 20, MaxWidth: 1600, MaxHeight: 1200}
	UploadStaffPhoto   = UploadKind{Folder: "staff", MaxBytes: 2 << 20, MaxWidth: 600, MaxHeight: 600}
)

// UploadKindForGallery maps a settings gallery to its upload constraints
func UploadKindForGallery(gallery string) (UploadKind, bool) {
	switch gallery {
	case "carousel":
		return UploadCarousel, true
	case "amenities":
		return UploadAmenities, true
	case "campus":
		return UploadCampus, true
	}
	return UploadKind{}, false
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// ImageStore saves uploaded images and removes replaced ones
type ImageStore interface {
	Save(file *multipart.FileHeader, kind UploadKind) (string, error)
	Delete(publicPath string) error
}

// ImageService stores uploads on local disk as WebP, served under a URL prefix
type ImageService struct {
	dir       string
	urlPrefix string
	quality   float32
}

// NewImageService creates an image store rooted at dir, published at urlPrefix
func NewImageService(dir, urlPrefix string) *ImageService {
	return &ImageService{
		dir:       dir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		quality:   85,
	}
}

// Save validates, fits and re-encodes the upload, returning its public path
func (s *ImageService) Save(file *multipart.FileHeader, kind UploadKind) (string, error) {
	if file == nil {
		return "", InvalidArgument("No file uploaded")
	}
	if file.Size > kind.MaxBytes {
		return "", InvalidArgumentf("File too large. Maximum size is %s", humanSize(kind.MaxBytes))
	}
	if !allowedImageExts[strings.ToLower(filepath.Ext(file.Filename))] {
		return "", InvalidArgument("Only image files (jpeg, jpg, png, webp) are allowed")
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, kind.MaxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > kind.MaxBytes {
		return "", InvalidArgumentf("File too large. Maximum size is %s", humanSize(kind.MaxBytes))
	}

	encoded, err := s.Convert(data, kind)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d-%s.webp", time.Now().UnixMilli(), uuid.NewString()[:8])
	folder := filepath.Join(s.dir, kind.Folder)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload folder: %w", err)
	}

	tmp, err := os.CreateTemp(folder, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(folder, name)); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to store upload: %w", err)
	}

	return path.Join(s.urlPrefix, kind.Folder, name), nil
}

// Convert decodes jpeg, png or webp bytes, fits them inside the kind's
// bounds and encodes the result as lossy WebP
func (s *ImageService) Convert(data []byte, kind UploadKind) ([]byte, error) {
	contentType := http.DetectContentType(data)
	if !allowedImageTypes[contentType] {
		return nil, InvalidArgument("Only image files (jpeg, jpg, png, webp) are allowed")
	}

	var img image.Image
	var err error
	if contentType == "image/webp" {
		img, err = webp.Decode(bytes.NewReader(data))
	} else {
		img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, InvalidArgument("Could not read image file")
	}

	if kind.MaxWidth > 0 && kind.MaxHeight > 0 {
		b := img.Bounds()
		if b.Dx() > kind.MaxWidth || b.Dy() > kind.MaxHeight {
			img = imaging.Fit(img, kind.MaxWidth, kind.MaxHeight, imaging.Lanczos)
		}
	}

	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Lossless: false, Quality: s.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

// Delete removes a stored upload by its public path. Paths outside the
// upload prefix (bundled assets) and already-missing files are ignored.
func (s *ImageService) Delete(publicPath string) error {
	if publicPath == "" {
		return nil
	}
	cleaned := path.Clean("/" + strings.TrimPrefix(publicPath, "/"))
	if !strings.HasPrefix(cleaned, s.urlPrefix+"/") {
		return nil
	}

	rel := strings.TrimPrefix(cleaned, s.urlPrefix+"/")
	target := filepath.Join(s.dir, filepath.FromSlash(rel))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", publicPath, err)
	}
	return nil
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10:
		return fmt.Sprintf("%dKB", n>>10)
	}
	return fmt.Sprintf("%dB", n)
}
