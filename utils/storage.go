package utils

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxImageSize adalah batas ukuran upload gambar (2MB)
const MaxImageSize = 2 << 20

const (
	EvidenceDir  = "public/uploads/evidence"
	ComplaintDir = "public/uploads/complaints"
)

var (
	ErrImageFormat = errors.New("Format gambar harus jpeg, jpg, atau png.")
	ErrImageSize   = errors.New("Ukuran gambar maksimal 2MB.")
)

// ValidateImage memeriksa tipe dan ukuran file upload gambar
func ValidateImage(file *multipart.FileHeader) error {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".jpeg" && ext != ".jpg" && ext != ".png" {
		return ErrImageFormat
	}
	if file.Size > MaxImageSize {
		return ErrImageSize
	}
	return nil
}

// SaveUploadedImage menyimpan file upload ke dir dan mengembalikan path-nya.
// Penulisan file terjadi di luar transaksi database; pemanggil bertanggung
// jawab menghapus file bila operasi database setelahnya gagal.
func SaveUploadedImage(c *gin.Context, file *multipart.FileHeader, dir, filename string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating upload directory: %w", err)
	}

	path := filepath.Join(dir, filename)
	if err := c.SaveUploadedFile(file, path); err != nil {
		return "", fmt.Errorf("error saving image: %w", err)
	}
	return path, nil
}

func DeleteFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		ErrorLogger.Printf("Error removing file %s: %v", path, err)
	}
}

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
