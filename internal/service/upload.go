package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/petstore/pkg/logging"
)

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// UploadService stores product images on local disk under Dir.
type UploadService struct {
	Dir     string
	MaxSize int64
	Now     func() time.Time
}

// SaveImage validates the extension and size, writes the file under a fresh
// name and returns that name.
func (s *UploadService) SaveImage(ctx context.Context, original string, size int64, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(original))
	if !allowedImageExt[ext] {
		return "", newError(ErrValidation, "Unsupported file type. Allowed: .jpg, .jpeg, .png, .gif, .webp")
	}
	if size > s.MaxSize {
		return "", newError(ErrValidation, "File too large. Maximum size is %d bytes", s.MaxSize)
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	name := fmt.Sprintf("%d-%s%s", now().UnixMilli(), uuid.NewString(), ext)
	path := filepath.Join(s.Dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	// The declared size can lie; cap what is actually read.
	written, copyErr := io.Copy(f, io.LimitReader(r, s.MaxSize+1))
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil || written > s.MaxSize {
		_ = os.Remove(path)
		if written > s.MaxSize {
			return "", newError(ErrValidation, "File too large. Maximum size is %d bytes", s.MaxSize)
		}
		if copyErr != nil {
			return "", fmt.Errorf("write upload: %w", copyErr)
		}
		return "", fmt.Errorf("close upload: %w", closeErr)
	}

	logging.FromContext(ctx).Info().Str("file", name).Int64("bytes", written).Msg("image_uploaded")
	return name, nil
}
