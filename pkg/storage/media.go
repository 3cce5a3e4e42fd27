package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"

	"github.com/google/uuid"
)

// ErrEmptyMedia is returned when Upload is given no bytes.
var ErrEmptyMedia = errors.New("storage: empty media")

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// MediaStore stores advert images on a disk under a folder with random
// names and returns their public URL.
type MediaStore struct {
	disk   Disk
	folder string
}

func NewMediaStore(disk Disk, folder string) *MediaStore {
	return &MediaStore{disk: disk, folder: folder}
}

// Upload sniffs the content type, writes the bytes and returns the URL.
func (s *MediaStore) Upload(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyMedia
	}

	contentType := http.DetectContentType(data)
	ext, ok := extensions[contentType]
	if !ok {
		ext = ".bin"
	}
	key := path.Join(s.folder, uuid.NewString()+ext)

	if err := s.disk.Put(ctx, key, data, contentType); err != nil {
		return "", fmt.Errorf("media upload: %w", err)
	}
	return s.disk.URL(key), nil
}
