package service

import (
	"context"
	"path"
	"strings"

	"github.com/camadaviva/snaps/internal/errs"
	"github.com/gofrs/uuid/v5"
)

// ObjectStore is the bucket backend used by FileService.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, objectPath string, data []byte, upsert bool) error
	PublicURL(bucket, objectPath string) (string, error)
}

// FileService uploads media on behalf of a viewer.
type FileService interface {
	// Upload stores data and returns its public URL. objectPath must live under "<viewer>/".
	Upload(ctx context.Context, viewer uuid.UUID, bucket, objectPath string, data []byte, upsert bool) (string, error)
	PublicURL(bucket, objectPath string) (string, error)
}

type FileServiceImpl struct {
	store ObjectStore
}

// NewFileService constructs FileService.
func NewFileService(store ObjectStore) *FileServiceImpl {
	return &FileServiceImpl{store: store}
}

// Upload rejects paths outside the viewer's own prefix with errs.ErrForbidden.
func (s *FileServiceImpl) Upload(ctx context.Context, viewer uuid.UUID, bucket, objectPath string, data []byte, upsert bool) (string, error) {
	if viewer == uuid.Nil {
		return "", errs.ErrUnauthorized
	}
	if !strings.HasPrefix(path.Clean(objectPath), viewer.String()+"/") {
		return "", errs.ErrForbidden
	}
	if err := s.store.Upload(ctx, bucket, objectPath, data, upsert); err != nil {
		return "", err
	}
	return s.store.PublicURL(bucket, objectPath)
}

func (s *FileServiceImpl) PublicURL(bucket, objectPath string) (string, error) {
	return s.store.PublicURL(bucket, objectPath)
}
