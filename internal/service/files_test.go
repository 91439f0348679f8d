package service

import (
	"context"
	"errors"
	"testing"

	"github.com/camadaviva/snaps/internal/errs"
	"github.com/camadaviva/snaps/internal/storage"
	"github.com/gofrs/uuid/v5"
)

func TestFiles_Upload_PathMustBelongToViewer(t *testing.T) {
	t.Parallel()
	b, err := storage.New(t.TempDir(), "https://cdn.example.com")
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	s := NewFileService(b)
	me := uuid.Must(uuid.NewV4())
	ctx := context.Background()

	url, err := s.Upload(ctx, me, storage.MediaBucket, me.String()+"/1700000000000-foto.jpg", []byte("jpeg"), false)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	want := "https://cdn.example.com/snaps-media/" + me.String() + "/1700000000000-foto.jpg"
	if url != want {
		t.Fatalf("url = %q, want %q", url, want)
	}

	other := uuid.Must(uuid.NewV4())
	if _, err := s.Upload(ctx, me, storage.MediaBucket, other.String()+"/x.jpg", []byte("jpeg"), false); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("want ErrForbidden for foreign prefix, got %v", err)
	}
	if _, err := s.Upload(ctx, me, storage.MediaBucket, me.String()+"/../"+other.String()+"/x.jpg", []byte("jpeg"), false); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("want ErrForbidden for escaping prefix, got %v", err)
	}
	if _, err := s.Upload(ctx, uuid.Nil, storage.AvatarBucket, "x.jpg", []byte("jpeg"), true); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
	if _, err := s.Upload(ctx, me, storage.MediaBucket, me.String()+"/1700000000000-foto.jpg", []byte("again"), false); !errors.Is(err, errs.ErrAlreadyExists) {
		t.Fatalf("want ErrAlreadyExists without upsert, got %v", err)
	}
}
