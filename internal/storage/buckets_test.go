package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/camadaviva/snaps/internal/errs"
	"github.com/stretchr/testify/require"
)

func TestBuckets_UploadAndPublicURL(t *testing.T) {
	root := t.TempDir()
	b, err := New(root, "https://cdn.example.com/storage/")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, b.Upload(ctx, MediaBucket, "u1/170-foto praia.jpg", []byte("jpeg"), false))
	got, err := os.ReadFile(filepath.Join(root, MediaBucket, "u1", "170-foto praia.jpg"))
	require.NoError(t, err)
	require.Equal(t, "jpeg", string(got))

	u, err := b.PublicURL(MediaBucket, "u1/170-foto praia.jpg")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/storage/snaps-media/u1/170-foto%20praia.jpg", u)

	err = b.Upload(ctx, MediaBucket, "u1/170-foto praia.jpg", []byte("again"), false)
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestBuckets_UpsertOverwrites(t *testing.T) {
	root := t.TempDir()
	b, err := New(root, "http://localhost/files")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, b.Upload(ctx, AvatarBucket, "u1/avatar", []byte("v1"), true))
	require.NoError(t, b.Upload(ctx, AvatarBucket, "u1/avatar", []byte("v2"), true))
	got, err := os.ReadFile(filepath.Join(root, AvatarBucket, "u1", "avatar"))
	require.NoError(t, err)
	require.Equal(t, "v2", string(got))
}

func TestBuckets_RejectsBadInput(t *testing.T) {
	b, err := New(t.TempDir(), "http://localhost")
	require.NoError(t, err)
	ctx := context.Background()

	require.ErrorIs(t, b.Upload(ctx, "nope", "a", []byte("x"), false), errs.ErrNotFound)
	for _, p := range []string{"", ".", "../etc/passwd", "/abs", "a/../../b"} {
		require.ErrorIs(t, b.Upload(ctx, MediaBucket, p, []byte("x"), false), errs.ErrInvalid, p)
	}
	require.ErrorIs(t, b.Upload(ctx, MediaBucket, "a", nil, false), errs.ErrInvalid)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	require.ErrorIs(t, b.Upload(cctx, MediaBucket, "a", []byte("x"), false), context.Canceled)
}
