// Package storage keeps uploaded media in named buckets on the local filesystem
// and hands out their public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/camadaviva/snaps/internal/errs"
)

// Well-known buckets.
const (
	MediaBucket  = "snaps-media"
	AvatarBucket = "avatars"
)

// MaxObjectSize bounds a single upload.
const MaxObjectSize = 20 << 20

// Buckets is a set of directories under one root, each served under PublicBase/<bucket>/.
type Buckets struct {
	root       string
	publicBase string
	names      map[string]struct{}
}

// New creates (if needed) a directory per bucket under root.
func New(root, publicBase string, names ...string) (*Buckets, error) {
	if len(names) == 0 {
		names = []string{MediaBucket, AvatarBucket}
	}
	b := &Buckets{root: root, publicBase: strings.TrimRight(publicBase, "/"), names: map[string]struct{}{}}
	for _, n := range names {
		if err := os.MkdirAll(filepath.Join(root, n), 0o755); err != nil {
			return nil, fmt.Errorf("bucket %s: %w", n, err)
		}
		b.names[n] = struct{}{}
	}
	return b, nil
}

// Upload stores data at bucket/objectPath. Unless upsert is set an existing object is an error.
func (b *Buckets) Upload(ctx context.Context, bucket, objectPath string, data []byte, upsert bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(data) == 0 || len(data) > MaxObjectSize {
		return fmt.Errorf("object size %d: %w", len(data), errs.ErrInvalid)
	}
	full, err := b.resolve(bucket, objectPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}

	if !upsert {
		f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			return errs.ErrAlreadyExists
		}
		if err != nil {
			return err
		}
		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			_ = os.Remove(full)
			return err
		}
		return f.Close()
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), full)
}

// PublicURL returns the URL under which bucket/objectPath is served.
func (b *Buckets) PublicURL(bucket, objectPath string) (string, error) {
	if _, err := b.resolve(bucket, objectPath); err != nil {
		return "", err
	}
	segs := strings.Split(path.Clean(objectPath), "/")
	for i := range segs {
		segs[i] = url.PathEscape(segs[i])
	}
	return b.publicBase + "/" + bucket + "/" + strings.Join(segs, "/"), nil
}

// resolve maps bucket/objectPath to a file path, refusing anything that escapes the bucket.
func (b *Buckets) resolve(bucket, objectPath string) (string, error) {
	if _, ok := b.names[bucket]; !ok {
		return "", fmt.Errorf("bucket %q: %w", bucket, errs.ErrNotFound)
	}
	clean := path.Clean(objectPath)
	if objectPath == "" || clean == "." || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("object path %q: %w", objectPath, errs.ErrInvalid)
	}
	return filepath.Join(b.root, bucket, filepath.FromSlash(clean)), nil
}
