package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/camadaviva/snaps/internal/errs"
	"github.com/camadaviva/snaps/internal/model"
	"github.com/camadaviva/snaps/internal/repository"
	"github.com/gofrs/uuid/v5"
)

const (
	// MaxTitleLen bounds snap titles, in runes.
	MaxTitleLen = 200
	// MaxBatch bounds a single batch delete.
	MaxBatch = 500
)

// SnapService defines snap CRUD plus the search and fork procedures.
type SnapService interface {
	Create(ctx context.Context, viewer uuid.UUID, f model.SnapFields) (*model.Snap, error)
	// Get returns a snap that is public or owned by viewer. viewer may be uuid.Nil.
	Get(ctx context.Context, viewer, id uuid.UUID) (*model.Snap, error)
	Update(ctx context.Context, viewer, id uuid.UUID, f model.SnapFields) error
	// DeleteBatch deletes all listed snaps of viewer or none.
	DeleteBatch(ctx context.Context, viewer uuid.UUID, ids []uuid.UUID) error
	List(ctx context.Context, viewer uuid.UUID, f model.SnapFilter) ([]model.Snap, error)
	Search(ctx context.Context, term string) ([]model.Snap, error)
	Fork(ctx context.Context, viewer, id uuid.UUID) (uuid.UUID, error)
}

type SnapServiceImpl struct {
	snaps repository.SnapRepository
}

// NewSnapService constructs SnapService.
func NewSnapService(snaps repository.SnapRepository) *SnapServiceImpl {
	return &SnapServiceImpl{snaps: snaps}
}

// Create validates fields and stores a snap owned by viewer.
func (s *SnapServiceImpl) Create(ctx context.Context, viewer uuid.UUID, f model.SnapFields) (*model.Snap, error) {
	if viewer == uuid.Nil {
		return nil, errs.ErrUnauthorized
	}
	f, err := cleanFields(f)
	if err != nil {
		return nil, err
	}
	return s.snaps.Insert(ctx, viewer, f)
}

func (s *SnapServiceImpl) Get(ctx context.Context, viewer, id uuid.UUID) (*model.Snap, error) {
	sn, err := s.snaps.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// private snaps are invisible, not forbidden
	if !sn.IsPublic && sn.UserID != viewer {
		return nil, errs.ErrNotFound
	}
	return sn, nil
}

func (s *SnapServiceImpl) Update(ctx context.Context, viewer, id uuid.UUID, f model.SnapFields) error {
	if viewer == uuid.Nil {
		return errs.ErrUnauthorized
	}
	f, err := cleanFields(f)
	if err != nil {
		return err
	}
	return s.snaps.Update(ctx, viewer, id, f)
}

func (s *SnapServiceImpl) DeleteBatch(ctx context.Context, viewer uuid.UUID, ids []uuid.UUID) error {
	if viewer == uuid.Nil {
		return errs.ErrUnauthorized
	}
	if len(ids) > MaxBatch {
		return fmt.Errorf("batch of %d exceeds %d: %w", len(ids), MaxBatch, errs.ErrInvalid)
	}
	return s.snaps.DeleteBatch(ctx, viewer, ids)
}

// List narrows the filter to what viewer may see: saved sets are private to
// their owner and hold public snaps plus the viewer's own, and other users'
// galleries show public snaps only.
func (s *SnapServiceImpl) List(ctx context.Context, viewer uuid.UUID, f model.SnapFilter) ([]model.Snap, error) {
	if f.SavedBy != uuid.Nil && f.SavedBy != viewer {
		return nil, errs.ErrForbidden
	}
	if f.OwnerID == uuid.Nil && f.SavedBy == uuid.Nil {
		return nil, fmt.Errorf("filter needs an owner or a saver: %w", errs.ErrInvalid)
	}
	switch {
	case f.OwnerID == viewer:
	case f.SavedBy == viewer:
		f.VisibleTo = viewer
	default:
		f.PublicOnly = true
	}
	return s.snaps.List(ctx, f)
}

func (s *SnapServiceImpl) Search(ctx context.Context, term string) ([]model.Snap, error) {
	return s.snaps.Search(ctx, term)
}

func (s *SnapServiceImpl) Fork(ctx context.Context, viewer, id uuid.UUID) (uuid.UUID, error) {
	if viewer == uuid.Nil {
		return uuid.Nil, errs.ErrUnauthorized
	}
	return s.snaps.Fork(ctx, id, viewer)
}

func cleanFields(f model.SnapFields) (model.SnapFields, error) {
	f.Title = strings.TrimSpace(f.Title)
	if f.Title == "" {
		return f, fmt.Errorf("title is required: %w", errs.ErrInvalid)
	}
	if utf8.RuneCountInString(f.Title) > MaxTitleLen {
		return f, fmt.Errorf("title longer than %d: %w", MaxTitleLen, errs.ErrInvalid)
	}
	if strings.TrimSpace(f.Status) == "" {
		f.Status = model.StatusPending
	}
	f.Tags = model.ParseTags(strings.Join(f.Tags, ","))
	if err := checkURL(f.SourceURL); err != nil {
		return f, fmt.Errorf("source url: %w", err)
	}
	return f, nil
}

func checkURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Join(errs.ErrInvalid, err)
	}
	return nil
}
