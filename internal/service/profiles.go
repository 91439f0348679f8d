package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/camadaviva/snaps/internal/errs"
	"github.com/camadaviva/snaps/internal/model"
	"github.com/camadaviva/snaps/internal/repository"
	"github.com/gofrs/uuid/v5"
)

const (
	MaxUsernameLen = 40
	MaxBioLen      = 500
)

// ProfileService reads and edits public profiles.
type ProfileService interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	// Update overwrites the viewer's own profile.
	Update(ctx context.Context, viewer uuid.UUID, p model.Profile) (*model.Profile, error)
}

type ProfileServiceImpl struct {
	profiles repository.ProfileRepository
}

// NewProfileService constructs ProfileService.
func NewProfileService(profiles repository.ProfileRepository) *ProfileServiceImpl {
	return &ProfileServiceImpl{profiles: profiles}
}

func (s *ProfileServiceImpl) Get(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	if id == uuid.Nil {
		return nil, errs.ErrNotFound
	}
	return s.profiles.GetProfile(ctx, id)
}

func (s *ProfileServiceImpl) Update(ctx context.Context, viewer uuid.UUID, p model.Profile) (*model.Profile, error) {
	if viewer == uuid.Nil {
		return nil, errs.ErrUnauthorized
	}
	p.ID = viewer
	p.Username = strings.TrimSpace(p.Username)
	p.Bio = strings.TrimSpace(p.Bio)
	p.WebsiteURL = strings.TrimSpace(p.WebsiteURL)
	switch {
	case p.Username == "":
		return nil, fmt.Errorf("username is required: %w", errs.ErrInvalid)
	case utf8.RuneCountInString(p.Username) > MaxUsernameLen:
		return nil, fmt.Errorf("username longer than %d: %w", MaxUsernameLen, errs.ErrInvalid)
	case utf8.RuneCountInString(p.Bio) > MaxBioLen:
		return nil, fmt.Errorf("bio longer than %d: %w", MaxBioLen, errs.ErrInvalid)
	}
	if err := checkURL(p.WebsiteURL); err != nil {
		return nil, fmt.Errorf("website: %w", err)
	}
	if err := s.profiles.UpdateProfile(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
