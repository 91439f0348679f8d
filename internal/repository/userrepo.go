// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/camadaviva/snaps/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepository provides access to accounts and their public profiles.
type UserRepository interface {
	// Create inserts a new user together with its initial profile.
	Create(ctx context.Context, u *model.User, username string) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByEmail loads a user by email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// ProfileRepository reads and updates public profiles.
type ProfileRepository interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	UpdateProfile(ctx context.Context, p *model.Profile) error
}
