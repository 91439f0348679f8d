package postgres

import (
	"context"
	"errors"

	"github.com/camadaviva/snaps/internal/errs"
	"github.com/camadaviva/snaps/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// UserRepo implements UserRepository and ProfileRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new user row and its empty profile in one transaction.
func (r *UserRepo) Create(ctx context.Context, u *model.User, username string) error {
	const insUser = `INSERT INTO users (id, email, pwd_hash, salt) VALUES ($1, $2, $3, $4)`
	const insProfile = `INSERT INTO profiles (id, username) VALUES ($1, $2)`
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insUser, u.ID, u.Email, u.PwdHash, u.Salt); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, insProfile, u.ID, username)
		return err
	})
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `SELECT id, email, pwd_hash, salt, created_at FROM users WHERE id=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByEmail selects a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT id, email, pwd_hash, salt, created_at FROM users WHERE email=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, email))
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.PwdHash, &u.Salt, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetProfile selects a public profile by user ID.
func (r *UserRepo) GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	const q = `SELECT id, username, bio, avatar_url, website_url FROM profiles WHERE id=$1`
	var p model.Profile
	err := r.db.Pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.Username, &p.Bio, &p.AvatarURL, &p.WebsiteURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// UpdateProfile overwrites the editable profile fields.
func (r *UserRepo) UpdateProfile(ctx context.Context, p *model.Profile) error {
	const q = `
UPDATE profiles
SET username=$2, bio=$3, avatar_url=$4, website_url=$5
WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, p.ID, p.Username, p.Bio, p.AvatarURL, p.WebsiteURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
