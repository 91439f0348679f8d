// Package service contains the gateway's application services.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	pkgcrypto "github.com/camadaviva/snaps/internal/crypto"
	"github.com/camadaviva/snaps/internal/errs"
	"github.com/camadaviva/snaps/internal/limiter"
	"github.com/camadaviva/snaps/internal/model"
	"github.com/camadaviva/snaps/internal/repository"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
)

// MinPasswordLen is the shortest accepted password.
const MinPasswordLen = 6

// AuthService defines account and session operations.
type AuthService interface {
	// SignUp creates a new account (and its profile) and returns the user ID.
	SignUp(ctx context.Context, email, password string) (uuid.UUID, error)
	// SignIn applies rate limiting by (email, addr) and issues an access token.
	SignIn(ctx context.Context, email, password, addr string) (model.Tokens, model.Viewer, error)
	// Viewer resolves a user ID taken from a verified token.
	Viewer(ctx context.Context, id uuid.UUID) (model.Viewer, error)
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	hasher    pkgcrypto.Hasher
	signKey   []byte
	accessTTL time.Duration
	lim       limiter.Limiter
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, hasher pkgcrypto.Hasher, signKey []byte, accessTTL time.Duration, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, hasher: hasher, signKey: signKey, accessTTL: accessTTL, lim: lim}
}

// SignUp validates credentials, hashes the password with a fresh salt and stores the user.
// The profile username defaults to the local part of the email.
func (s *AuthServiceImpl) SignUp(ctx context.Context, email, password string) (uuid.UUID, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return uuid.Nil, err
	}
	if len(password) < MinPasswordLen {
		return uuid.Nil, fmt.Errorf("password shorter than %d: %w", MinPasswordLen, errs.ErrInvalid)
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}
	salt, err := pkgcrypto.NewSalt()
	if err != nil {
		return uuid.Nil, err
	}
	u := &model.User{
		ID:      uid,
		Email:   email,
		PwdHash: s.hasher.Hash(password, salt),
		Salt:    salt,
	}
	if err := s.users.Create(ctx, u, email[:strings.IndexByte(email, '@')]); err != nil {
		return uuid.Nil, err
	}
	return uid, nil
}

// SignIn authenticates with rate limiting by (email, addr).
func (s *AuthServiceImpl) SignIn(ctx context.Context, email, password, addr string) (model.Tokens, model.Viewer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	key := limiter.NewKey(email, addr)

	allowed, _, err := s.lim.Allow(ctx, key)
	if err != nil {
		return model.Tokens{}, model.Viewer{}, err
	}
	if !allowed {
		return model.Tokens{}, model.Viewer{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return model.Tokens{}, model.Viewer{}, err
	}
	if err != nil || !s.hasher.Verify(password, u.Salt, u.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, key); ferr == nil && blocked {
			return model.Tokens{}, model.Viewer{}, errs.ErrRateLimited
		}
		// unknown email and wrong password look the same
		return model.Tokens{}, model.Viewer{}, errs.ErrUnauthorized
	}

	// best-effort reset
	_ = s.lim.Success(ctx, key)

	tok, err := s.issueAccessToken(u.ID)
	if err != nil {
		return model.Tokens{}, model.Viewer{}, err
	}
	return tok, model.Viewer{ID: u.ID, Email: u.Email}, nil
}

// Viewer loads the identity behind an authenticated request.
func (s *AuthServiceImpl) Viewer(ctx context.Context, id uuid.UUID) (model.Viewer, error) {
	if id == uuid.Nil {
		return model.Viewer{}, errs.ErrUnauthorized
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Viewer{}, errs.ErrUnauthorized
		}
		return model.Viewer{}, err
	}
	return model.Viewer{ID: u.ID, Email: u.Email}, nil
}

// issueAccessToken creates a signed HS256 JWT for the given subject.
func (s *AuthServiceImpl) issueAccessToken(userID uuid.UUID) (model.Tokens, error) {
	now := time.Now()
	exp := now.Add(s.accessTTL)
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signKey)
	if err != nil {
		return model.Tokens{}, err
	}
	return model.Tokens{AccessToken: signed, ExpiresAt: exp}, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("email %q: %w", raw, errs.ErrInvalid)
	}
	return email, nil
}
