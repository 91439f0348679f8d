package limiter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the part of a pgx pool the limiter needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PG is a PostgreSQL-backed limiter over the signin_attempts table.
type PG struct {
	q      Querier
	policy Policy
	now    func() time.Time
}

// NewPG constructs a PostgreSQL-backed limiter. Zero policy fields fall back to DefaultPolicy.
func NewPG(q Querier, p Policy) *PG {
	if p.Window <= 0 {
		p.Window = DefaultPolicy.Window
	}
	if p.MaxFails <= 0 {
		p.MaxFails = DefaultPolicy.MaxFails
	}
	if p.BlockFor <= 0 {
		p.BlockFor = DefaultPolicy.BlockFor
	}
	return &PG{q: q, policy: p, now: time.Now}
}

// Allow reports whether sign-in is currently allowed and a retry-after duration.
func (l *PG) Allow(ctx context.Context, k Key) (bool, time.Duration, error) {
	const q = `SELECT blocked_until FROM signin_attempts WHERE email=$1 AND ip_hash=$2`
	var blockedUntil time.Time
	err := l.q.QueryRow(ctx, q, k.Email, k.IPHash).Scan(&blockedUntil)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return true, 0, nil
	case err != nil:
		return false, 0, err
	}
	if wait := blockedUntil.Sub(l.now()); wait > 0 {
		return false, wait, nil
	}
	return true, 0, nil
}

// Success clears the failure count and any block for k.
func (l *PG) Success(ctx context.Context, k Key) error {
	const q = `
INSERT INTO signin_attempts (email, ip_hash, fail_count, blocked_until, updated_at)
VALUES ($1,$2,0,'epoch',now())
ON CONFLICT (email, ip_hash)
DO UPDATE SET fail_count=0, blocked_until='epoch', updated_at=now()`
	_, err := l.q.Exec(ctx, q, k.Email, k.IPHash)
	return err
}

// Failure counts a failed attempt and, at the threshold, blocks k for Policy.BlockFor.
func (l *PG) Failure(ctx context.Context, k Key) (bool, time.Duration, error) {
	const q = `
INSERT INTO signin_attempts (email, ip_hash, fail_count, blocked_until, updated_at)
VALUES ($1,$2,1,'epoch',now())
ON CONFLICT (email, ip_hash) DO UPDATE
SET
  fail_count = CASE WHEN now() - signin_attempts.updated_at > $3::interval
                    THEN 1 ELSE signin_attempts.fail_count + 1 END,
  updated_at = now()
RETURNING fail_count`
	var fails int
	if err := l.q.QueryRow(ctx, q, k.Email, k.IPHash, l.policy.Window).Scan(&fails); err != nil {
		return false, 0, err
	}
	if fails < l.policy.MaxFails {
		return false, 0, nil
	}
	const block = `UPDATE signin_attempts SET blocked_until=$3 WHERE email=$1 AND ip_hash=$2`
	if _, err := l.q.Exec(ctx, block, k.Email, k.IPHash, l.now().Add(l.policy.BlockFor)); err != nil {
		return false, 0, err
	}
	return true, l.policy.BlockFor, nil
}
