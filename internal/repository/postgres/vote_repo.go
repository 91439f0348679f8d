package postgres

import (
	"context"
	"errors"

	"github.com/camadaviva/snaps/internal/errs"
	"github.com/camadaviva/snaps/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// VoteRepo implements VoteRepository using PostgreSQL. snaps.score always equals
// the sum of vote_type over the snap's votes; every change adjusts it in the same transaction.
type VoteRepo struct{ db *DB }

// NewVoteRepo constructs a vote repository.
func NewVoteRepo(db *DB) *VoteRepo { return &VoteRepo{db: db} }

const (
	selVoteForUpdate = `SELECT vote_type FROM votes WHERE user_id=$1 AND snap_id=$2 FOR UPDATE`
	bumpScore        = `UPDATE snaps SET score = score + $2 WHERE id=$1 RETURNING score`
)

// GetVote returns the user's current vote on a snap, VoteNone if there is none.
func (r *VoteRepo) GetVote(ctx context.Context, userID, snapID uuid.UUID) (model.Vote, error) {
	const q = `SELECT vote_type FROM votes WHERE user_id=$1 AND snap_id=$2`
	var v int16
	if err := r.db.Pool.QueryRow(ctx, q, userID, snapID).Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.VoteNone, nil
		}
		return model.VoteNone, err
	}
	return model.Vote(v), nil
}

// SetVote upserts the vote on (user_id, snap_id) and moves the score by the signed difference.
func (r *VoteRepo) SetVote(ctx context.Context, userID, snapID uuid.UUID, v model.Vote) (score int, err error) {
	if v != model.VoteUp && v != model.VoteDown {
		return 0, errs.ErrInvalid
	}
	const upsert = `
INSERT INTO votes (user_id, snap_id, vote_type) VALUES ($1,$2,$3)
ON CONFLICT (user_id, snap_id) DO UPDATE SET vote_type=EXCLUDED.vote_type`

	err = r.db.inTx(ctx, func(tx pgx.Tx) error {
		prev, err := lockedVote(ctx, tx, userID, snapID)
		if err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, bumpScore, snapID, int(v)-int(prev)).Scan(&score); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errs.ErrNotFound
			}
			return err
		}
		_, err = tx.Exec(ctx, upsert, userID, snapID, int16(v))
		return err
	})
	return score, err
}

// ClearVote deletes the user's vote (if any) and takes its weight back out of the score.
func (r *VoteRepo) ClearVote(ctx context.Context, userID, snapID uuid.UUID) (score int, err error) {
	const del = `DELETE FROM votes WHERE user_id=$1 AND snap_id=$2`

	err = r.db.inTx(ctx, func(tx pgx.Tx) error {
		prev, err := lockedVote(ctx, tx, userID, snapID)
		if err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, bumpScore, snapID, -int(prev)).Scan(&score); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errs.ErrNotFound
			}
			return err
		}
		if prev == model.VoteNone {
			return nil
		}
		_, err = tx.Exec(ctx, del, userID, snapID)
		return err
	})
	return score, err
}

func lockedVote(ctx context.Context, tx pgx.Tx, userID, snapID uuid.UUID) (model.Vote, error) {
	var prev int16
	if err := tx.QueryRow(ctx, selVoteForUpdate, userID, snapID).Scan(&prev); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.VoteNone, nil
		}
		return model.VoteNone, err
	}
	return model.Vote(prev), nil
}
