package postgres

import (
	"context"

	"github.com/camadaviva/snaps/internal/errs"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// SaveRepo implements SaveRepository using PostgreSQL.
type SaveRepo struct{ db *DB }

// NewSaveRepo constructs a save-set repository.
func NewSaveRepo(db *DB) *SaveRepo { return &SaveRepo{db: db} }

// IsSaved reports membership of snapID in the user's save set.
func (r *SaveRepo) IsSaved(ctx context.Context, userID, snapID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM saved_snaps WHERE user_id=$1 AND snap_id=$2)`
	var ok bool
	err := r.db.Pool.QueryRow(ctx, q, userID, snapID).Scan(&ok)
	return ok, err
}

// Save adds the snap to the save set; saving twice is a no-op.
func (r *SaveRepo) Save(ctx context.Context, userID, snapID uuid.UUID) error {
	const ins = `INSERT INTO saved_snaps (user_id, snap_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`
	const inc = `UPDATE snaps SET save_count = save_count + 1 WHERE id=$1`
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, ins, userID, snapID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		_, err = tx.Exec(ctx, inc, snapID)
		return err
	})
	if isForeignKeyViolation(err) {
		return errs.ErrNotFound
	}
	return err
}

// Unsave removes the snap from the save set; unsaving twice is a no-op.
func (r *SaveRepo) Unsave(ctx context.Context, userID, snapID uuid.UUID) error {
	const del = `DELETE FROM saved_snaps WHERE user_id=$1 AND snap_id=$2`
	const dec = `UPDATE snaps SET save_count = GREATEST(save_count - 1, 0) WHERE id=$1`
	return r.db.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, del, userID, snapID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		_, err = tx.Exec(ctx, dec, snapID)
		return err
	})
}
