package postgres

import (
	"context"

	"github.com/camadaviva/snaps/internal/errs"
	"github.com/camadaviva/snaps/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// CommentRepo implements CommentRepository using PostgreSQL.
type CommentRepo struct{ db *DB }

// NewCommentRepo constructs a comment repository.
func NewCommentRepo(db *DB) *CommentRepo { return &CommentRepo{db: db} }

// ListComments returns comments on a snap, oldest first.
func (r *CommentRepo) ListComments(ctx context.Context, snapID uuid.UUID) ([]model.Comment, error) {
	const q = `
SELECT id, snap_id, user_id, content, created_at
FROM comments WHERE snap_id=$1
ORDER BY created_at ASC`
	rows, err := r.db.Pool.Query(ctx, q, snapID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.SnapID, &c.UserID, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AddComment inserts c (ID must be set) and fills in CreatedAt.
func (r *CommentRepo) AddComment(ctx context.Context, c *model.Comment) error {
	const ins = `
INSERT INTO comments (id, snap_id, user_id, content) VALUES ($1,$2,$3,$4)
RETURNING created_at`
	const inc = `UPDATE snaps SET comment_count = comment_count + 1 WHERE id=$1`
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, ins, c.ID, c.SnapID, c.UserID, c.Content).Scan(&c.CreatedAt); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, inc, c.SnapID)
		return err
	})
	if isForeignKeyViolation(err) {
		return errs.ErrNotFound
	}
	return err
}
