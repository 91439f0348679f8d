package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/camadaviva/snaps/internal/errs"
	"github.com/camadaviva/snaps/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

const snapColumns = `id, user_id, created_at, forked_from, title, context, mood, territory, community, ` +
	`timeframe, origin, category, source_url, status, tags, media_url, is_public, ` +
	`score, comment_count, save_count, fork_count`

// searchLimit caps a single Camada Viva result page.
const searchLimit = 200

// SnapRepo implements SnapRepository using PostgreSQL.
type SnapRepo struct{ db *DB }

// NewSnapRepo constructs a snap repository.
func NewSnapRepo(db *DB) *SnapRepo { return &SnapRepo{db: db} }

// Insert stores a new snap owned by userID.
func (r *SnapRepo) Insert(ctx context.Context, userID uuid.UUID, f model.SnapFields) (*model.Snap, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	if f.Tags == nil {
		f.Tags = []string{}
	}
	const q = `
INSERT INTO snaps (id, user_id, title, context, mood, territory, community, timeframe,
                   origin, category, source_url, status, tags, media_url, is_public)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
RETURNING created_at`
	s := &model.Snap{ID: id, UserID: userID, SnapFields: f}
	err = r.db.Pool.QueryRow(ctx, q, id, userID,
		f.Title, f.Context, f.Mood, f.Territory, f.Community, f.Timeframe,
		f.Origin, f.Category, f.SourceURL, f.Status, f.Tags, f.MediaURL, f.IsPublic,
	).Scan(&s.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// Get returns a single snap by ID.
func (r *SnapRepo) Get(ctx context.Context, id uuid.UUID) (*model.Snap, error) {
	q := `SELECT ` + snapColumns + ` FROM snaps WHERE id=$1`
	s, err := scanSnap(r.db.Pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	return s, err
}

// Update replaces editable fields of a snap owned by userID.
func (r *SnapRepo) Update(ctx context.Context, userID, id uuid.UUID, f model.SnapFields) error {
	if f.Tags == nil {
		f.Tags = []string{}
	}
	const q = `
UPDATE snaps
SET title=$3, context=$4, mood=$5, territory=$6, community=$7, timeframe=$8,
    origin=$9, category=$10, source_url=$11, status=$12, tags=$13, media_url=$14, is_public=$15
WHERE id=$1 AND user_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, id, userID,
		f.Title, f.Context, f.Mood, f.Territory, f.Community, f.Timeframe,
		f.Origin, f.Category, f.SourceURL, f.Status, f.Tags, f.MediaURL, f.IsPublic,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// DeleteBatch removes the listed snaps in one transaction. If any of them is
// missing or owned by someone else nothing is deleted and ErrNotFound is returned.
func (r *SnapRepo) DeleteBatch(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	uniq := uniqueStrings(ids)
	if len(uniq) == 0 {
		return nil
	}
	const q = `DELETE FROM snaps WHERE user_id=$1 AND id = ANY($2::uuid[])`
	return r.db.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, q, userID, uniq)
		if err != nil {
			return err
		}
		if n := tag.RowsAffected(); n != int64(len(uniq)) {
			return fmt.Errorf("deleted %d of %d: %w", n, len(uniq), errs.ErrNotFound)
		}
		return nil
	})
}

// List returns snaps matching the filter, newest first.
func (r *SnapRepo) List(ctx context.Context, f model.SnapFilter) ([]model.Snap, error) {
	var (
		from  = "snaps s"
		conds []string
		args  []any
	)
	if f.SavedBy != uuid.Nil {
		args = append(args, f.SavedBy)
		from += fmt.Sprintf(" JOIN saved_snaps ss ON ss.snap_id = s.id AND ss.user_id = $%d", len(args))
	}
	if f.OwnerID != uuid.Nil {
		args = append(args, f.OwnerID)
		conds = append(conds, fmt.Sprintf("s.user_id = $%d", len(args)))
	}
	if f.PublicOnly {
		conds = append(conds, "s.is_public")
	}
	if f.VisibleTo != uuid.Nil {
		args = append(args, f.VisibleTo)
		conds = append(conds, fmt.Sprintf("(s.is_public OR s.user_id = $%d)", len(args)))
	}

	q := `SELECT ` + prefixed("s.", snapColumns) + ` FROM ` + from
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY s.created_at DESC`

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectSnaps(rows)
}

// Search runs full-text search over public snaps. An empty term lists all public snaps.
func (r *SnapRepo) Search(ctx context.Context, term string) ([]model.Snap, error) {
	q := `SELECT ` + snapColumns + ` FROM snaps
WHERE is_public AND ($1 = '' OR search_vec @@ websearch_to_tsquery('portuguese', $1))
ORDER BY created_at DESC
LIMIT ` + fmt.Sprint(searchLimit)
	rows, err := r.db.Pool.Query(ctx, q, strings.TrimSpace(term))
	if err != nil {
		return nil, err
	}
	return collectSnaps(rows)
}

// Fork copies a snap visible to userID into a new private snap owned by userID.
func (r *SnapRepo) Fork(ctx context.Context, snapID, userID uuid.UUID) (uuid.UUID, error) {
	newID, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}
	const ins = `
INSERT INTO snaps (id, user_id, forked_from, title, context, mood, territory, community, timeframe,
                   origin, category, source_url, status, tags, media_url, is_public)
SELECT $1, $2, id, title, context, mood, territory, community, timeframe,
       origin, category, source_url, status, tags, media_url, false
FROM snaps WHERE id=$3 AND (is_public OR user_id=$2)`
	const bump = `UPDATE snaps SET fork_count = fork_count + 1 WHERE id=$1`

	err = r.db.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, ins, newID, userID, snapID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errs.ErrNotFound
		}
		_, err = tx.Exec(ctx, bump, snapID)
		return err
	})
	if err != nil {
		return uuid.Nil, err
	}
	return newID, nil
}

func scanSnap(row rowScanner) (*model.Snap, error) {
	var s model.Snap
	err := row.Scan(
		&s.ID, &s.UserID, &s.CreatedAt, &s.ForkedFrom,
		&s.Title, &s.Context, &s.Mood, &s.Territory, &s.Community, &s.Timeframe,
		&s.Origin, &s.Category, &s.SourceURL, &s.Status, &s.Tags, &s.MediaURL, &s.IsPublic,
		&s.Score, &s.CommentCount, &s.SaveCount, &s.ForkCount,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func collectSnaps(rows pgx.Rows) ([]model.Snap, error) {
	defer rows.Close()
	out := []model.Snap{}
	for rows.Next() {
		s, err := scanSnap(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func prefixed(prefix, cols string) string {
	parts := strings.Split(cols, ", ")
	for i := range parts {
		parts[i] = prefix + strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, ", ")
}

func uniqueStrings(ids []uuid.UUID) []string {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id.String())
	}
	return out
}
