package repository

import (
	"context"

	"github.com/camadaviva/snaps/internal/model"
	"github.com/gofrs/uuid/v5"
)

// SnapRepository stores snaps and runs the server-side snap procedures (search, fork).
type SnapRepository interface {
	// Insert stores a new snap owned by userID and returns it with server defaults filled in.
	Insert(ctx context.Context, userID uuid.UUID, f model.SnapFields) (*model.Snap, error)
	// Get returns a single snap by ID.
	Get(ctx context.Context, id uuid.UUID) (*model.Snap, error)
	// Update replaces editable fields of a snap owned by userID.
	Update(ctx context.Context, userID, id uuid.UUID, f model.SnapFields) error
	// DeleteBatch removes every listed snap owned by userID, or none of them.
	DeleteBatch(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error
	// List returns snaps matching the filter, newest first.
	List(ctx context.Context, f model.SnapFilter) ([]model.Snap, error)
	// Search runs full-text search over public snaps, newest first. Empty term matches all.
	Search(ctx context.Context, term string) ([]model.Snap, error)
	// Fork duplicates a snap for userID and returns the new snap ID.
	Fork(ctx context.Context, snapID, userID uuid.UUID) (uuid.UUID, error)
}

// VoteRepository stores one vote per (user, snap) and keeps snaps.score consistent.
type VoteRepository interface {
	GetVote(ctx context.Context, userID, snapID uuid.UUID) (model.Vote, error)
	// SetVote upserts the vote and adjusts the snap score by the difference; returns the new score.
	SetVote(ctx context.Context, userID, snapID uuid.UUID, v model.Vote) (int, error)
	// ClearVote removes the vote and adjusts the score; returns the new score.
	ClearVote(ctx context.Context, userID, snapID uuid.UUID) (int, error)
}

// SaveRepository stores the per-user save set.
type SaveRepository interface {
	IsSaved(ctx context.Context, userID, snapID uuid.UUID) (bool, error)
	// Save is idempotent.
	Save(ctx context.Context, userID, snapID uuid.UUID) error
	// Unsave is idempotent.
	Unsave(ctx context.Context, userID, snapID uuid.UUID) error
}

// CommentRepository stores comments on snaps.
type CommentRepository interface {
	ListComments(ctx context.Context, snapID uuid.UUID) ([]model.Comment, error)
	AddComment(ctx context.Context, c *model.Comment) error
}
