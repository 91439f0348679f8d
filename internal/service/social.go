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

// MaxCommentLen bounds a comment, in runes.
const MaxCommentLen = 2000

// SocialService covers votes, saves and comments.
type SocialService interface {
	GetVote(ctx context.Context, viewer, snapID uuid.UUID) (model.Vote, error)
	// CastVote upserts the viewer's vote and returns the new score.
	CastVote(ctx context.Context, viewer, snapID uuid.UUID, v model.Vote) (int, error)
	ClearVote(ctx context.Context, viewer, snapID uuid.UUID) (int, error)

	IsSaved(ctx context.Context, viewer, snapID uuid.UUID) (bool, error)
	Save(ctx context.Context, viewer, snapID uuid.UUID) error
	Unsave(ctx context.Context, viewer, snapID uuid.UUID) error

	ListComments(ctx context.Context, snapID uuid.UUID) ([]model.Comment, error)
	AddComment(ctx context.Context, viewer, snapID uuid.UUID, content string) (*model.Comment, error)
}

// SnapReader returns a snap as viewer sees it. Snaps the viewer may not see
// are reported as errs.ErrNotFound.
type SnapReader interface {
	Get(ctx context.Context, viewer, id uuid.UUID) (*model.Snap, error)
}

type SocialServiceImpl struct {
	snaps    SnapReader
	votes    repository.VoteRepository
	saves    repository.SaveRepository
	comments repository.CommentRepository
}

// NewSocialService constructs SocialService. Votes, saves and comments are
// only accepted on snaps that snaps lets the viewer see.
func NewSocialService(snaps SnapReader, votes repository.VoteRepository, saves repository.SaveRepository, comments repository.CommentRepository) *SocialServiceImpl {
	return &SocialServiceImpl{snaps: snaps, votes: votes, saves: saves, comments: comments}
}

func (s *SocialServiceImpl) visible(ctx context.Context, viewer, snapID uuid.UUID) error {
	_, err := s.snaps.Get(ctx, viewer, snapID)
	return err
}

func (s *SocialServiceImpl) GetVote(ctx context.Context, viewer, snapID uuid.UUID) (model.Vote, error) {
	if viewer == uuid.Nil {
		return model.VoteNone, errs.ErrUnauthorized
	}
	return s.votes.GetVote(ctx, viewer, snapID)
}

func (s *SocialServiceImpl) CastVote(ctx context.Context, viewer, snapID uuid.UUID, v model.Vote) (int, error) {
	if viewer == uuid.Nil {
		return 0, errs.ErrUnauthorized
	}
	if v != model.VoteUp && v != model.VoteDown {
		return 0, fmt.Errorf("vote %d: %w", v, errs.ErrInvalid)
	}
	if err := s.visible(ctx, viewer, snapID); err != nil {
		return 0, err
	}
	return s.votes.SetVote(ctx, viewer, snapID, v)
}

func (s *SocialServiceImpl) ClearVote(ctx context.Context, viewer, snapID uuid.UUID) (int, error) {
	if viewer == uuid.Nil {
		return 0, errs.ErrUnauthorized
	}
	return s.votes.ClearVote(ctx, viewer, snapID)
}

func (s *SocialServiceImpl) IsSaved(ctx context.Context, viewer, snapID uuid.UUID) (bool, error) {
	if viewer == uuid.Nil {
		return false, errs.ErrUnauthorized
	}
	return s.saves.IsSaved(ctx, viewer, snapID)
}

func (s *SocialServiceImpl) Save(ctx context.Context, viewer, snapID uuid.UUID) error {
	if viewer == uuid.Nil {
		return errs.ErrUnauthorized
	}
	if err := s.visible(ctx, viewer, snapID); err != nil {
		return err
	}
	return s.saves.Save(ctx, viewer, snapID)
}

func (s *SocialServiceImpl) Unsave(ctx context.Context, viewer, snapID uuid.UUID) error {
	if viewer == uuid.Nil {
		return errs.ErrUnauthorized
	}
	return s.saves.Unsave(ctx, viewer, snapID)
}

func (s *SocialServiceImpl) ListComments(ctx context.Context, snapID uuid.UUID) ([]model.Comment, error) {
	return s.comments.ListComments(ctx, snapID)
}

// AddComment stores a trimmed, non-blank comment by viewer.
func (s *SocialServiceImpl) AddComment(ctx context.Context, viewer, snapID uuid.UUID, content string) (*model.Comment, error) {
	if viewer == uuid.Nil {
		return nil, errs.ErrUnauthorized
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty comment: %w", errs.ErrInvalid)
	}
	if utf8.RuneCountInString(content) > MaxCommentLen {
		return nil, fmt.Errorf("comment longer than %d: %w", MaxCommentLen, errs.ErrInvalid)
	}
	if err := s.visible(ctx, viewer, snapID); err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	c := &model.Comment{ID: id, SnapID: snapID, UserID: viewer, Content: content}
	if err := s.comments.AddComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
