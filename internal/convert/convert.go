// Package convert maps domain models to wire messages and back.
package convert

import (
	"fmt"

	"github.com/camadaviva/snaps/internal/api"
	"github.com/camadaviva/snaps/internal/errs"
	"github.com/camadaviva/snaps/internal/model"
	u "github.com/gofrs/uuid/v5"
)

// ParseID parses a wire ID. Malformed IDs are ErrInvalid.
func ParseID(s string) (u.UUID, error) {
	id, err := u.FromString(s)
	if err != nil {
		return u.Nil, fmt.Errorf("id %q: %w", s, errs.ErrInvalid)
	}
	return id, nil
}

// ParseOptionalID treats an empty string as uuid.Nil.
func ParseOptionalID(s string) (u.UUID, error) {
	if s == "" {
		return u.Nil, nil
	}
	return ParseID(s)
}

// ParseIDs parses a list of wire IDs, reporting the first bad index.
func ParseIDs(in []string) ([]u.UUID, error) {
	out := make([]u.UUID, 0, len(in))
	for i, s := range in {
		id, err := ParseID(s)
		if err != nil {
			return nil, fmt.Errorf("ids[%d]: %w", i, err)
		}
		out = append(out, id)
	}
	return out, nil
}

// IDStrings is the inverse of ParseIDs.
func IDStrings(in []u.UUID) []string {
	out := make([]string, len(in))
	for i, id := range in {
		out[i] = id.String()
	}
	return out
}

// --- profiles ---

func ToAPIProfile(p model.Profile) *api.Profile {
	return &api.Profile{
		ID:         p.ID.String(),
		Username:   p.Username,
		Bio:        p.Bio,
		AvatarURL:  p.AvatarURL,
		WebsiteURL: p.WebsiteURL,
	}
}

func FromAPIProfile(p *api.Profile) (model.Profile, error) {
	id, err := ParseOptionalID(p.ID)
	if err != nil {
		return model.Profile{}, err
	}
	return model.Profile{
		ID:         id,
		Username:   p.Username,
		Bio:        p.Bio,
		AvatarURL:  p.AvatarURL,
		WebsiteURL: p.WebsiteURL,
	}, nil
}

// --- snaps ---

func ToAPIFields(f model.SnapFields) api.SnapFields {
	tags := f.Tags
	if tags == nil {
		tags = []string{}
	}
	return api.SnapFields{
		Title:     f.Title,
		Context:   f.Context,
		Mood:      f.Mood,
		Territory: f.Territory,
		Community: f.Community,
		Timeframe: f.Timeframe,
		Origin:    f.Origin,
		Category:  f.Category,
		SourceURL: f.SourceURL,
		Status:    f.Status,
		Tags:      tags,
		MediaURL:  f.MediaURL,
		IsPublic:  f.IsPublic,
	}
}

func FromAPIFields(f api.SnapFields) model.SnapFields {
	return model.SnapFields{
		Title:     f.Title,
		Context:   f.Context,
		Mood:      f.Mood,
		Territory: f.Territory,
		Community: f.Community,
		Timeframe: f.Timeframe,
		Origin:    f.Origin,
		Category:  f.Category,
		SourceURL: f.SourceURL,
		Status:    f.Status,
		Tags:      append([]string(nil), f.Tags...),
		MediaURL:  f.MediaURL,
		IsPublic:  f.IsPublic,
	}
}

func ToAPISnap(s model.Snap) api.Snap {
	out := api.Snap{
		ID:           s.ID.String(),
		UserID:       s.UserID.String(),
		CreatedAt:    s.CreatedAt,
		SnapFields:   ToAPIFields(s.SnapFields),
		Score:        s.Score,
		CommentCount: s.CommentCount,
		SaveCount:    s.SaveCount,
		ForkCount:    s.ForkCount,
	}
	if s.ForkedFrom.Valid {
		out.ForkedFrom = s.ForkedFrom.UUID.String()
	}
	return out
}

func FromAPISnap(s api.Snap) (model.Snap, error) {
	id, err := ParseID(s.ID)
	if err != nil {
		return model.Snap{}, err
	}
	owner, err := ParseID(s.UserID)
	if err != nil {
		return model.Snap{}, err
	}
	forked, err := ParseOptionalID(s.ForkedFrom)
	if err != nil {
		return model.Snap{}, err
	}
	return model.Snap{
		ID:           id,
		UserID:       owner,
		CreatedAt:    s.CreatedAt,
		ForkedFrom:   u.NullUUID{UUID: forked, Valid: forked != u.Nil},
		SnapFields:   FromAPIFields(s.SnapFields),
		Score:        s.Score,
		CommentCount: s.CommentCount,
		SaveCount:    s.SaveCount,
		ForkCount:    s.ForkCount,
	}, nil
}

func ToAPISnapList(in []model.Snap) *api.SnapList {
	out := &api.SnapList{Snaps: make([]api.Snap, 0, len(in))}
	for _, s := range in {
		out.Snaps = append(out.Snaps, ToAPISnap(s))
	}
	return out
}

func FromAPISnapList(in *api.SnapList) ([]model.Snap, error) {
	out := make([]model.Snap, 0, len(in.Snaps))
	for i, s := range in.Snaps {
		m, err := FromAPISnap(s)
		if err != nil {
			return nil, fmt.Errorf("snaps[%d]: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// --- comments ---

func ToAPIComment(c model.Comment) api.Comment {
	return api.Comment{
		ID:        c.ID.String(),
		SnapID:    c.SnapID.String(),
		UserID:    c.UserID.String(),
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

func FromAPIComment(c api.Comment) (model.Comment, error) {
	id, err := ParseID(c.ID)
	if err != nil {
		return model.Comment{}, err
	}
	snap, err := ParseID(c.SnapID)
	if err != nil {
		return model.Comment{}, err
	}
	user, err := ParseID(c.UserID)
	if err != nil {
		return model.Comment{}, err
	}
	return model.Comment{ID: id, SnapID: snap, UserID: user, Content: c.Content, CreatedAt: c.CreatedAt}, nil
}

func ToAPICommentList(in []model.Comment) *api.CommentList {
	out := &api.CommentList{Comments: make([]api.Comment, 0, len(in))}
	for _, c := range in {
		out.Comments = append(out.Comments, ToAPIComment(c))
	}
	return out
}

func FromAPICommentList(in *api.CommentList) ([]model.Comment, error) {
	out := make([]model.Comment, 0, len(in.Comments))
	for i, c := range in.Comments {
		m, err := FromAPIComment(c)
		if err != nil {
			return nil, fmt.Errorf("comments[%d]: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// --- votes ---

// FromAPIVote validates a wire vote.
func FromAPIVote(v int8) (model.Vote, error) {
	mv := model.Vote(v)
	if !mv.Valid() {
		return model.VoteNone, fmt.Errorf("vote %d: %w", v, errs.ErrInvalid)
	}
	return mv, nil
}

// --- listing filter ---

// ToAPIFilter converts a listing filter for the wire.
func ToAPIFilter(f model.SnapFilter) *api.ListSnapsRequest {
	r := &api.ListSnapsRequest{PublicOnly: f.PublicOnly}
	if f.OwnerID != u.Nil {
		r.OwnerID = f.OwnerID.String()
	}
	if f.SavedBy != u.Nil {
		r.SavedBy = f.SavedBy.String()
	}
	return r
}

// FromAPIFilter parses a wire listing filter. Malformed ids are errs.ErrInvalid.
func FromAPIFilter(r *api.ListSnapsRequest) (model.SnapFilter, error) {
	owner, err := ParseOptionalID(r.OwnerID)
	if err != nil {
		return model.SnapFilter{}, err
	}
	saver, err := ParseOptionalID(r.SavedBy)
	if err != nil {
		return model.SnapFilter{}, err
	}
	return model.SnapFilter{OwnerID: owner, SavedBy: saver, PublicOnly: r.PublicOnly}, nil
}
