package views

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/camadaviva/snaps/internal/client/loader"
	"github.com/camadaviva/snaps/internal/client/notice"
	"github.com/camadaviva/snaps/internal/client/optimistic"
	"github.com/camadaviva/snaps/internal/errs"
	"github.com/camadaviva/snaps/internal/model"
	"github.com/gofrs/uuid/v5"
)

// Detail is everything the snap page shows.
type Detail struct {
	Snap     model.Snap
	Comments []model.Comment
	Vote     model.Vote
	Saved    bool
}

type viewerMarks struct {
	vote  model.Vote
	saved bool
}

// SnapDetail is the page of one snap: its fields, comments, vote and save
// widgets, and the owner's actions.
type SnapDetail struct {
	base
	load *loader.Loader[uuid.UUID, Detail]

	mu       sync.RWMutex
	comments []model.Comment
	voter    *optimistic.Voter
	saver    *optimistic.Saver
}

// NewSnapDetail returns an empty detail view; Open picks the snap.
func NewSnapDetail(d Deps) *SnapDetail {
	v := &SnapDetail{base: newBase("snap", d)}
	v.load = loader.New(v.fetch, v.deps.Log)
	v.load.OnChange(v.onLoad)
	return v
}

// fetch loads the snap and its comments and, for a signed-in viewer, their
// vote and save state, all concurrently.
func (v *SnapDetail) fetch(ctx context.Context, id uuid.UUID) (Detail, error) {
	gw := v.deps.Gateway
	getSnap := func(ctx context.Context) (*model.Snap, error) { return gw.GetSnap(ctx, id) }
	getComments := func(ctx context.Context) ([]model.Comment, error) { return gw.ListComments(ctx, id) }

	if _, ok := gw.Viewer(); !ok {
		s, cs, err := loader.Join2(ctx, getSnap, getComments)
		if err != nil {
			return Detail{}, err
		}
		return Detail{Snap: *s, Comments: cs}, nil
	}
	s, cs, marks, err := loader.Join3(ctx, getSnap, getComments, func(ctx context.Context) (viewerMarks, error) {
		vote, saved, err := loader.Join2(ctx,
			func(ctx context.Context) (model.Vote, error) { return gw.GetVote(ctx, id) },
			func(ctx context.Context) (bool, error) { return gw.IsSaved(ctx, id) },
		)
		return viewerMarks{vote: vote, saved: saved}, err
	})
	if err != nil {
		return Detail{}, err
	}
	return Detail{Snap: *s, Comments: cs, Vote: marks.vote, Saved: marks.saved}, nil
}

// onLoad seeds the widgets from a fresh load.
func (v *SnapDetail) onLoad(s loader.Snapshot[Detail]) {
	if s.State != loader.Ready {
		return
	}
	d := s.Data
	v.mu.Lock()
	defer v.mu.Unlock()
	v.comments = append([]model.Comment(nil), d.Comments...)
	v.voter = optimistic.NewVoter(v.controller(), v.deps.Gateway, d.Snap.ID, d.Snap.Score, d.Vote)
	v.saver = optimistic.NewSaver(v.controller(), v.deps.Gateway, d.Snap.ID, d.Saved)
}

// Open loads the snap. Anonymous viewers may open public snaps. A sign-out
// reloads the page without the viewer's vote and save state.
func (v *SnapDetail) Open(ctx context.Context, id uuid.UUID) {
	v.subscribe(func() { v.load.Refresh(context.Background()) })
	v.load.Load(ctx, id)
}

func (v *SnapDetail) Wait(ctx context.Context) (loader.Snapshot[Detail], error) {
	return v.load.Wait(ctx)
}

func (v *SnapDetail) State() loader.State { return v.load.Snapshot().State }

// Voter is nil until the snap is loaded.
func (v *SnapDetail) Voter() *optimistic.Voter {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.voter
}

// Saver is nil until the snap is loaded.
func (v *SnapDetail) Saver() *optimistic.Saver {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.saver
}

// Comments returns the loaded comments plus the ones added since, oldest first.
func (v *SnapDetail) Comments() []model.Comment {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]model.Comment(nil), v.comments...)
}

// IsOwner reports whether the signed-in viewer owns the loaded snap.
func (v *SnapDetail) IsOwner() bool {
	s := v.load.Snapshot()
	if s.State != loader.Ready {
		return false
	}
	viewer, ok := v.deps.Gateway.Viewer()
	return ok && viewer.ID == s.Data.Snap.UserID
}

func (v *SnapDetail) snapID() (uuid.UUID, error) {
	s := v.load.Snapshot()
	if s.State != loader.Ready {
		return uuid.Nil, fmt.Errorf("snap not loaded: %w", errs.ErrNotFound)
	}
	return s.Data.Snap.ID, nil
}

// Comment posts content and appends it to the local list.
func (v *SnapDetail) Comment(ctx context.Context, content string) (*model.Comment, error) {
	const action = "comment"
	if _, err := v.requireViewer(action); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%s: empty comment: %w", action, errs.ErrInvalid)
	}
	id, err := v.snapID()
	if err != nil {
		return nil, err
	}
	c, err := v.deps.Gateway.AddComment(ctx, id, content)
	if err != nil {
		return nil, v.fail(action, err)
	}
	v.mu.Lock()
	v.comments = append(v.comments, *c)
	v.mu.Unlock()
	return c, nil
}

// Remix forks the snap for the viewer and returns the new snap's id.
func (v *SnapDetail) Remix(ctx context.Context) (uuid.UUID, error) {
	const action = "remix"
	if _, err := v.requireViewer(action); err != nil {
		return uuid.Nil, err
	}
	id, err := v.snapID()
	if err != nil {
		return uuid.Nil, err
	}
	newID, err := v.deps.Gateway.ForkSnap(ctx, id)
	if err != nil {
		return uuid.Nil, v.fail(action, err)
	}
	v.deps.Notify.Notify(notice.Notice{Kind: notice.Info, Action: action, Message: "remixed into " + newID.String()})
	return newID, nil
}

// Delete removes the snap. Only its owner may do so.
func (v *SnapDetail) Delete(ctx context.Context) error {
	const action = "delete"
	if _, err := v.requireViewer(action); err != nil {
		return err
	}
	id, err := v.snapID()
	if err != nil {
		return err
	}
	if !v.IsOwner() {
		return fmt.Errorf("%s: %w", action, errs.ErrForbidden)
	}
	if err := v.deps.Gateway.DeleteSnaps(ctx, []uuid.UUID{id}); err != nil {
		return v.fail(action, err)
	}
	v.Close()
	return nil
}

func (v *SnapDetail) Close() {
	v.unsubscribe()
	v.load.Close()
}
