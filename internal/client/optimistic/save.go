package optimistic

import (
	"context"
	"sync/atomic"

	"github.com/camadaviva/snaps/internal/model"
	"github.com/gofrs/uuid/v5"
)

// SaveRemote is the part of the gateway a Saver writes to.
type SaveRemote interface {
	SaveSnap(ctx context.Context, snapID uuid.UUID) error
	UnsaveSnap(ctx context.Context, snapID uuid.UUID) error
}

// Saver is the save widget of one snap.
type Saver struct {
	ctl    *Controller
	remote SaveRemote
	snapID uuid.UUID
	saved  atomic.Bool
}

// NewSaver builds the save toggle of one snap, starting from saved.
func NewSaver(ctl *Controller, remote SaveRemote, snapID uuid.UUID, saved bool) *Saver {
	s := &Saver{ctl: ctl, remote: remote, snapID: snapID}
	s.saved.Store(saved)
	return s
}

// Saved reports the current, possibly optimistic, saved flag.
func (s *Saver) Saved() bool { return s.saved.Load() }

// Toggle flips the saved flag and issues the matching save or unsave.
func (s *Saver) Toggle(ctx context.Context) error {
	return s.ctl.Run(ctx, "save", func(model.Viewer) Mutation {
		was := s.saved.Load()
		return Mutation{
			Apply:      func() { s.saved.Store(!was) },
			Compensate: func() { s.saved.Store(was) },
			Remote: func(ctx context.Context) error {
				if was {
					return s.remote.UnsaveSnap(ctx, s.snapID)
				}
				return s.remote.SaveSnap(ctx, s.snapID)
			},
		}
	})
}
