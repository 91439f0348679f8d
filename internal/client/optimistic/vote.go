package optimistic

import (
	"context"
	"sync"

	"github.com/camadaviva/snaps/internal/model"
	"github.com/gofrs/uuid/v5"
)

// NextVote applies a vote request to the viewer's previous vote. Requesting
// the vote already held clears it; anything else replaces it. delta is the
// change to the aggregate score.
func NextVote(prev, requested model.Vote) (next model.Vote, delta int) {
	if requested == prev {
		return model.VoteNone, -int(prev)
	}
	return requested, int(requested) - int(prev)
}

// VoteRemote is the part of the gateway a Voter writes to. Both calls return
// the snap's score after the change.
type VoteRemote interface {
	CastVote(ctx context.Context, snapID uuid.UUID, v model.Vote) (int, error)
	ClearVote(ctx context.Context, snapID uuid.UUID) (int, error)
}

// VoteState is a snapshot of a votable item.
type VoteState struct {
	SnapID uuid.UUID
	Score  int
	Vote   model.Vote
}

// Voter is the vote widget of one snap.
type Voter struct {
	ctl    *Controller
	remote VoteRemote

	mu    sync.RWMutex
	state VoteState
}

// NewVoter seeds a voter with the loaded score and the viewer's current vote.
func NewVoter(ctl *Controller, remote VoteRemote, snapID uuid.UUID, score int, vote model.Vote) *Voter {
	return &Voter{ctl: ctl, remote: remote, state: VoteState{SnapID: snapID, Score: score, Vote: vote}}
}

// State returns the current local state.
func (v *Voter) State() VoteState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

// Vote requests up or down. On success the score is replaced by the one the
// server reports.
func (v *Voter) Vote(ctx context.Context, requested model.Vote) error {
	return v.ctl.Run(ctx, "vote", func(model.Viewer) Mutation {
		prev := v.State()
		next, delta := NextVote(prev.Vote, requested)
		return Mutation{
			Apply: func() {
				v.set(VoteState{SnapID: prev.SnapID, Score: prev.Score + delta, Vote: next})
			},
			Compensate: func() { v.set(prev) },
			Remote: func(ctx context.Context) error {
				var (
					score int
					err   error
				)
				if next == model.VoteNone {
					score, err = v.remote.ClearVote(ctx, prev.SnapID)
				} else {
					score, err = v.remote.CastVote(ctx, prev.SnapID, next)
				}
				if err != nil {
					return err
				}
				v.mu.Lock()
				v.state.Score = score
				v.mu.Unlock()
				return nil
			},
		}
	})
}

func (v *Voter) set(s VoteState) {
	v.mu.Lock()
	v.state = s
	v.mu.Unlock()
}
