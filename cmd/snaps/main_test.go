package main

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/camadaviva/snaps/internal/client/gateway"
	"github.com/camadaviva/snaps/internal/client/views"
	"github.com/camadaviva/snaps/internal/errs"
	"github.com/camadaviva/snaps/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubGateway implements the calls these commands make; anything else panics
// through the nil embedded interface.
type stubGateway struct {
	gateway.Gateway

	mu      sync.Mutex
	bus     gateway.AuthBus
	viewer  *model.Viewer
	snaps   []model.Snap
	deleted []uuid.UUID
	casts   int
}

func (s *stubGateway) Viewer() (model.Viewer, bool) {
	if s.viewer == nil {
		return model.Viewer{}, false
	}
	return *s.viewer, true
}

func (s *stubGateway) OnAuthStateChange(fn func(gateway.AuthEvent)) func() { return s.bus.Subscribe(fn) }

func (s *stubGateway) SignIn(_ context.Context, email, _ string) (model.Viewer, error) {
	v := model.Viewer{ID: uuid.Must(uuid.NewV4()), Email: email}
	s.viewer = &v
	return v, nil
}

func (s *stubGateway) ListSnaps(context.Context, model.SnapFilter) ([]model.Snap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Snap(nil), s.snaps...), nil
}

func (s *stubGateway) SearchSnaps(_ context.Context, term string) ([]model.Snap, error) {
	out := []model.Snap{}
	for _, sn := range s.snaps {
		if term == "" || sn.Title == term {
			out = append(out, sn)
		}
	}
	return out, nil
}

func (s *stubGateway) DeleteSnaps(_ context.Context, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, ids...)
	return nil
}

func (s *stubGateway) GetSnap(_ context.Context, id uuid.UUID) (*model.Snap, error) {
	for _, sn := range s.snaps {
		if sn.ID == id {
			return &sn, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (s *stubGateway) ListComments(context.Context, uuid.UUID) ([]model.Comment, error) {
	return nil, nil
}

func (s *stubGateway) CastVote(context.Context, uuid.UUID, model.Vote) (int, error) {
	s.casts++
	return 1, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func execute(t *testing.T, gw *stubGateway, args ...string) (string, string, error) {
	t.Helper()
	connect := func(*GlobalOptions, *zap.Logger) (gateway.Gateway, io.Closer, error) {
		return gw, closerFunc(func() error { return nil }), nil
	}
	cmd := newRootCommand("test", connect)
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func snap(owner uuid.UUID, title string) model.Snap {
	return model.Snap{ID: uuid.Must(uuid.NewV4()), UserID: owner, SnapFields: model.SnapFields{Title: title, IsPublic: true, Tags: []string{}}}
}

func TestSignInCommand(t *testing.T) {
	gw := &stubGateway{}
	out, _, err := execute(t, gw, "signin", "-e", "ana@example.com", "-p", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, `"email": "ana@example.com"`)
	assert.Contains(t, out, `"user_id"`)

	_, _, err = execute(t, &stubGateway{}, "signin", "-e", "ana@example.com")
	require.Error(t, err)
}

func TestFeedCommand_YAML(t *testing.T) {
	me := uuid.Must(uuid.NewV4())
	gw := &stubGateway{viewer: &model.Viewer{ID: me}, snaps: []model.Snap{snap(me, "samba"), snap(me, "frevo")}}

	out, _, err := execute(t, gw, "feed", "samba", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "title: samba")
	assert.NotContains(t, out, "frevo")

	_, _, err = execute(t, &stubGateway{}, "feed")
	require.ErrorIs(t, err, errs.ErrAuthRequired)
}

func TestGalleryDeleteCommand(t *testing.T) {
	me := uuid.Must(uuid.NewV4())
	a, b, c := snap(me, "a"), snap(me, "b"), snap(me, "c")
	gw := &stubGateway{viewer: &model.Viewer{ID: me}, snaps: []model.Snap{a, b, c}}

	out, errOut, err := execute(t, gw, "gallery", "delete", c.ID.String(), a.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a.ID, c.ID}, gw.deleted)
	assert.Contains(t, errOut, "deleted 2 snaps")
	assert.Contains(t, out, b.ID.String())
	assert.NotContains(t, out, a.ID.String())

	_, _, err = execute(t, gw, "gallery", "delete", uuid.Must(uuid.NewV4()).String())
	require.ErrorIs(t, err, errs.ErrNotFound)
	assert.Len(t, gw.deleted, 2)
}

func TestSnapVoteCommand_Anonymous(t *testing.T) {
	s := snap(uuid.Must(uuid.NewV4()), "x")
	gw := &stubGateway{snaps: []model.Snap{s}}

	_, errOut, err := execute(t, gw, "snap", "vote", s.ID.String(), "up")
	require.ErrorIs(t, err, errs.ErrAuthRequired)
	assert.Zero(t, gw.casts)
	assert.Contains(t, errOut, "vote: sign in to continue")
}

func TestSnapVoteCommand(t *testing.T) {
	me := uuid.Must(uuid.NewV4())
	s := snap(uuid.Must(uuid.NewV4()), "x")
	gw := &stubGateway{viewer: &model.Viewer{ID: me}, snaps: []model.Snap{s}}
	gw.Gateway = voteReads{}

	out, _, err := execute(t, gw, "snap", "vote", s.ID.String(), "up")
	require.NoError(t, err)
	assert.Contains(t, out, `"vote": "up"`)
	assert.Contains(t, out, `"score": 1`)
	assert.Equal(t, 1, gw.casts)
}

// voteReads answers the viewer-state reads of the snap page.
type voteReads struct{ gateway.Gateway }

func (voteReads) GetVote(context.Context, uuid.UUID) (model.Vote, error) { return model.VoteNone, nil }
func (voteReads) IsSaved(context.Context, uuid.UUID) (bool, error) { return false, nil }

func TestOutputFlagValidated(t *testing.T) {
	called := false
	cmd := newRootCommand("test", func(*GlobalOptions, *zap.Logger) (gateway.Gateway, io.Closer, error) {
		called = true
		return nil, nil, nil
	})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"whoami", "-o", "xml"})
	require.ErrorIs(t, cmd.Execute(), errs.ErrInvalid)
	assert.False(t, called)
}

func TestEmit(t *testing.T) {
	v := voteOut{SnapID: "s1", Vote: "down", Score: -1}

	var j bytes.Buffer
	require.NoError(t, emit(&j, "json", v))
	assert.Contains(t, j.String(), `"snap_id": "s1"`)

	var y bytes.Buffer
	require.NoError(t, emit(&y, "yaml", v))
	assert.Equal(t, "snap_id: s1\nvote: down\nscore: -1\n", y.String())
}

func TestParseVote(t *testing.T) {
	v, err := parseVote("UP")
	require.NoError(t, err)
	assert.Equal(t, model.VoteUp, v)
	v, err = parseVote("-")
	require.NoError(t, err)
	assert.Equal(t, model.VoteDown, v)
	_, err = parseVote("sideways")
	require.ErrorIs(t, err, errs.ErrInvalid)
}

func TestMergeDraft_OnlyChangedFlags(t *testing.T) {
	cmd := newSnapEditCommand(&app{opts: &GlobalOptions{}})
	require.NoError(t, cmd.Flags().Parse([]string{"--title", "novo", "--public"}))

	cur := views.Draft{Title: "velho", Mood: "calmo", Tags: "a, b"}
	got := mergeDraft(cur, views.Draft{Title: "novo", IsPublic: true}, cmd)
	assert.Equal(t, "novo", got.Title)
	assert.Equal(t, "calmo", got.Mood)
	assert.Equal(t, "a, b", got.Tags)
	assert.True(t, got.IsPublic)
}
