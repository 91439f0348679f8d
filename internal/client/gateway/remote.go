package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/camadaviva/snaps/internal/api"
	"github.com/camadaviva/snaps/internal/convert"
	"github.com/camadaviva/snaps/internal/model"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Remote implements Gateway over the Snaps gRPC service.
type Remote struct {
	cl    *api.SnapsClient
	store Store
	bus   AuthBus
	log   *zap.Logger
	now   func() time.Time

	mu   sync.RWMutex
	sess *Session
}

var _ Gateway = (*Remote)(nil)

// RemoteOption customizes a Remote.
type RemoteOption func(*Remote)

// WithLogger sets the logger for session changes.
func WithLogger(l *zap.Logger) RemoteOption { return func(r *Remote) { r.log = l } }

// WithClock replaces time.Now when checking session expiry.
func WithClock(now func() time.Time) RemoteOption { return func(r *Remote) { r.now = now } }

// NewRemote wraps a connection and restores a stored session if it is still valid.
func NewRemote(cc grpc.ClientConnInterface, store Store, opts ...RemoteOption) (*Remote, error) {
	r := &Remote{cl: api.NewSnapsClient(cc), store: store, log: zap.NewNop(), now: time.Now}
	for _, o := range opts {
		o(r)
	}
	s, err := store.Load()
	switch {
	case errors.Is(err, ErrNoSession):
	case err != nil:
		return nil, err
	case s.Valid(r.now()):
		r.sess = &s
	}
	return r, nil
}

// --- session ---

func (r *Remote) Viewer() (model.Viewer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.sess == nil || !r.sess.Valid(r.now()) {
		return model.Viewer{}, false
	}
	return r.sess.Viewer(), true
}

func (r *Remote) OnAuthStateChange(fn func(AuthEvent)) func() { return r.bus.Subscribe(fn) }

func (r *Remote) SignUp(ctx context.Context, email, password string) (uuid.UUID, error) {
	resp, err := r.cl.SignUp(ctx, &api.SignUpRequest{Email: email, Password: password})
	if err != nil {
		return uuid.Nil, fromStatus(err)
	}
	return convert.ParseID(resp.UserID)
}

func (r *Remote) SignIn(ctx context.Context, email, password string) (model.Viewer, error) {
	resp, err := r.cl.SignIn(ctx, &api.SignInRequest{Email: email, Password: password})
	if err != nil {
		return model.Viewer{}, fromStatus(err)
	}
	id, err := convert.ParseID(resp.UserID)
	if err != nil {
		return model.Viewer{}, err
	}
	exp := resp.ExpiresAt
	if exp.IsZero() {
		exp = tokenExpiry(resp.AccessToken, r.now().Add(15*time.Minute))
	}
	s := Session{AccessToken: resp.AccessToken, ExpiresAt: exp, UserID: id, Email: resp.Email}
	if err := r.store.Save(s); err != nil {
		return model.Viewer{}, fmt.Errorf("save session: %w", err)
	}
	r.mu.Lock()
	r.sess = &s
	r.mu.Unlock()
	r.bus.Publish(AuthEvent{Kind: SignedIn, Viewer: s.Viewer()})
	return s.Viewer(), nil
}

// SignOut forgets the session locally; access tokens simply expire server-side.
func (r *Remote) SignOut(context.Context) error {
	r.dropSession()
	return r.store.Clear()
}

func (r *Remote) dropSession() {
	r.mu.Lock()
	had := r.sess != nil
	r.sess = nil
	r.mu.Unlock()
	if had {
		r.bus.Publish(AuthEvent{Kind: SignedOut})
	}
}

// authed attaches the bearer token, if any, to an outgoing call.
func (r *Remote) authed(ctx context.Context) context.Context {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.sess == nil {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+r.sess.AccessToken)
}

// fail maps a call error; a rejected token ends the session.
func (r *Remote) fail(op string, err error) error {
	if status.Code(err) == codes.Unauthenticated {
		r.mu.RLock()
		had := r.sess != nil
		r.mu.RUnlock()
		if had {
			r.log.Warn("session rejected by server", zap.String("op", op))
			r.dropSession()
			_ = r.store.Clear()
		}
	}
	return fmt.Errorf("%s: %w", op, fromStatus(err))
}

// --- profiles ---

func (r *Remote) GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	resp, err := r.cl.GetProfile(r.authed(ctx), &api.IDRequest{ID: id.String()})
	if err != nil {
		return nil, r.fail("get profile", err)
	}
	p, err := convert.FromAPIProfile(resp)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Remote) UpdateProfile(ctx context.Context, p model.Profile) (*model.Profile, error) {
	resp, err := r.cl.UpdateProfile(r.authed(ctx), convert.ToAPIProfile(p))
	if err != nil {
		return nil, r.fail("update profile", err)
	}
	out, err := convert.FromAPIProfile(resp)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// --- snaps ---

func (r *Remote) CreateSnap(ctx context.Context, f model.SnapFields) (*model.Snap, error) {
	in := convert.ToAPIFields(f)
	resp, err := r.cl.CreateSnap(r.authed(ctx), &in)
	if err != nil {
		return nil, r.fail("create snap", err)
	}
	s, err := convert.FromAPISnap(*resp)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Remote) GetSnap(ctx context.Context, id uuid.UUID) (*model.Snap, error) {
	resp, err := r.cl.GetSnap(r.authed(ctx), &api.IDRequest{ID: id.String()})
	if err != nil {
		return nil, r.fail("get snap", err)
	}
	s, err := convert.FromAPISnap(*resp)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Remote) UpdateSnap(ctx context.Context, id uuid.UUID, f model.SnapFields) error {
	_, err := r.cl.UpdateSnap(r.authed(ctx), &api.UpdateSnapRequest{ID: id.String(), Fields: convert.ToAPIFields(f)})
	if err != nil {
		return r.fail("update snap", err)
	}
	return nil
}

func (r *Remote) DeleteSnaps(ctx context.Context, ids []uuid.UUID) error {
	_, err := r.cl.DeleteSnaps(r.authed(ctx), &api.DeleteSnapsRequest{IDs: convert.IDStrings(ids)})
	if err != nil {
		return r.fail("delete snaps", err)
	}
	return nil
}

func (r *Remote) ListSnaps(ctx context.Context, f model.SnapFilter) ([]model.Snap, error) {
	resp, err := r.cl.ListSnaps(r.authed(ctx), convert.ToAPIFilter(f))
	if err != nil {
		return nil, r.fail("list snaps", err)
	}
	return convert.FromAPISnapList(resp)
}

func (r *Remote) SearchSnaps(ctx context.Context, term string) ([]model.Snap, error) {
	resp, err := r.cl.SearchSnaps(r.authed(ctx), &api.SearchRequest{Term: term})
	if err != nil {
		return nil, r.fail("search snaps", err)
	}
	return convert.FromAPISnapList(resp)
}

func (r *Remote) ForkSnap(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	resp, err := r.cl.ForkSnap(r.authed(ctx), &api.IDRequest{ID: id.String()})
	if err != nil {
		return uuid.Nil, r.fail("fork snap", err)
	}
	return convert.ParseID(resp.ID)
}

// --- votes, saves, comments ---

func (r *Remote) GetVote(ctx context.Context, snapID uuid.UUID) (model.Vote, error) {
	resp, err := r.cl.GetVote(r.authed(ctx), &api.IDRequest{ID: snapID.String()})
	if err != nil {
		return model.VoteNone, r.fail("get vote", err)
	}
	return convert.FromAPIVote(resp.Vote)
}

func (r *Remote) CastVote(ctx context.Context, snapID uuid.UUID, v model.Vote) (int, error) {
	resp, err := r.cl.CastVote(r.authed(ctx), &api.CastVoteRequest{SnapID: snapID.String(), Vote: int8(v)})
	if err != nil {
		return 0, r.fail("cast vote", err)
	}
	return resp.Score, nil
}

func (r *Remote) ClearVote(ctx context.Context, snapID uuid.UUID) (int, error) {
	resp, err := r.cl.ClearVote(r.authed(ctx), &api.IDRequest{ID: snapID.String()})
	if err != nil {
		return 0, r.fail("clear vote", err)
	}
	return resp.Score, nil
}

func (r *Remote) IsSaved(ctx context.Context, snapID uuid.UUID) (bool, error) {
	resp, err := r.cl.IsSaved(r.authed(ctx), &api.IDRequest{ID: snapID.String()})
	if err != nil {
		return false, r.fail("is saved", err)
	}
	return resp.Saved, nil
}

func (r *Remote) SaveSnap(ctx context.Context, snapID uuid.UUID) error {
	if _, err := r.cl.SaveSnap(r.authed(ctx), &api.IDRequest{ID: snapID.String()}); err != nil {
		return r.fail("save snap", err)
	}
	return nil
}

func (r *Remote) UnsaveSnap(ctx context.Context, snapID uuid.UUID) error {
	if _, err := r.cl.UnsaveSnap(r.authed(ctx), &api.IDRequest{ID: snapID.String()}); err != nil {
		return r.fail("unsave snap", err)
	}
	return nil
}

func (r *Remote) ListComments(ctx context.Context, snapID uuid.UUID) ([]model.Comment, error) {
	resp, err := r.cl.ListComments(r.authed(ctx), &api.IDRequest{ID: snapID.String()})
	if err != nil {
		return nil, r.fail("list comments", err)
	}
	return convert.FromAPICommentList(resp)
}

func (r *Remote) AddComment(ctx context.Context, snapID uuid.UUID, content string) (*model.Comment, error) {
	resp, err := r.cl.AddComment(r.authed(ctx), &api.AddCommentRequest{SnapID: snapID.String(), Content: content})
	if err != nil {
		return nil, r.fail("add comment", err)
	}
	c, err := convert.FromAPIComment(*resp)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// --- files ---

func (r *Remote) UploadFile(ctx context.Context, bucket, path string, data []byte, upsert bool) (string, error) {
	resp, err := r.cl.UploadFile(r.authed(ctx), &api.UploadRequest{Bucket: bucket, Path: path, Data: data, Upsert: upsert})
	if err != nil {
		return "", r.fail("upload", err)
	}
	return resp.URL, nil
}

func (r *Remote) PublicURL(ctx context.Context, bucket, path string) (string, error) {
	resp, err := r.cl.PublicURL(r.authed(ctx), &api.PublicURLRequest{Bucket: bucket, Path: path})
	if err != nil {
		return "", r.fail("public url", err)
	}
	return resp.URL, nil
}
