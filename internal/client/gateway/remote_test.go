package gateway

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/camadaviva/snaps/internal/api"
	"github.com/camadaviva/snaps/internal/errs"
	"github.com/camadaviva/snaps/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const bufSize = 1 << 20

// fakeAPI answers a handful of methods and records the bearer header it saw.
type fakeAPI struct {
	api.UnimplementedSnapsServer

	mu      sync.Mutex
	user    uuid.UUID
	auths   []string
	deleted []string
	votes   []int8
	reject  bool
}

func (f *fakeAPI) seen(ctx context.Context) {
	md, _ := metadata.FromIncomingContext(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auths = append(f.auths, firstOf(md.Get("authorization")))
}

func (f *fakeAPI) lastAuth() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.auths) == 0 {
		return ""
	}
	return f.auths[len(f.auths)-1]
}

func firstOf(v []string) string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

func (f *fakeAPI) SignIn(_ context.Context, in *api.SignInRequest) (*api.SignInResponse, error) {
	if in.Password != "right" {
		return nil, status.Error(codes.Unauthenticated, "invalid credentials")
	}
	return &api.SignInResponse{
		AccessToken: "tok-1",
		ExpiresAt:   time.Now().Add(time.Hour),
		UserID:      f.user.String(),
		Email:       in.Email,
	}, nil
}

func (f *fakeAPI) GetSnap(ctx context.Context, in *api.IDRequest) (*api.Snap, error) {
	f.seen(ctx)
	if f.reject {
		return nil, status.Error(codes.Unauthenticated, "token expired")
	}
	if in.ID == uuid.Nil.String() {
		return nil, status.Error(codes.NotFound, "snap not found")
	}
	return &api.Snap{ID: in.ID, UserID: f.user.String(), SnapFields: api.SnapFields{Title: "mar", Tags: []string{}}}, nil
}

func (f *fakeAPI) DeleteSnaps(ctx context.Context, in *api.DeleteSnapsRequest) (*api.Empty, error) {
	f.seen(ctx)
	if len(in.IDs) > 2 {
		return nil, status.Error(codes.PermissionDenied, "not yours")
	}
	f.deleted = append(f.deleted, in.IDs...)
	return &api.Empty{}, nil
}

func (f *fakeAPI) CastVote(ctx context.Context, in *api.CastVoteRequest) (*api.VoteResponse, error) {
	f.seen(ctx)
	f.votes = append(f.votes, in.Vote)
	return &api.VoteResponse{Vote: in.Vote, Score: 10 + int(in.Vote)}, nil
}

func (f *fakeAPI) UploadFile(ctx context.Context, in *api.UploadRequest) (*api.URLResponse, error) {
	f.seen(ctx)
	return &api.URLResponse{URL: "https://cdn.test/" + in.Bucket + "/" + in.Path}, nil
}

func startRemote(t *testing.T, f *fakeAPI, store Store, opts ...RemoteOption) *Remote {
	t.Helper()
	lis := bufconn.Listen(bufSize)
	gs := grpc.NewServer()
	api.RegisterSnapsServer(gs, f)
	go func() { _ = gs.Serve(lis) }()

	dialer := func(context.Context, string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(dialer), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = cc.Close(); gs.Stop(); _ = lis.Close() })

	opts = append([]RemoteOption{WithLogger(zaptest.NewLogger(t))}, opts...)
	r, err := NewRemote(cc, store, opts...)
	if err != nil {
		t.Fatalf("new remote: %v", err)
	}
	return r
}

func TestRemote_SignInAttachesToken(t *testing.T) {
	f := &fakeAPI{user: uuid.Must(uuid.NewV4())}
	store := &MemStore{}
	r := startRemote(t, f, store)
	ctx := context.Background()

	var events []AuthEvent
	unsub := r.OnAuthStateChange(func(ev AuthEvent) { events = append(events, ev) })
	defer unsub()

	_, ok := r.Viewer()
	require.False(t, ok)

	// anonymous calls carry no header
	_, err := r.GetSnap(ctx, uuid.Must(uuid.NewV4()))
	require.NoError(t, err)
	require.Equal(t, "", f.lastAuth())

	_, err = r.SignIn(ctx, "ana@example.com", "wrong")
	require.ErrorIs(t, err, errs.ErrUnauthorized)
	require.Empty(t, events)

	v, err := r.SignIn(ctx, "ana@example.com", "right")
	require.NoError(t, err)
	require.Equal(t, f.user, v.ID)
	got, ok := r.Viewer()
	require.True(t, ok)
	require.Equal(t, v, got)
	require.Len(t, events, 1)
	require.Equal(t, SignedIn, events[0].Kind)

	stored, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "tok-1", stored.AccessToken)

	s, err := r.GetSnap(ctx, uuid.Must(uuid.NewV4()))
	require.NoError(t, err)
	require.Equal(t, "mar", s.Title)
	require.Equal(t, "Bearer tok-1", f.lastAuth())

	require.NoError(t, r.SignOut(ctx))
	_, ok = r.Viewer()
	require.False(t, ok)
	require.Len(t, events, 2)
	require.Equal(t, SignedOut, events[1].Kind)
	_, err = store.Load()
	require.ErrorIs(t, err, ErrNoSession)
}

func TestRemote_RestoresStoredSession(t *testing.T) {
	user := uuid.Must(uuid.NewV4())
	store := &MemStore{}
	require.NoError(t, store.Save(Session{AccessToken: "old", ExpiresAt: time.Now().Add(time.Hour), UserID: user}))
	r := startRemote(t, &fakeAPI{user: user}, store)
	v, ok := r.Viewer()
	require.True(t, ok)
	require.Equal(t, user, v.ID)

	expired := &MemStore{}
	require.NoError(t, expired.Save(Session{AccessToken: "old", ExpiresAt: time.Now().Add(-time.Hour), UserID: user}))
	r = startRemote(t, &fakeAPI{user: user}, expired)
	_, ok = r.Viewer()
	require.False(t, ok)
}

func TestRemote_SessionExpiresWithClock(t *testing.T) {
	user := uuid.Must(uuid.NewV4())
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &MemStore{}
	require.NoError(t, store.Save(Session{AccessToken: "old", ExpiresAt: now.Add(time.Minute), UserID: user}))

	clock := now
	r := startRemote(t, &fakeAPI{user: user}, store, WithClock(func() time.Time { return clock }))
	_, ok := r.Viewer()
	require.True(t, ok)

	clock = now.Add(2 * time.Minute)
	_, ok = r.Viewer()
	require.False(t, ok)
}

func TestRemote_RejectedTokenSignsOut(t *testing.T) {
	user := uuid.Must(uuid.NewV4())
	store := &MemStore{}
	require.NoError(t, store.Save(Session{AccessToken: "stale", ExpiresAt: time.Now().Add(time.Hour), UserID: user}))
	f := &fakeAPI{user: user, reject: true}
	r := startRemote(t, f, store)

	var kinds []AuthEventKind
	r.OnAuthStateChange(func(ev AuthEvent) { kinds = append(kinds, ev.Kind) })

	_, err := r.GetSnap(context.Background(), uuid.Must(uuid.NewV4()))
	require.ErrorIs(t, err, errs.ErrUnauthorized)
	require.Equal(t, []AuthEventKind{SignedOut}, kinds)
	_, ok := r.Viewer()
	require.False(t, ok)
	_, err = store.Load()
	require.ErrorIs(t, err, ErrNoSession)
}

func TestRemote_ErrorMappingAndCalls(t *testing.T) {
	f := &fakeAPI{user: uuid.Must(uuid.NewV4())}
	r := startRemote(t, f, &MemStore{})
	ctx := context.Background()

	_, err := r.GetSnap(ctx, uuid.Nil)
	require.ErrorIs(t, err, errs.ErrNotFound)

	a, b, c := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())
	require.NoError(t, r.DeleteSnaps(ctx, []uuid.UUID{a, b}))
	require.Equal(t, []string{a.String(), b.String()}, f.deleted)
	require.ErrorIs(t, r.DeleteSnaps(ctx, []uuid.UUID{a, b, c}), errs.ErrForbidden)

	score, err := r.CastVote(ctx, a, model.VoteDown)
	require.NoError(t, err)
	require.Equal(t, 9, score)
	require.Equal(t, []int8{-1}, f.votes)

	url, err := r.UploadFile(ctx, "avatars", "me/a.png", []byte{1, 2}, true)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.test/avatars/me/a.png", url)

	// methods the fake leaves unimplemented surface as plain errors
	_, err = r.SearchSnaps(ctx, "x")
	require.Error(t, err)
	require.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestFromStatus(t *testing.T) {
	cases := []struct {
		code codes.Code
		want error
	}{
		{codes.NotFound, errs.ErrNotFound},
		{codes.Unauthenticated, errs.ErrUnauthorized},
		{codes.PermissionDenied, errs.ErrForbidden},
		{codes.ResourceExhausted, errs.ErrRateLimited},
		{codes.AlreadyExists, errs.ErrAlreadyExists},
		{codes.InvalidArgument, errs.ErrInvalid},
		{codes.Canceled, context.Canceled},
		{codes.DeadlineExceeded, context.DeadlineExceeded},
	}
	for _, tc := range cases {
		err := fromStatus(status.Error(tc.code, "boom"))
		require.ErrorIs(t, err, tc.want, tc.code.String())
		require.Contains(t, err.Error(), "boom")
	}
	plain := status.Error(codes.Internal, "x")
	require.Equal(t, plain, fromStatus(plain))
}
