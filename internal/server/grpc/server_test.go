package grpcserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/camadaviva/snaps/internal/api"
	"github.com/camadaviva/snaps/internal/errs"
	"github.com/camadaviva/snaps/internal/model"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type fakeAuth struct {
	id       uuid.UUID
	lastAddr string
}

func (f *fakeAuth) SignUp(context.Context, string, string) (uuid.UUID, error) { return f.id, nil }
func (f *fakeAuth) SignIn(_ context.Context, email, password, addr string) (model.Tokens, model.Viewer, error) {
	f.lastAddr = addr
	if password != "right" {
		return model.Tokens{}, model.Viewer{}, errs.ErrUnauthorized
	}
	return model.Tokens{AccessToken: "dummy", ExpiresAt: time.Now().Add(time.Minute)}, model.Viewer{ID: f.id, Email: email}, nil
}
func (f *fakeAuth) Viewer(_ context.Context, id uuid.UUID) (model.Viewer, error) {
	return model.Viewer{ID: id, Email: "ana@example.com"}, nil
}

type fakeProfiles struct{}

func (fakeProfiles) Get(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	return &model.Profile{ID: id, Username: "ana"}, nil
}
func (fakeProfiles) Update(_ context.Context, viewer uuid.UUID, p model.Profile) (*model.Profile, error) {
	p.ID = viewer
	return &p, nil
}

type fakeSnaps struct {
	owner      uuid.UUID
	private    uuid.UUID
	deleted    []uuid.UUID
	lastFilter model.SnapFilter
	internal   bool
}

func (f *fakeSnaps) Create(_ context.Context, viewer uuid.UUID, fl model.SnapFields) (*model.Snap, error) {
	return &model.Snap{ID: uuid.Must(uuid.NewV4()), UserID: viewer, SnapFields: fl}, nil
}
func (f *fakeSnaps) Get(_ context.Context, viewer, id uuid.UUID) (*model.Snap, error) {
	if id == f.private && viewer != f.owner {
		return nil, errs.ErrNotFound
	}
	return &model.Snap{ID: id, UserID: f.owner, SnapFields: model.SnapFields{Title: "t", IsPublic: id != f.private}}, nil
}
func (f *fakeSnaps) Update(context.Context, uuid.UUID, uuid.UUID, model.SnapFields) error {
	return errs.ErrNotFound
}
func (f *fakeSnaps) DeleteBatch(_ context.Context, _ uuid.UUID, ids []uuid.UUID) error {
	f.deleted = append(f.deleted, ids...)
	return nil
}
func (f *fakeSnaps) List(_ context.Context, _ uuid.UUID, fl model.SnapFilter) ([]model.Snap, error) {
	f.lastFilter = fl
	return []model.Snap{{ID: uuid.Must(uuid.NewV4()), UserID: f.owner}}, nil
}
func (f *fakeSnaps) Search(context.Context, string) ([]model.Snap, error) {
	if f.internal {
		return nil, fmt.Errorf("pq: relation %q does not exist", "snaps")
	}
	return nil, nil
}
func (f *fakeSnaps) Fork(context.Context, uuid.UUID, uuid.UUID) (uuid.UUID, error) {
	return uuid.Must(uuid.NewV4()), nil
}

type fakeSocial struct {
	score int
	saved bool
}

func (f *fakeSocial) GetVote(context.Context, uuid.UUID, uuid.UUID) (model.Vote, error) {
	return model.VoteDown, nil
}
func (f *fakeSocial) CastVote(_ context.Context, _, _ uuid.UUID, v model.Vote) (int, error) {
	f.score += int(v)
	return f.score, nil
}
func (f *fakeSocial) ClearVote(context.Context, uuid.UUID, uuid.UUID) (int, error) {
	return f.score, nil
}
func (f *fakeSocial) IsSaved(context.Context, uuid.UUID, uuid.UUID) (bool, error) { return f.saved, nil }
func (f *fakeSocial) Save(context.Context, uuid.UUID, uuid.UUID) error {
	f.saved = true
	return nil
}
func (f *fakeSocial) Unsave(context.Context, uuid.UUID, uuid.UUID) error {
	f.saved = false
	return nil
}
func (f *fakeSocial) ListComments(_ context.Context, snap uuid.UUID) ([]model.Comment, error) {
	return []model.Comment{{ID: uuid.Must(uuid.NewV4()), SnapID: snap, UserID: uuid.Must(uuid.NewV4()), Content: "oi"}}, nil
}
func (f *fakeSocial) AddComment(_ context.Context, viewer, snap uuid.UUID, content string) (*model.Comment, error) {
	if content == "" {
		return nil, fmt.Errorf("empty comment: %w", errs.ErrInvalid)
	}
	return &model.Comment{ID: uuid.Must(uuid.NewV4()), SnapID: snap, UserID: viewer, Content: content}, nil
}

type fakeFiles struct{}

func (fakeFiles) Upload(_ context.Context, viewer uuid.UUID, bucket, p string, _ []byte, _ bool) (string, error) {
	if viewer == uuid.Nil {
		return "", errs.ErrUnauthorized
	}
	return "https://cdn/" + bucket + "/" + p, nil
}
func (fakeFiles) PublicURL(bucket, p string) (string, error) { return "https://cdn/" + bucket + "/" + p, nil }

const bufSize = 1 << 20

type fixture struct {
	key    []byte
	auth   *fakeAuth
	snaps  *fakeSnaps
	social *fakeSocial
	srv    *Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	owner := uuid.Must(uuid.NewV4())
	f := &fixture{
		key:    []byte("test-secret"),
		auth:   &fakeAuth{id: owner},
		snaps:  &fakeSnaps{owner: owner, private: uuid.Must(uuid.NewV4())},
		social: &fakeSocial{},
	}
	f.srv = New(Services{
		Auth:     f.auth,
		Profiles: fakeProfiles{},
		Snaps:    f.snaps,
		Social:   f.social,
		Files:    fakeFiles{},
	}, zaptest.NewLogger(t))
	return f
}

func startBufGRPC(t *testing.T, f *fixture) *api.SnapsClient {
	t.Helper()
	lis := bufconn.Listen(bufSize)
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(
		RecoverUnary(zaptest.NewLogger(t)),
		AuthUnary(f.key),
	))
	api.RegisterSnapsServer(gs, f.srv)
	go func() { _ = gs.Serve(lis) }()
	dialer := func(context.Context, string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(dialer), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = cc.Close(); gs.Stop(); _ = lis.Close() })
	return api.NewSnapsClient(cc)
}

func withBearer(ctx context.Context, tok string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+tok)
}

func wantCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	if st, ok := status.FromError(err); !ok || st.Code() != code {
		t.Fatalf("want %s, got %v", code, err)
	}
}

func TestServer_E2E_AuthAndSnaps(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	cl := startBufGRPC(t, f)
	ctx := context.Background()

	up, err := cl.SignUp(ctx, &api.SignUpRequest{Email: "ana@example.com", Password: "right"})
	if err != nil || up.UserID != f.auth.id.String() {
		t.Fatalf("sign up: %v, resp=%+v", err, up)
	}
	_, err = cl.SignUp(ctx, &api.SignUpRequest{})
	wantCode(t, err, codes.InvalidArgument)

	_, err = cl.SignIn(ctx, &api.SignInRequest{Email: "ana@example.com", Password: "wrong"})
	wantCode(t, err, codes.Unauthenticated)
	in, err := cl.SignIn(ctx, &api.SignInRequest{Email: "ana@example.com", Password: "right"})
	if err != nil || in.AccessToken == "" || in.UserID != f.auth.id.String() {
		t.Fatalf("sign in: %v, resp=%+v", err, in)
	}
	if f.auth.lastAddr == "" {
		t.Fatalf("peer address not passed to sign in")
	}

	// anonymous callers may read public content but not mutate
	_, err = cl.WhoAmI(ctx, &api.Empty{})
	wantCode(t, err, codes.Unauthenticated)
	_, err = cl.CreateSnap(ctx, &api.SnapFields{Title: "x"})
	wantCode(t, err, codes.Unauthenticated)
	_, err = cl.GetSnap(ctx, &api.IDRequest{ID: f.snaps.private.String()})
	wantCode(t, err, codes.NotFound)
	_, err = cl.SearchSnaps(ctx, &api.SearchRequest{Term: "samba"})
	wantCode(t, err, codes.Unauthenticated)

	authed := withBearer(ctx, jwtFor(t, f.auth.id.String(), f.key, time.Minute))
	me, err := cl.WhoAmI(authed, &api.Empty{})
	if err != nil || me.UserID != f.auth.id.String() {
		t.Fatalf("who am i: %v %+v", err, me)
	}
	got, err := cl.GetSnap(authed, &api.IDRequest{ID: f.snaps.private.String()})
	if err != nil || got.IsPublic {
		t.Fatalf("owner get private: %v %+v", err, got)
	}
	created, err := cl.CreateSnap(authed, &api.SnapFields{Title: "Jongo", Tags: []string{"vale"}})
	if err != nil || created.UserID != f.auth.id.String() || created.Title != "Jongo" {
		t.Fatalf("create: %v %+v", err, created)
	}
	_, err = cl.UpdateSnap(authed, &api.UpdateSnapRequest{ID: created.ID, Fields: api.SnapFields{Title: "y"}})
	wantCode(t, err, codes.NotFound)

	a, b := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())
	if _, err := cl.DeleteSnaps(authed, &api.DeleteSnapsRequest{IDs: []string{a.String(), b.String()}}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(f.snaps.deleted) != 2 || f.snaps.deleted[0] != a {
		t.Fatalf("deleted = %v", f.snaps.deleted)
	}
	_, err = cl.DeleteSnaps(authed, &api.DeleteSnapsRequest{IDs: []string{"bad"}})
	wantCode(t, err, codes.InvalidArgument)

	list, err := cl.ListSnaps(authed, &api.ListSnapsRequest{SavedBy: f.auth.id.String()})
	if err != nil || len(list.Snaps) != 1 || f.snaps.lastFilter.SavedBy != f.auth.id {
		t.Fatalf("list: %v %+v filter=%+v", err, list, f.snaps.lastFilter)
	}
	fork, err := cl.ForkSnap(authed, &api.IDRequest{ID: a.String()})
	if err != nil || fork.ID == "" || fork.ID == a.String() {
		t.Fatalf("fork: %v %+v", err, fork)
	}

	f.snaps.internal = true
	_, err = cl.SearchSnaps(authed, &api.SearchRequest{})
	wantCode(t, err, codes.Internal)
	if st, _ := status.FromError(err); st.Message() != "search snaps: internal error" {
		t.Fatalf("internal details leaked: %q", st.Message())
	}
}

func TestServer_E2E_SocialAndFiles(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	cl := startBufGRPC(t, f)
	authed := withBearer(context.Background(), jwtFor(t, f.auth.id.String(), f.key, time.Minute))
	snap := uuid.Must(uuid.NewV4()).String()

	v, err := cl.GetVote(authed, &api.IDRequest{ID: snap})
	if err != nil || v.Vote != -1 {
		t.Fatalf("get vote: %v %+v", err, v)
	}
	v, err = cl.CastVote(authed, &api.CastVoteRequest{SnapID: snap, Vote: 1})
	if err != nil || v.Score != 1 || v.Vote != 1 {
		t.Fatalf("cast vote: %v %+v", err, v)
	}
	_, err = cl.CastVote(authed, &api.CastVoteRequest{SnapID: snap, Vote: 5})
	wantCode(t, err, codes.InvalidArgument)
	v, err = cl.ClearVote(authed, &api.IDRequest{ID: snap})
	if err != nil || v.Vote != 0 {
		t.Fatalf("clear vote: %v %+v", err, v)
	}

	if _, err := cl.SaveSnap(authed, &api.IDRequest{ID: snap}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if s, err := cl.IsSaved(authed, &api.IDRequest{ID: snap}); err != nil || !s.Saved {
		t.Fatalf("is saved: %v %+v", err, s)
	}
	if _, err := cl.UnsaveSnap(authed, &api.IDRequest{ID: snap}); err != nil {
		t.Fatalf("unsave: %v", err)
	}
	_, err = cl.SaveSnap(context.Background(), &api.IDRequest{ID: snap})
	wantCode(t, err, codes.Unauthenticated)

	cs, err := cl.ListComments(context.Background(), &api.IDRequest{ID: snap})
	if err != nil || len(cs.Comments) != 1 {
		t.Fatalf("list comments: %v %+v", err, cs)
	}
	_, err = cl.ListComments(context.Background(), &api.IDRequest{ID: f.snaps.private.String()})
	wantCode(t, err, codes.NotFound)
	c, err := cl.AddComment(authed, &api.AddCommentRequest{SnapID: snap, Content: "lindo"})
	if err != nil || c.Content != "lindo" || c.UserID != f.auth.id.String() {
		t.Fatalf("add comment: %v %+v", err, c)
	}
	_, err = cl.AddComment(authed, &api.AddCommentRequest{SnapID: snap})
	wantCode(t, err, codes.InvalidArgument)

	p, err := cl.UpdateProfile(authed, &api.Profile{Username: "ana"})
	if err != nil || p.ID != f.auth.id.String() {
		t.Fatalf("update profile: %v %+v", err, p)
	}
	if p, err := cl.GetProfile(context.Background(), &api.IDRequest{ID: f.auth.id.String()}); err != nil || p.Username != "ana" {
		t.Fatalf("get profile: %v %+v", err, p)
	}

	path := f.auth.id.String() + "/1-a.jpg"
	u, err := cl.UploadFile(authed, &api.UploadRequest{Bucket: "snaps-media", Path: path, Data: []byte{1, 2}})
	if err != nil || u.URL != "https://cdn/snaps-media/"+path {
		t.Fatalf("upload: %v %+v", err, u)
	}
	if u, err := cl.PublicURL(context.Background(), &api.PublicURLRequest{Bucket: "avatars", Path: "x.png"}); err != nil || u.URL == "" {
		t.Fatalf("public url: %v %+v", err, u)
	}
}

func Test_toStatus_Mapping(t *testing.T) {
	t.Parallel()
	s := New(Services{}, zaptest.NewLogger(t))
	cases := []struct {
		in   error
		want codes.Code
	}{
		{errs.ErrNotFound, codes.NotFound},
		{errs.ErrUnauthorized, codes.Unauthenticated},
		{errs.ErrForbidden, codes.PermissionDenied},
		{errs.ErrRateLimited, codes.ResourceExhausted},
		{errs.ErrAlreadyExists, codes.AlreadyExists},
		{fmt.Errorf("title: %w", errs.ErrInvalid), codes.InvalidArgument},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{errors.New("connection reset by peer"), codes.Internal},
	}
	for _, c := range cases {
		wantCode(t, s.toStatus("op", c.in), c.want)
	}
}

func Test_remoteIP(t *testing.T) {
	t.Parallel()
	if got := remoteIP(context.Background()); got != "" {
		t.Fatalf("want empty, got %q", got)
	}
	pctx := peer.NewContext(context.Background(), &peer.Peer{Addr: loopbackAddr{}})
	if got := remoteIP(pctx); got != "127.0.0.1:5555" {
		t.Fatalf("got %q", got)
	}
}

func Test_Handlers_RequireUser(t *testing.T) {
	t.Parallel()
	s := newFixture(t).srv
	_, err := s.UpdateProfile(context.Background(), &api.Profile{})
	wantCode(t, err, codes.Unauthenticated)
	_, err = s.ForkSnap(context.Background(), &api.IDRequest{})
	wantCode(t, err, codes.Unauthenticated)
	_, err = s.UploadFile(context.Background(), &api.UploadRequest{})
	wantCode(t, err, codes.Unauthenticated)

	ctx := WithUserID(context.Background(), uuid.Must(uuid.NewV4()))
	_, err = s.GetVote(ctx, &api.IDRequest{ID: "nope"})
	wantCode(t, err, codes.InvalidArgument)
}
