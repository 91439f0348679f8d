// Package grpcserver exposes the Snaps gRPC API handlers.
package grpcserver

import (
	"context"
	"errors"

	"github.com/camadaviva/snaps/internal/api"
	"github.com/camadaviva/snaps/internal/convert"
	"github.com/camadaviva/snaps/internal/errs"
	"github.com/camadaviva/snaps/internal/model"
	"github.com/camadaviva/snaps/internal/service"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// Services bundles the application services behind the handlers.
type Services struct {
	Auth     service.AuthService
	Profiles service.ProfileService
	Snaps    service.SnapService
	Social   service.SocialService
	Files    service.FileService
}

// Server wires services into gRPC handlers.
type Server struct {
	api.UnimplementedSnapsServer
	svc Services
	log *zap.Logger
}

var _ api.SnapsServer = (*Server)(nil)

// New constructs a gRPC server with injected services. A nil logger is replaced by a no-op one.
func New(svc Services, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{svc: svc, log: log}
}

// toStatus maps domain sentinels to gRPC codes. Unknown errors are logged and hidden.
func (s *Server) toStatus(op string, err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, errs.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, errs.ErrUnauthorized):
		code = codes.Unauthenticated
	case errors.Is(err, errs.ErrForbidden):
		code = codes.PermissionDenied
	case errors.Is(err, errs.ErrRateLimited):
		code = codes.ResourceExhausted
	case errors.Is(err, errs.ErrAlreadyExists):
		code = codes.AlreadyExists
	case errors.Is(err, errs.ErrInvalid):
		code = codes.InvalidArgument
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	default:
		s.log.Error("handler failed", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s: internal error", op)
	}
	return status.Errorf(code, "%s: %v", op, err)
}

func requireUser(ctx context.Context) (uuid.UUID, error) {
	id, ok := UserIDFromCtx(ctx)
	if !ok || id == uuid.Nil {
		return uuid.Nil, status.Error(codes.Unauthenticated, "no auth")
	}
	return id, nil
}

// viewerOrNil returns the caller or uuid.Nil for anonymous calls.
func viewerOrNil(ctx context.Context) uuid.UUID {
	id, _ := UserIDFromCtx(ctx)
	return id
}

func remoteIP(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return p.Addr.String()
	}
	return ""
}

// --- Auth ---

// SignUp creates a new account.
func (s *Server) SignUp(ctx context.Context, req *api.SignUpRequest) (*api.SignUpResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "empty email/password")
	}
	id, err := s.svc.Auth.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus("sign up", err)
	}
	return &api.SignUpResponse{UserID: id.String()}, nil
}

// SignIn authenticates and returns an access token.
func (s *Server) SignIn(ctx context.Context, req *api.SignInRequest) (*api.SignInResponse, error) {
	tok, v, err := s.svc.Auth.SignIn(ctx, req.Email, req.Password, remoteIP(ctx))
	if err != nil {
		if errors.Is(err, errs.ErrUnauthorized) {
			return nil, status.Error(codes.Unauthenticated, "bad credentials")
		}
		return nil, s.toStatus("sign in", err)
	}
	return &api.SignInResponse{
		AccessToken: tok.AccessToken,
		ExpiresAt:   tok.ExpiresAt,
		UserID:      v.ID.String(),
		Email:       v.Email,
	}, nil
}

// WhoAmI resolves the token's subject.
func (s *Server) WhoAmI(ctx context.Context, _ *api.Empty) (*api.Viewer, error) {
	id, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	v, err := s.svc.Auth.Viewer(ctx, id)
	if err != nil {
		return nil, s.toStatus("who am i", err)
	}
	return &api.Viewer{UserID: v.ID.String(), Email: v.Email}, nil
}

// --- Profiles ---

func (s *Server) GetProfile(ctx context.Context, req *api.IDRequest) (*api.Profile, error) {
	id, err := convert.ParseID(req.ID)
	if err != nil {
		return nil, s.toStatus("get profile", err)
	}
	p, err := s.svc.Profiles.Get(ctx, id)
	if err != nil {
		return nil, s.toStatus("get profile", err)
	}
	return convert.ToAPIProfile(*p), nil
}

func (s *Server) UpdateProfile(ctx context.Context, req *api.Profile) (*api.Profile, error) {
	viewer, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	in, err := convert.FromAPIProfile(req)
	if err != nil {
		return nil, s.toStatus("update profile", err)
	}
	p, err := s.svc.Profiles.Update(ctx, viewer, in)
	if err != nil {
		return nil, s.toStatus("update profile", err)
	}
	return convert.ToAPIProfile(*p), nil
}

// --- Snaps ---

func (s *Server) CreateSnap(ctx context.Context, req *api.SnapFields) (*api.Snap, error) {
	viewer, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	sn, err := s.svc.Snaps.Create(ctx, viewer, convert.FromAPIFields(*req))
	if err != nil {
		return nil, s.toStatus("create snap", err)
	}
	out := convert.ToAPISnap(*sn)
	return &out, nil
}

func (s *Server) GetSnap(ctx context.Context, req *api.IDRequest) (*api.Snap, error) {
	id, err := convert.ParseID(req.ID)
	if err != nil {
		return nil, s.toStatus("get snap", err)
	}
	sn, err := s.svc.Snaps.Get(ctx, viewerOrNil(ctx), id)
	if err != nil {
		return nil, s.toStatus("get snap", err)
	}
	out := convert.ToAPISnap(*sn)
	return &out, nil
}

func (s *Server) UpdateSnap(ctx context.Context, req *api.UpdateSnapRequest) (*api.Empty, error) {
	viewer, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	id, err := convert.ParseID(req.ID)
	if err != nil {
		return nil, s.toStatus("update snap", err)
	}
	if err := s.svc.Snaps.Update(ctx, viewer, id, convert.FromAPIFields(req.Fields)); err != nil {
		return nil, s.toStatus("update snap", err)
	}
	return &api.Empty{}, nil
}

func (s *Server) DeleteSnaps(ctx context.Context, req *api.DeleteSnapsRequest) (*api.Empty, error) {
	viewer, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	ids, err := convert.ParseIDs(req.IDs)
	if err != nil {
		return nil, s.toStatus("delete snaps", err)
	}
	if err := s.svc.Snaps.DeleteBatch(ctx, viewer, ids); err != nil {
		return nil, s.toStatus("delete snaps", err)
	}
	return &api.Empty{}, nil
}

func (s *Server) ListSnaps(ctx context.Context, req *api.ListSnapsRequest) (*api.SnapList, error) {
	f, err := convert.FromAPIFilter(req)
	if err != nil {
		return nil, s.toStatus("list snaps", err)
	}
	out, err := s.svc.Snaps.List(ctx, viewerOrNil(ctx), f)
	if err != nil {
		return nil, s.toStatus("list snaps", err)
	}
	return convert.ToAPISnapList(out), nil
}

func (s *Server) SearchSnaps(ctx context.Context, req *api.SearchRequest) (*api.SnapList, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	out, err := s.svc.Snaps.Search(ctx, req.Term)
	if err != nil {
		return nil, s.toStatus("search snaps", err)
	}
	return convert.ToAPISnapList(out), nil
}

func (s *Server) ForkSnap(ctx context.Context, req *api.IDRequest) (*api.IDResponse, error) {
	viewer, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	id, err := convert.ParseID(req.ID)
	if err != nil {
		return nil, s.toStatus("fork snap", err)
	}
	newID, err := s.svc.Snaps.Fork(ctx, viewer, id)
	if err != nil {
		return nil, s.toStatus("fork snap", err)
	}
	return &api.IDResponse{ID: newID.String()}, nil
}

// --- Votes, saves, comments ---

// viewerAndSnap is the common prelude of per-snap social calls.
func (s *Server) viewerAndSnap(ctx context.Context, op, snapID string) (uuid.UUID, uuid.UUID, error) {
	viewer, err := requireUser(ctx)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err := convert.ParseID(snapID)
	if err != nil {
		return uuid.Nil, uuid.Nil, s.toStatus(op, err)
	}
	return viewer, id, nil
}

func (s *Server) GetVote(ctx context.Context, req *api.IDRequest) (*api.VoteResponse, error) {
	viewer, snap, err := s.viewerAndSnap(ctx, "get vote", req.ID)
	if err != nil {
		return nil, err
	}
	v, err := s.svc.Social.GetVote(ctx, viewer, snap)
	if err != nil {
		return nil, s.toStatus("get vote", err)
	}
	return &api.VoteResponse{Vote: int8(v)}, nil
}

func (s *Server) CastVote(ctx context.Context, req *api.CastVoteRequest) (*api.VoteResponse, error) {
	viewer, snap, err := s.viewerAndSnap(ctx, "cast vote", req.SnapID)
	if err != nil {
		return nil, err
	}
	v, err := convert.FromAPIVote(req.Vote)
	if err != nil {
		return nil, s.toStatus("cast vote", err)
	}
	score, err := s.svc.Social.CastVote(ctx, viewer, snap, v)
	if err != nil {
		return nil, s.toStatus("cast vote", err)
	}
	return &api.VoteResponse{Vote: int8(v), Score: score}, nil
}

func (s *Server) ClearVote(ctx context.Context, req *api.IDRequest) (*api.VoteResponse, error) {
	viewer, snap, err := s.viewerAndSnap(ctx, "clear vote", req.ID)
	if err != nil {
		return nil, err
	}
	score, err := s.svc.Social.ClearVote(ctx, viewer, snap)
	if err != nil {
		return nil, s.toStatus("clear vote", err)
	}
	return &api.VoteResponse{Vote: int8(model.VoteNone), Score: score}, nil
}

func (s *Server) IsSaved(ctx context.Context, req *api.IDRequest) (*api.SavedResponse, error) {
	viewer, snap, err := s.viewerAndSnap(ctx, "is saved", req.ID)
	if err != nil {
		return nil, err
	}
	ok, err := s.svc.Social.IsSaved(ctx, viewer, snap)
	if err != nil {
		return nil, s.toStatus("is saved", err)
	}
	return &api.SavedResponse{Saved: ok}, nil
}

func (s *Server) SaveSnap(ctx context.Context, req *api.IDRequest) (*api.Empty, error) {
	viewer, snap, err := s.viewerAndSnap(ctx, "save snap", req.ID)
	if err != nil {
		return nil, err
	}
	if err := s.svc.Social.Save(ctx, viewer, snap); err != nil {
		return nil, s.toStatus("save snap", err)
	}
	return &api.Empty{}, nil
}

func (s *Server) UnsaveSnap(ctx context.Context, req *api.IDRequest) (*api.Empty, error) {
	viewer, snap, err := s.viewerAndSnap(ctx, "unsave snap", req.ID)
	if err != nil {
		return nil, err
	}
	if err := s.svc.Social.Unsave(ctx, viewer, snap); err != nil {
		return nil, s.toStatus("unsave snap", err)
	}
	return &api.Empty{}, nil
}

func (s *Server) ListComments(ctx context.Context, req *api.IDRequest) (*api.CommentList, error) {
	id, err := convert.ParseID(req.ID)
	if err != nil {
		return nil, s.toStatus("list comments", err)
	}
	// comments follow the visibility of their snap
	if _, err := s.svc.Snaps.Get(ctx, viewerOrNil(ctx), id); err != nil {
		return nil, s.toStatus("list comments", err)
	}
	cs, err := s.svc.Social.ListComments(ctx, id)
	if err != nil {
		return nil, s.toStatus("list comments", err)
	}
	return convert.ToAPICommentList(cs), nil
}

func (s *Server) AddComment(ctx context.Context, req *api.AddCommentRequest) (*api.Comment, error) {
	viewer, snap, err := s.viewerAndSnap(ctx, "add comment", req.SnapID)
	if err != nil {
		return nil, err
	}
	c, err := s.svc.Social.AddComment(ctx, viewer, snap, req.Content)
	if err != nil {
		return nil, s.toStatus("add comment", err)
	}
	out := convert.ToAPIComment(*c)
	return &out, nil
}

// --- Files ---

func (s *Server) UploadFile(ctx context.Context, req *api.UploadRequest) (*api.URLResponse, error) {
	viewer, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	url, err := s.svc.Files.Upload(ctx, viewer, req.Bucket, req.Path, req.Data, req.Upsert)
	if err != nil {
		return nil, s.toStatus("upload", err)
	}
	return &api.URLResponse{URL: url}, nil
}

func (s *Server) PublicURL(_ context.Context, req *api.PublicURLRequest) (*api.URLResponse, error) {
	url, err := s.svc.Files.PublicURL(req.Bucket, req.Path)
	if err != nil {
		return nil, s.toStatus("public url", err)
	}
	return &api.URLResponse{URL: url}, nil
}
