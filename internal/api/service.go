package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "snaps.v1.Snaps"

// SnapsServer is implemented by the gateway server.
type SnapsServer interface {
	SignUp(context.Context, *SignUpRequest) (*SignUpResponse, error)
	SignIn(context.Context, *SignInRequest) (*SignInResponse, error)
	WhoAmI(context.Context, *Empty) (*Viewer, error)

	GetProfile(context.Context, *IDRequest) (*Profile, error)
	UpdateProfile(context.Context, *Profile) (*Profile, error)

	CreateSnap(context.Context, *SnapFields) (*Snap, error)
	GetSnap(context.Context, *IDRequest) (*Snap, error)
	UpdateSnap(context.Context, *UpdateSnapRequest) (*Empty, error)
	DeleteSnaps(context.Context, *DeleteSnapsRequest) (*Empty, error)
	ListSnaps(context.Context, *ListSnapsRequest) (*SnapList, error)
	SearchSnaps(context.Context, *SearchRequest) (*SnapList, error)
	ForkSnap(context.Context, *IDRequest) (*IDResponse, error)

	GetVote(context.Context, *IDRequest) (*VoteResponse, error)
	CastVote(context.Context, *CastVoteRequest) (*VoteResponse, error)
	ClearVote(context.Context, *IDRequest) (*VoteResponse, error)
	IsSaved(context.Context, *IDRequest) (*SavedResponse, error)
	SaveSnap(context.Context, *IDRequest) (*Empty, error)
	UnsaveSnap(context.Context, *IDRequest) (*Empty, error)
	ListComments(context.Context, *IDRequest) (*CommentList, error)
	AddComment(context.Context, *AddCommentRequest) (*Comment, error)

	UploadFile(context.Context, *UploadRequest) (*URLResponse, error)
	PublicURL(context.Context, *PublicURLRequest) (*URLResponse, error)
}

// ServiceDesc describes the Snaps service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SnapsServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("SignUp", SnapsServer.SignUp),
		unary("SignIn", SnapsServer.SignIn),
		unary("WhoAmI", SnapsServer.WhoAmI),
		unary("GetProfile", SnapsServer.GetProfile),
		unary("UpdateProfile", SnapsServer.UpdateProfile),
		unary("CreateSnap", SnapsServer.CreateSnap),
		unary("GetSnap", SnapsServer.GetSnap),
		unary("UpdateSnap", SnapsServer.UpdateSnap),
		unary("DeleteSnaps", SnapsServer.DeleteSnaps),
		unary("ListSnaps", SnapsServer.ListSnaps),
		unary("SearchSnaps", SnapsServer.SearchSnaps),
		unary("ForkSnap", SnapsServer.ForkSnap),
		unary("GetVote", SnapsServer.GetVote),
		unary("CastVote", SnapsServer.CastVote),
		unary("ClearVote", SnapsServer.ClearVote),
		unary("IsSaved", SnapsServer.IsSaved),
		unary("SaveSnap", SnapsServer.SaveSnap),
		unary("UnsaveSnap", SnapsServer.UnsaveSnap),
		unary("ListComments", SnapsServer.ListComments),
		unary("AddComment", SnapsServer.AddComment),
		unary("UploadFile", SnapsServer.UploadFile),
		unary("PublicURL", SnapsServer.PublicURL),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "snaps/v1/snaps",
}

// RegisterSnapsServer registers srv on s.
func RegisterSnapsServer(s grpc.ServiceRegistrar, srv SnapsServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// FullMethod returns "/snaps.v1.Snaps/<name>".
func FullMethod(name string) string { return "/" + ServiceName + "/" + name }

func unary[Req, Resp any](name string, call func(SnapsServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if ic == nil {
				return call(srv.(SnapsServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return ic(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(SnapsServer), ctx, req.(*Req))
			})
		},
	}
}

// UnimplementedSnapsServer can be embedded to get forward compatible implementations.
type UnimplementedSnapsServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedSnapsServer) SignUp(context.Context, *SignUpRequest) (*SignUpResponse, error) {
	return nil, unimplemented("SignUp")
}
func (UnimplementedSnapsServer) SignIn(context.Context, *SignInRequest) (*SignInResponse, error) {
	return nil, unimplemented("SignIn")
}
func (UnimplementedSnapsServer) WhoAmI(context.Context, *Empty) (*Viewer, error) {
	return nil, unimplemented("WhoAmI")
}
func (UnimplementedSnapsServer) GetProfile(context.Context, *IDRequest) (*Profile, error) {
	return nil, unimplemented("GetProfile")
}
func (UnimplementedSnapsServer) UpdateProfile(context.Context, *Profile) (*Profile, error) {
	return nil, unimplemented("UpdateProfile")
}
func (UnimplementedSnapsServer) CreateSnap(context.Context, *SnapFields) (*Snap, error) {
	return nil, unimplemented("CreateSnap")
}
func (UnimplementedSnapsServer) GetSnap(context.Context, *IDRequest) (*Snap, error) {
	return nil, unimplemented("GetSnap")
}
func (UnimplementedSnapsServer) UpdateSnap(context.Context, *UpdateSnapRequest) (*Empty, error) {
	return nil, unimplemented("UpdateSnap")
}
func (UnimplementedSnapsServer) DeleteSnaps(context.Context, *DeleteSnapsRequest) (*Empty, error) {
	return nil, unimplemented("DeleteSnaps")
}
func (UnimplementedSnapsServer) ListSnaps(context.Context, *ListSnapsRequest) (*SnapList, error) {
	return nil, unimplemented("ListSnaps")
}
func (UnimplementedSnapsServer) SearchSnaps(context.Context, *SearchRequest) (*SnapList, error) {
	return nil, unimplemented("SearchSnaps")
}
func (UnimplementedSnapsServer) ForkSnap(context.Context, *IDRequest) (*IDResponse, error) {
	return nil, unimplemented("ForkSnap")
}
func (UnimplementedSnapsServer) GetVote(context.Context, *IDRequest) (*VoteResponse, error) {
	return nil, unimplemented("GetVote")
}
func (UnimplementedSnapsServer) CastVote(context.Context, *CastVoteRequest) (*VoteResponse, error) {
	return nil, unimplemented("CastVote")
}
func (UnimplementedSnapsServer) ClearVote(context.Context, *IDRequest) (*VoteResponse, error) {
	return nil, unimplemented("ClearVote")
}
func (UnimplementedSnapsServer) IsSaved(context.Context, *IDRequest) (*SavedResponse, error) {
	return nil, unimplemented("IsSaved")
}
func (UnimplementedSnapsServer) SaveSnap(context.Context, *IDRequest) (*Empty, error) {
	return nil, unimplemented("SaveSnap")
}
func (UnimplementedSnapsServer) UnsaveSnap(context.Context, *IDRequest) (*Empty, error) {
	return nil, unimplemented("UnsaveSnap")
}
func (UnimplementedSnapsServer) ListComments(context.Context, *IDRequest) (*CommentList, error) {
	return nil, unimplemented("ListComments")
}
func (UnimplementedSnapsServer) AddComment(context.Context, *AddCommentRequest) (*Comment, error) {
	return nil, unimplemented("AddComment")
}
func (UnimplementedSnapsServer) UploadFile(context.Context, *UploadRequest) (*URLResponse, error) {
	return nil, unimplemented("UploadFile")
}
func (UnimplementedSnapsServer) PublicURL(context.Context, *PublicURLRequest) (*URLResponse, error) {
	return nil, unimplemented("PublicURL")
}
