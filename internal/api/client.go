package api

import (
	"context"

	"google.golang.org/grpc"
)

// SnapsClient is a typed client for the Snaps service. Every call is sent
// with the JSON content subtype.
type SnapsClient struct {
	cc grpc.ClientConnInterface
}

// NewSnapsClient wraps a connection.
func NewSnapsClient(cc grpc.ClientConnInterface) *SnapsClient {
	return &SnapsClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SnapsClient) SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*SignUpResponse, error) {
	return invoke[SignUpResponse](ctx, c.cc, "SignUp", in, opts)
}
func (c *SnapsClient) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*SignInResponse, error) {
	return invoke[SignInResponse](ctx, c.cc, "SignIn", in, opts)
}
func (c *SnapsClient) WhoAmI(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Viewer, error) {
	return invoke[Viewer](ctx, c.cc, "WhoAmI", in, opts)
}
func (c *SnapsClient) GetProfile(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*Profile, error) {
	return invoke[Profile](ctx, c.cc, "GetProfile", in, opts)
}
func (c *SnapsClient) UpdateProfile(ctx context.Context, in *Profile, opts ...grpc.CallOption) (*Profile, error) {
	return invoke[Profile](ctx, c.cc, "UpdateProfile", in, opts)
}
func (c *SnapsClient) CreateSnap(ctx context.Context, in *SnapFields, opts ...grpc.CallOption) (*Snap, error) {
	return invoke[Snap](ctx, c.cc, "CreateSnap", in, opts)
}
func (c *SnapsClient) GetSnap(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*Snap, error) {
	return invoke[Snap](ctx, c.cc, "GetSnap", in, opts)
}
func (c *SnapsClient) UpdateSnap(ctx context.Context, in *UpdateSnapRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "UpdateSnap", in, opts)
}
func (c *SnapsClient) DeleteSnaps(ctx context.Context, in *DeleteSnapsRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "DeleteSnaps", in, opts)
}
func (c *SnapsClient) ListSnaps(ctx context.Context, in *ListSnapsRequest, opts ...grpc.CallOption) (*SnapList, error) {
	return invoke[SnapList](ctx, c.cc, "ListSnaps", in, opts)
}
func (c *SnapsClient) SearchSnaps(ctx context.Context, in *SearchRequest, opts ...grpc.CallOption) (*SnapList, error) {
	return invoke[SnapList](ctx, c.cc, "SearchSnaps", in, opts)
}
func (c *SnapsClient) ForkSnap(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*IDResponse, error) {
	return invoke[IDResponse](ctx, c.cc, "ForkSnap", in, opts)
}
func (c *SnapsClient) GetVote(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*VoteResponse, error) {
	return invoke[VoteResponse](ctx, c.cc, "GetVote", in, opts)
}
func (c *SnapsClient) CastVote(ctx context.Context, in *CastVoteRequest, opts ...grpc.CallOption) (*VoteResponse, error) {
	return invoke[VoteResponse](ctx, c.cc, "CastVote", in, opts)
}
func (c *SnapsClient) ClearVote(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*VoteResponse, error) {
	return invoke[VoteResponse](ctx, c.cc, "ClearVote", in, opts)
}
func (c *SnapsClient) IsSaved(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*SavedResponse, error) {
	return invoke[SavedResponse](ctx, c.cc, "IsSaved", in, opts)
}
func (c *SnapsClient) SaveSnap(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "SaveSnap", in, opts)
}
func (c *SnapsClient) UnsaveSnap(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "UnsaveSnap", in, opts)
}
func (c *SnapsClient) ListComments(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*CommentList, error) {
	return invoke[CommentList](ctx, c.cc, "ListComments", in, opts)
}
func (c *SnapsClient) AddComment(ctx context.Context, in *AddCommentRequest, opts ...grpc.CallOption) (*Comment, error) {
	return invoke[Comment](ctx, c.cc, "AddComment", in, opts)
}
func (c *SnapsClient) UploadFile(ctx context.Context, in *UploadRequest, opts ...grpc.CallOption) (*URLResponse, error) {
	return invoke[URLResponse](ctx, c.cc, "UploadFile", in, opts)
}
func (c *SnapsClient) PublicURL(ctx context.Context, in *PublicURLRequest, opts ...grpc.CallOption) (*URLResponse, error) {
	return invoke[URLResponse](ctx, c.cc, "PublicURL", in, opts)
}
