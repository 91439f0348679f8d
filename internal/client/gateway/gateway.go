// Package gateway is the client's view of the Remote Data Gateway: records,
// procedures, file storage and the auth session.
package gateway

import (
	"context"

	"github.com/camadaviva/snaps/internal/model"
	"github.com/gofrs/uuid/v5"
)

// Gateway is everything client views need from the backend.
type Gateway interface {
	// Viewer returns the signed-in identity, if any. It never touches the network.
	Viewer() (model.Viewer, bool)
	SignUp(ctx context.Context, email, password string) (uuid.UUID, error)
	SignIn(ctx context.Context, email, password string) (model.Viewer, error)
	SignOut(ctx context.Context) error
	// OnAuthStateChange registers fn and returns a function that unregisters it.
	OnAuthStateChange(fn func(AuthEvent)) (unsubscribe func())

	GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	UpdateProfile(ctx context.Context, p model.Profile) (*model.Profile, error)

	CreateSnap(ctx context.Context, f model.SnapFields) (*model.Snap, error)
	GetSnap(ctx context.Context, id uuid.UUID) (*model.Snap, error)
	UpdateSnap(ctx context.Context, id uuid.UUID, f model.SnapFields) error
	DeleteSnaps(ctx context.Context, ids []uuid.UUID) error
	ListSnaps(ctx context.Context, f model.SnapFilter) ([]model.Snap, error)
	SearchSnaps(ctx context.Context, term string) ([]model.Snap, error)
	ForkSnap(ctx context.Context, id uuid.UUID) (uuid.UUID, error)

	GetVote(ctx context.Context, snapID uuid.UUID) (model.Vote, error)
	CastVote(ctx context.Context, snapID uuid.UUID, v model.Vote) (int, error)
	ClearVote(ctx context.Context, snapID uuid.UUID) (int, error)
	IsSaved(ctx context.Context, snapID uuid.UUID) (bool, error)
	SaveSnap(ctx context.Context, snapID uuid.UUID) error
	UnsaveSnap(ctx context.Context, snapID uuid.UUID) error
	ListComments(ctx context.Context, snapID uuid.UUID) ([]model.Comment, error)
	AddComment(ctx context.Context, snapID uuid.UUID, content string) (*model.Comment, error)

	// UploadFile stores data in bucket at path and returns its public URL.
	UploadFile(ctx context.Context, bucket, path string, data []byte, upsert bool) (string, error)
	PublicURL(ctx context.Context, bucket, path string) (string, error)
}

// AuthEventKind tells sign-ins from sign-outs.
type AuthEventKind int

const (
	SignedIn AuthEventKind = iota + 1
	SignedOut
)

func (k AuthEventKind) String() string {
	if k == SignedIn {
		return "signed-in"
	}
	return "signed-out"
}

// AuthEvent is delivered to OnAuthStateChange subscribers.
type AuthEvent struct {
	Kind   AuthEventKind
	Viewer model.Viewer // zero on SignedOut
}
