// Package model defines domain entities used by services, repositories and client views.
package model

import (
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
)

// Tokens collects an issued access token and its expiry.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics and client caching)
}

// User represents an account stored on the server. Passwords are never stored in plaintext.
type User struct {
	ID        uuid.UUID // PK
	Email     string    // unique
	PwdHash   []byte    // Argon2id(password, Salt)
	Salt      []byte    // per-user salt
	CreatedAt time.Time
}

// Viewer is the identity of whoever is looking at a view.
type Viewer struct {
	ID    uuid.UUID
	Email string
}

// Profile is the public face of a user.
type Profile struct {
	ID         uuid.UUID // == users.id
	Username   string
	Bio        string
	AvatarURL  string
	WebsiteURL string
}

// Default status for freshly registered snaps.
const StatusPending = "aguardando"

// SnapFields are the user-editable descriptive fields of a snap.
type SnapFields struct {
	Title     string
	Context   string
	Mood      string
	Territory string
	Community string
	Timeframe string
	Origin    string
	Category  string
	SourceURL string
	Status    string
	Tags      []string
	MediaURL  string
	IsPublic  bool
}

// Snap is one shared media entry with its metadata and aggregate counters.
type Snap struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	CreatedAt  time.Time
	ForkedFrom uuid.NullUUID
	SnapFields

	Score        int
	CommentCount int
	SaveCount    int
	ForkCount    int
}

// Comment is a single remark on a snap.
type Comment struct {
	ID        uuid.UUID
	SnapID    uuid.UUID
	UserID    uuid.UUID
	Content   string
	CreatedAt time.Time
}

// Vote is the viewer's vote on a snap: none, up (+1) or down (-1).
type Vote int8

const (
	VoteNone Vote = 0
	VoteUp   Vote = 1
	VoteDown Vote = -1
)

// Valid reports whether v is one of the three known vote states.
func (v Vote) Valid() bool { return v == VoteNone || v == VoteUp || v == VoteDown }

func (v Vote) String() string {
	switch v {
	case VoteUp:
		return "up"
	case VoteDown:
		return "down"
	default:
		return "none"
	}
}

// SnapFilter narrows a snap listing. Zero values mean "no constraint".
type SnapFilter struct {
	OwnerID    uuid.UUID // snaps.user_id
	SavedBy    uuid.UUID // membership in saved_snaps for this user
	PublicOnly bool
	VisibleTo  uuid.UUID // public snaps plus the ones this user owns
}

// ParseTags splits a comma separated tag list, trimming blanks and dropping empties.
func ParseTags(s string) []string {
	out := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
