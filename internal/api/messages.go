package api

import "time"

// Empty is used by methods without a meaningful request or response body.
type Empty struct{}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpResponse struct {
	UserID string `json:"user_id"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
}

type Viewer struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// IDRequest addresses a single entity (user, snap) by ID.
type IDRequest struct {
	ID string `json:"id"`
}

type IDResponse struct {
	ID string `json:"id"`
}

type Profile struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Bio        string `json:"bio,omitempty"`
	AvatarURL  string `json:"avatar_url,omitempty"`
	WebsiteURL string `json:"website_url,omitempty"`
}

type SnapFields struct {
	Title     string   `json:"title"`
	Context   string   `json:"context,omitempty"`
	Mood      string   `json:"mood,omitempty"`
	Territory string   `json:"territory,omitempty"`
	Community string   `json:"community,omitempty"`
	Timeframe string   `json:"timeframe,omitempty"`
	Origin    string   `json:"origin,omitempty"`
	Category  string   `json:"category,omitempty"`
	SourceURL string   `json:"source_url,omitempty"`
	Status    string   `json:"status,omitempty"`
	Tags      []string `json:"tags"`
	MediaURL  string   `json:"media_url,omitempty"`
	IsPublic  bool     `json:"is_public"`
}

type Snap struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
	ForkedFrom string    `json:"forked_from,omitempty"`
	SnapFields

	Score        int `json:"score"`
	CommentCount int `json:"comment_count"`
	SaveCount    int `json:"save_count"`
	ForkCount    int `json:"fork_count"`
}

type SnapList struct {
	Snaps []Snap `json:"snaps"`
}

type UpdateSnapRequest struct {
	ID     string     `json:"id"`
	Fields SnapFields `json:"fields"`
}

type DeleteSnapsRequest struct {
	IDs []string `json:"ids"`
}

type ListSnapsRequest struct {
	OwnerID    string `json:"owner_id,omitempty"`
	SavedBy    string `json:"saved_by,omitempty"`
	PublicOnly bool   `json:"public_only,omitempty"`
}

type SearchRequest struct {
	Term string `json:"term"`
}

type CastVoteRequest struct {
	SnapID string `json:"snap_id"`
	Vote   int8   `json:"vote"`
}

// VoteResponse carries the viewer's vote and, after a mutation, the snap's new score.
type VoteResponse struct {
	Vote  int8 `json:"vote"`
	Score int  `json:"score"`
}

type SavedResponse struct {
	Saved bool `json:"saved"`
}

type Comment struct {
	ID        string    `json:"id"`
	SnapID    string    `json:"snap_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentList struct {
	Comments []Comment `json:"comments"`
}

type AddCommentRequest struct {
	SnapID  string `json:"snap_id"`
	Content string `json:"content"`
}

type UploadRequest struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path"`
	Data   []byte `json:"data"`
	Upsert bool   `json:"upsert,omitempty"`
}

type PublicURLRequest struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path"`
}

type URLResponse struct {
	URL string `json:"url"`
}
