package views

import (
	"context"
	"sync"
	"time"

	"github.com/camadaviva/snaps/internal/client/gateway"
	"github.com/camadaviva/snaps/internal/errs"
	"github.com/camadaviva/snaps/internal/model"
	"github.com/gofrs/uuid/v5"
)

// fakeGateway is an in-memory backend. fail[method] forces an error.
type fakeGateway struct {
	mu       sync.Mutex
	bus      gateway.AuthBus
	viewer   *model.Viewer
	snaps    []model.Snap
	comments map[uuid.UUID][]model.Comment
	votes    map[uuid.UUID]model.Vote
	saved    map[uuid.UUID]bool
	profiles map[uuid.UUID]model.Profile
	uploads  []string
	calls    map[string]int
	fail     map[string]error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		comments: map[uuid.UUID][]model.Comment{},
		votes:    map[uuid.UUID]model.Vote{},
		saved:    map[uuid.UUID]bool{},
		profiles: map[uuid.UUID]model.Profile{},
		calls:    map[string]int{},
		fail:     map[string]error{},
	}
}

var _ gateway.Gateway = (*fakeGateway)(nil)

func (f *fakeGateway) signIn(id uuid.UUID) {
	f.mu.Lock()
	f.viewer = &model.Viewer{ID: id, Email: "ana@example.com"}
	v := *f.viewer
	f.mu.Unlock()
	f.bus.Publish(gateway.AuthEvent{Kind: gateway.SignedIn, Viewer: v})
}

func (f *fakeGateway) addSnap(owner uuid.UUID, title string, public bool) model.Snap {
	s := model.Snap{
		ID:         uuid.Must(uuid.NewV4()),
		UserID:     owner,
		CreatedAt:  time.Now(),
		SnapFields: model.SnapFields{Title: title, IsPublic: public, Tags: []string{}},
	}
	f.mu.Lock()
	f.snaps = append(f.snaps, s)
	f.mu.Unlock()
	return s
}

// hit counts a call and returns the forced error, if any.
func (f *fakeGateway) hit(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.fail[name]
}

func (f *fakeGateway) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeGateway) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeGateway) me() uuid.UUID {
	if f.viewer == nil {
		return uuid.Nil
	}
	return f.viewer.ID
}

func (f *fakeGateway) Viewer() (model.Viewer, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.viewer == nil {
		return model.Viewer{}, false
	}
	return *f.viewer, true
}

func (f *fakeGateway) SignUp(context.Context, string, string) (uuid.UUID, error) {
	return uuid.Must(uuid.NewV4()), f.hit("SignUp")
}

func (f *fakeGateway) SignIn(_ context.Context, email, _ string) (model.Viewer, error) {
	if err := f.hit("SignIn"); err != nil {
		return model.Viewer{}, err
	}
	f.signIn(uuid.Must(uuid.NewV4()))
	v, _ := f.Viewer()
	return v, nil
}

func (f *fakeGateway) SignOut(context.Context) error {
	f.mu.Lock()
	f.viewer = nil
	f.mu.Unlock()
	f.bus.Publish(gateway.AuthEvent{Kind: gateway.SignedOut})
	return nil
}

func (f *fakeGateway) OnAuthStateChange(fn func(gateway.AuthEvent)) func() { return f.bus.Subscribe(fn) }

func (f *fakeGateway) GetProfile(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	if err := f.hit("GetProfile"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &p, nil
}

func (f *fakeGateway) UpdateProfile(_ context.Context, p model.Profile) (*model.Profile, error) {
	if err := f.hit("UpdateProfile"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = f.me()
	f.profiles[p.ID] = p
	return &p, nil
}

func (f *fakeGateway) CreateSnap(_ context.Context, fl model.SnapFields) (*model.Snap, error) {
	if err := f.hit("CreateSnap"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s := model.Snap{ID: uuid.Must(uuid.NewV4()), UserID: f.me(), CreatedAt: time.Now(), SnapFields: fl}
	f.snaps = append(f.snaps, s)
	return &s, nil
}

func (f *fakeGateway) GetSnap(_ context.Context, id uuid.UUID) (*model.Snap, error) {
	if err := f.hit("GetSnap"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.snaps {
		if s.ID == id && (s.IsPublic || s.UserID == f.me()) {
			return &s, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeGateway) UpdateSnap(_ context.Context, id uuid.UUID, fl model.SnapFields) error {
	if err := f.hit("UpdateSnap"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.snaps {
		if f.snaps[i].ID == id && f.snaps[i].UserID == f.me() {
			f.snaps[i].SnapFields = fl
			return nil
		}
	}
	return errs.ErrNotFound
}

func (f *fakeGateway) DeleteSnaps(_ context.Context, ids []uuid.UUID) error {
	if err := f.hit("DeleteSnaps"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	owned := map[uuid.UUID]bool{}
	for _, s := range f.snaps {
		if s.UserID == f.me() {
			owned[s.ID] = true
		}
	}
	// all or nothing, like the repository
	drop := map[uuid.UUID]bool{}
	for _, id := range ids {
		if !owned[id] {
			return errs.ErrNotFound
		}
		drop[id] = true
	}
	kept := f.snaps[:0]
	for _, s := range f.snaps {
		if !drop[s.ID] {
			kept = append(kept, s)
		}
	}
	f.snaps = kept
	return nil
}

func (f *fakeGateway) ListSnaps(_ context.Context, fl model.SnapFilter) ([]model.Snap, error) {
	if err := f.hit("ListSnaps"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Snap{}
	for _, s := range f.snaps {
		switch {
		case fl.SavedBy != uuid.Nil && !f.saved[s.ID]:
		case fl.SavedBy != uuid.Nil && !s.IsPublic && s.UserID != f.me():
		case fl.OwnerID != uuid.Nil && s.UserID != fl.OwnerID:
		case fl.PublicOnly && !s.IsPublic:
		default:
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeGateway) SearchSnaps(_ context.Context, term string) ([]model.Snap, error) {
	if err := f.hit("SearchSnaps"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Snap{}
	for _, s := range f.snaps {
		if s.IsPublic && (term == "" || s.Title == term) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeGateway) ForkSnap(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	if err := f.hit("ForkSnap"); err != nil {
		return uuid.Nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.snaps {
		if s.ID == id {
			c := s
			c.ID, c.UserID, c.IsPublic = uuid.Must(uuid.NewV4()), f.me(), false
			c.ForkedFrom = uuid.NullUUID{UUID: id, Valid: true}
			f.snaps = append(f.snaps, c)
			return c.ID, nil
		}
	}
	return uuid.Nil, errs.ErrNotFound
}

func (f *fakeGateway) GetVote(_ context.Context, id uuid.UUID) (model.Vote, error) {
	if err := f.hit("GetVote"); err != nil {
		return model.VoteNone, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.votes[id], nil
}

func (f *fakeGateway) scoreLocked(id uuid.UUID, delta int) int {
	for i := range f.snaps {
		if f.snaps[i].ID == id {
			f.snaps[i].Score += delta
			return f.snaps[i].Score
		}
	}
	return 0
}

func (f *fakeGateway) CastVote(_ context.Context, id uuid.UUID, v model.Vote) (int, error) {
	if err := f.hit("CastVote"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	prev := f.votes[id]
	f.votes[id] = v
	return f.scoreLocked(id, int(v)-int(prev)), nil
}

func (f *fakeGateway) ClearVote(_ context.Context, id uuid.UUID) (int, error) {
	if err := f.hit("ClearVote"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	prev := f.votes[id]
	delete(f.votes, id)
	return f.scoreLocked(id, -int(prev)), nil
}

func (f *fakeGateway) IsSaved(_ context.Context, id uuid.UUID) (bool, error) {
	if err := f.hit("IsSaved"); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved[id], nil
}

func (f *fakeGateway) SaveSnap(_ context.Context, id uuid.UUID) error {
	if err := f.hit("SaveSnap"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[id] = true
	return nil
}

func (f *fakeGateway) UnsaveSnap(_ context.Context, id uuid.UUID) error {
	if err := f.hit("UnsaveSnap"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.saved, id)
	return nil
}

func (f *fakeGateway) ListComments(_ context.Context, id uuid.UUID) ([]model.Comment, error) {
	if err := f.hit("ListComments"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Comment{}, f.comments[id]...), nil
}

func (f *fakeGateway) AddComment(_ context.Context, id uuid.UUID, content string) (*model.Comment, error) {
	if err := f.hit("AddComment"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c := model.Comment{ID: uuid.Must(uuid.NewV4()), SnapID: id, UserID: f.me(), Content: content, CreatedAt: time.Now()}
	f.comments[id] = append(f.comments[id], c)
	return &c, nil
}

func (f *fakeGateway) UploadFile(_ context.Context, bucket, p string, _ []byte, _ bool) (string, error) {
	if err := f.hit("UploadFile"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, bucket+"/"+p)
	return "https://cdn.test/" + bucket + "/" + p, nil
}

func (f *fakeGateway) PublicURL(_ context.Context, bucket, p string) (string, error) {
	return "https://cdn.test/" + bucket + "/" + p, f.hit("PublicURL")
}
