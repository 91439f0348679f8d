package views

import (
	"context"

	"github.com/camadaviva/snaps/internal/client/loader"
	"github.com/camadaviva/snaps/internal/model"
	"github.com/gofrs/uuid/v5"
)

// ProfileData is a user's profile with their public snaps.
type ProfileData struct {
	Profile model.Profile
	Snaps   []model.Snap
}

// ProfilePage shows any user's public face.
type ProfilePage struct {
	base
	load *loader.Loader[uuid.UUID, ProfileData]
}

// NewProfilePage returns an empty profile page.
func NewProfilePage(d Deps) *ProfilePage {
	p := &ProfilePage{base: newBase("profile", d)}
	p.load = loader.New(p.fetch, p.deps.Log)
	return p
}

func (p *ProfilePage) fetch(ctx context.Context, id uuid.UUID) (ProfileData, error) {
	gw := p.deps.Gateway
	prof, snaps, err := loader.Join2(ctx,
		func(ctx context.Context) (*model.Profile, error) { return gw.GetProfile(ctx, id) },
		func(ctx context.Context) ([]model.Snap, error) {
			return gw.ListSnaps(ctx, model.SnapFilter{OwnerID: id, PublicOnly: true})
		},
	)
	if err != nil {
		return ProfileData{}, err
	}
	return ProfileData{Profile: *prof, Snaps: snaps}, nil
}

// Open loads the profile of id. Opening the same id again does not refetch.
func (p *ProfilePage) Open(ctx context.Context, id uuid.UUID) {
	p.subscribe(nil)
	p.load.Load(ctx, id)
}

func (p *ProfilePage) Wait(ctx context.Context) (loader.Snapshot[ProfileData], error) {
	return p.load.Wait(ctx)
}

func (p *ProfilePage) State() loader.State { return p.load.Snapshot().State }

// IsSelf reports whether the page shows the signed-in viewer.
func (p *ProfilePage) IsSelf() bool {
	id, ok := p.load.Key()
	v, signedIn := p.deps.Gateway.Viewer()
	return ok && signedIn && v.ID == id
}

func (p *ProfilePage) Close() {
	p.unsubscribe()
	p.load.Close()
}
