package views

import (
	"context"
	"fmt"

	"github.com/camadaviva/snaps/internal/client/loader"
	"github.com/camadaviva/snaps/internal/client/notice"
	"github.com/camadaviva/snaps/internal/errs"
	"github.com/camadaviva/snaps/internal/model"
	"github.com/camadaviva/snaps/internal/storage"
	"github.com/gofrs/uuid/v5"
)

// ProfileEdit is the account form. A non-empty Avatar replaces the current image.
type ProfileEdit struct {
	Username   string
	Bio        string
	WebsiteURL string
	Avatar     []byte
}

// Account is the signed-in viewer's own profile editor.
type Account struct {
	base
	load *loader.Loader[uuid.UUID, model.Profile]
}

// NewAccount returns an unopened account editor.
func NewAccount(d Deps) *Account {
	a := &Account{base: newBase("account", d)}
	a.load = loader.New(func(ctx context.Context, id uuid.UUID) (model.Profile, error) {
		p, err := a.deps.Gateway.GetProfile(ctx, id)
		if err != nil {
			return model.Profile{}, err
		}
		return *p, nil
	}, a.deps.Log)
	return a
}

// Open loads the viewer's profile; without a viewer it redirects.
func (a *Account) Open(ctx context.Context) error {
	v, ok := a.deps.Gateway.Viewer()
	if !ok {
		return errs.ErrAuthRequired
	}
	a.subscribe(a.load.Reset)
	a.load.Load(ctx, v.ID)
	return nil
}

func (a *Account) Wait(ctx context.Context) (loader.Snapshot[model.Profile], error) {
	return a.load.Wait(ctx)
}

func (a *Account) State() loader.State {
	if a.SignedOut() {
		return loader.Redirect
	}
	return a.load.Snapshot().State
}

// current returns the profile of id from the loader once it has settled,
// otherwise straight from the gateway.
func (a *Account) current(ctx context.Context, id uuid.UUID) (model.Profile, error) {
	if key, ok := a.load.Key(); ok && key == id {
		if s := a.load.Snapshot(); s.State == loader.Ready {
			return s.Data, nil
		}
	}
	p, err := a.deps.Gateway.GetProfile(ctx, id)
	if err != nil {
		return model.Profile{}, err
	}
	return *p, nil
}

// AvatarPath is where a viewer's avatar uploaded at ms is stored.
func AvatarPath(viewer uuid.UUID, ms int64) string {
	return fmt.Sprintf("%s/avatar-%d", viewer, ms)
}

// Update uploads the new avatar, if any, then saves the profile.
func (a *Account) Update(ctx context.Context, e ProfileEdit) (*model.Profile, error) {
	const action = "update profile"
	v, err := a.requireViewer(action)
	if err != nil {
		return nil, err
	}
	p := model.Profile{ID: v.ID, Username: e.Username, Bio: e.Bio, WebsiteURL: e.WebsiteURL}
	if len(e.Avatar) == 0 {
		cur, err := a.current(ctx, v.ID)
		if err != nil {
			return nil, a.fail(action, err)
		}
		p.AvatarURL = cur.AvatarURL
	} else {
		url, err := a.deps.Gateway.UploadFile(ctx, storage.AvatarBucket, AvatarPath(v.ID, a.deps.Now().UnixMilli()), e.Avatar, true)
		if err != nil {
			return nil, a.fail(action, err)
		}
		p.AvatarURL = url
	}
	out, err := a.deps.Gateway.UpdateProfile(ctx, p)
	if err != nil {
		return nil, a.fail(action, err)
	}
	a.deps.Notify.Notify(notice.Notice{Kind: notice.Info, Action: action, Message: "profile updated"})
	a.load.Refresh(context.WithoutCancel(ctx))
	return out, nil
}

func (a *Account) Close() {
	a.unsubscribe()
	a.load.Close()
}
