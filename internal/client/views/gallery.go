package views

import (
	"context"
	"fmt"

	"github.com/camadaviva/snaps/internal/client/loader"
	"github.com/camadaviva/snaps/internal/client/selection"
	"github.com/camadaviva/snaps/internal/errs"
	"github.com/camadaviva/snaps/internal/model"
	"github.com/gofrs/uuid/v5"
)

// Gallery modes.
const (
	ModeMine  = "mine"
	ModeSaved = "saved"
)

type galleryKey struct {
	viewer uuid.UUID
	mode   string
}

// Gallery is the viewer's personal gallery: their own snaps or the ones they
// saved, with selection and batch delete.
type Gallery struct {
	base
	items *selection.Collection[model.Snap]
	del   *selection.Deleter[model.Snap]
	load  *loader.Loader[galleryKey, []model.Snap]
}

func snapID(s model.Snap) uuid.UUID { return s.ID }

// NewGallery returns a closed gallery in ModeMine. Call Open to load it.
func NewGallery(d Deps) *Gallery {
	g := &Gallery{base: newBase("gallery", d)}
	g.items = selection.NewCollection(snapID)
	g.items.SetMode(ModeMine)
	g.del = &selection.Deleter[model.Snap]{
		Items:   g.items,
		Viewers: g.deps.Gateway,
		Remote:  g.deps.Gateway,
		Notify:  g.deps.Notify,
		Log:     g.deps.Log,
	}
	g.load = loader.New(g.fetch, g.deps.Log)
	g.load.OnChange(func(s loader.Snapshot[[]model.Snap]) {
		if s.State == loader.Ready {
			g.items.Load(s.Data)
		}
	})
	return g
}

func (g *Gallery) fetch(ctx context.Context, k galleryKey) ([]model.Snap, error) {
	f := model.SnapFilter{OwnerID: k.viewer}
	if k.mode == ModeSaved {
		f = model.SnapFilter{SavedBy: k.viewer}
	}
	return g.deps.Gateway.ListSnaps(ctx, f)
}

// Open loads the current mode. Without a viewer the view redirects.
func (g *Gallery) Open(ctx context.Context) error {
	v, ok := g.deps.Gateway.Viewer()
	if !ok {
		return errs.ErrAuthRequired
	}
	g.subscribe(func() {
		g.load.Reset()
		g.items.Load(nil)
	})
	g.load.Load(ctx, galleryKey{viewer: v.ID, mode: g.items.Mode()})
	return nil
}

// SetMode switches between ModeMine and ModeSaved. The selection is cleared
// even if the mode is unchanged.
func (g *Gallery) SetMode(ctx context.Context, mode string) error {
	if mode != ModeMine && mode != ModeSaved {
		return fmt.Errorf("gallery mode %q: %w", mode, errs.ErrInvalid)
	}
	g.items.SetMode(mode)
	v, ok := g.deps.Gateway.Viewer()
	if !ok {
		return errs.ErrAuthRequired
	}
	g.load.Load(ctx, galleryKey{viewer: v.ID, mode: mode})
	return nil
}

// Refresh reloads the current mode.
func (g *Gallery) Refresh(ctx context.Context) { g.load.Refresh(ctx) }

func (g *Gallery) Wait(ctx context.Context) (loader.Snapshot[[]model.Snap], error) {
	return g.load.Wait(ctx)
}

// State is the load state, or loader.Redirect once the viewer signed out.
func (g *Gallery) State() loader.State {
	if g.SignedOut() {
		return loader.Redirect
	}
	return g.load.Snapshot().State
}

func (g *Gallery) Mode() string { return g.items.Mode() }
func (g *Gallery) Items() []model.Snap { return g.items.Items() }
// Toggle flips the selection of a loaded snap and reports whether it is now selected.
func (g *Gallery) Toggle(id uuid.UUID) bool { return g.items.Toggle(id) }
func (g *Gallery) Selected() []uuid.UUID { return g.items.Selected() }
func (g *Gallery) Select(ids ...uuid.UUID) { g.items.Select(ids...) }
func (g *Gallery) IsSelected(id uuid.UUID) bool { return g.items.IsSelected(id) }

// DeleteSelected deletes the selected snaps in one batch. Only the viewer's
// own snaps can be deleted: in ModeSaved it fails with errs.ErrInvalid and
// makes no remote call.
func (g *Gallery) DeleteSelected(ctx context.Context) (int, error) {
	if mode := g.items.Mode(); mode != ModeMine {
		return 0, fmt.Errorf("delete in %s mode: %w", mode, errs.ErrInvalid)
	}
	return g.del.DeleteSelected(ctx)
}

func (g *Gallery) Close() {
	g.unsubscribe()
	g.load.Close()
}
