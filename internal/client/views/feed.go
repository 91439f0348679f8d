package views

import (
	"context"
	"strings"

	"github.com/camadaviva/snaps/internal/client/loader"
	"github.com/camadaviva/snaps/internal/errs"
	"github.com/camadaviva/snaps/internal/model"
)

// Feed is Camada Viva: full-text search over everyone's public snaps.
// Only signed-in viewers may browse it.
type Feed struct {
	base
	load *loader.Loader[string, []model.Snap]
}

// NewFeed returns an unopened feed.
func NewFeed(d Deps) *Feed {
	f := &Feed{base: newBase("feed", d)}
	f.load = loader.New(func(ctx context.Context, term string) ([]model.Snap, error) {
		return f.deps.Gateway.SearchSnaps(ctx, term)
	}, f.deps.Log)
	return f
}

// Open runs the empty search, which lists every public snap.
func (f *Feed) Open(ctx context.Context) error {
	if _, ok := f.deps.Gateway.Viewer(); !ok {
		return errs.ErrAuthRequired
	}
	f.subscribe(f.load.Reset)
	f.load.Load(ctx, "")
	return nil
}

// Search changes the term. Repeating the current term does not refetch.
func (f *Feed) Search(ctx context.Context, term string) bool {
	return f.load.Load(ctx, strings.TrimSpace(term))
}

// Term is the term of the current results.
func (f *Feed) Term() string {
	t, _ := f.load.Key()
	return t
}

func (f *Feed) Wait(ctx context.Context) (loader.Snapshot[[]model.Snap], error) {
	return f.load.Wait(ctx)
}

func (f *Feed) State() loader.State {
	if f.SignedOut() {
		return loader.Redirect
	}
	return f.load.Snapshot().State
}

func (f *Feed) Close() {
	f.unsubscribe()
	f.load.Close()
}
