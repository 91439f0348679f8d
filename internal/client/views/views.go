// Package views composes the gateway, the loaders and the mutation
// controllers into the pages of the app. Views hold no rendering code; a
// front end reads their snapshots and calls their actions.
package views

import (
	"fmt"
	"sync"
	"time"

	"github.com/camadaviva/snaps/internal/client/gateway"
	"github.com/camadaviva/snaps/internal/client/notice"
	"github.com/camadaviva/snaps/internal/client/optimistic"
	"github.com/camadaviva/snaps/internal/errs"
	"github.com/camadaviva/snaps/internal/model"
	"go.uber.org/zap"
)

// Deps are the collaborators shared by every view.
type Deps struct {
	Gateway gateway.Gateway
	Notify  notice.Notifier
	Log     *zap.Logger
	Now     func() time.Time
	// Policy is applied to every optimistic widget the views create.
	Policy optimistic.Policy
}

func (d Deps) withDefaults() Deps {
	if d.Notify == nil {
		d.Notify = notice.Discard
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// base carries the auth-state subscription every view holds while open.
type base struct {
	deps Deps
	name string

	mu        sync.Mutex
	unsub     func()
	signedOut bool
}

func newBase(name string, d Deps) base {
	return base{deps: d.withDefaults(), name: name}
}

// subscribe starts listening for auth changes; onSignOut runs on sign-out.
// Calling it on an open view replaces the old subscription.
func (b *base) subscribe(onSignOut func()) {
	unsub := b.deps.Gateway.OnAuthStateChange(func(ev gateway.AuthEvent) {
		if ev.Kind != gateway.SignedOut {
			return
		}
		b.mu.Lock()
		b.signedOut = true
		b.mu.Unlock()
		b.deps.Log.Debug("view invalidated by sign-out", zap.String("view", b.name))
		if onSignOut != nil {
			onSignOut()
		}
	})
	b.mu.Lock()
	old := b.unsub
	b.unsub, b.signedOut = unsub, false
	b.mu.Unlock()
	if old != nil {
		old()
	}
}

func (b *base) unsubscribe() {
	b.mu.Lock()
	unsub := b.unsub
	b.unsub = nil
	b.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// SignedOut reports whether the viewer signed out while the view was open.
func (b *base) SignedOut() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.signedOut
}

// requireViewer returns the viewer or, after an auth-required notice, errs.ErrAuthRequired.
func (b *base) requireViewer(action string) (model.Viewer, error) {
	v, ok := b.deps.Gateway.Viewer()
	if !ok {
		b.deps.Notify.Notify(notice.NeedAuth(action))
		return model.Viewer{}, fmt.Errorf("%s: %w", action, errs.ErrAuthRequired)
	}
	return v, nil
}

// fail reports a failed action to the user and returns err wrapped.
func (b *base) fail(action string, err error) error {
	b.deps.Log.Warn("action failed", zap.String("view", b.name), zap.String("action", action), zap.Error(err))
	b.deps.Notify.Notify(notice.Failed(action, err))
	return fmt.Errorf("%s: %w", action, err)
}

func (b *base) controller() *optimistic.Controller {
	return optimistic.New(b.deps.Gateway,
		optimistic.WithPolicy(b.deps.Policy),
		optimistic.WithLogger(b.deps.Log.With(zap.String("view", b.name))),
		optimistic.WithNotifier(b.deps.Notify),
	)
}
