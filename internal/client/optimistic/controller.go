// Package optimistic applies user mutations locally before the remote system
// confirms them, and undoes them when it does not.
package optimistic

import (
	"context"
	"fmt"

	"github.com/camadaviva/snaps/internal/client/notice"
	"github.com/camadaviva/snaps/internal/errs"
	"github.com/camadaviva/snaps/internal/model"
	"go.uber.org/zap"
)

// ViewerSource reports the signed-in viewer. gateway.Gateway satisfies it.
type ViewerSource interface {
	Viewer() (model.Viewer, bool)
}

// Policy decides what happens to an action started while another is outstanding.
type Policy int

const (
	// Reject fails the new action with errs.ErrBusy.
	Reject Policy = iota
	// Queue waits for the outstanding action, bounded by the caller's context.
	Queue
)

// Mutation is one optimistic change. Apply and Compensate run synchronously
// under the controller's guard; Remote is issued exactly once between them.
type Mutation struct {
	Apply      func()
	Compensate func()
	Remote     func(ctx context.Context) error
}

// Controller serializes the mutations of a single widget.
type Controller struct {
	viewers ViewerSource
	policy  Policy
	log     *zap.Logger
	notify  notice.Notifier
	slot    chan struct{}
}

type Option func(*Controller)

// WithPolicy sets what Run does while another action is outstanding.
func WithPolicy(p Policy) Option { return func(c *Controller) { c.policy = p } }

// WithLogger logs failed remote calls and rollbacks to l.
func WithLogger(l *zap.Logger) Option { return func(c *Controller) { c.log = l } }

// WithNotifier routes auth-required and failure notices to n.
func WithNotifier(n notice.Notifier) Option { return func(c *Controller) { c.notify = n } }

// New returns a controller with the Reject policy, a no-op logger and no notices.
func New(viewers ViewerSource, opts ...Option) *Controller {
	c := &Controller{
		viewers: viewers,
		log:     zap.NewNop(),
		notify:  notice.Discard,
		slot:    make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Run performs one optimistic mutation built for the current viewer.
//
// Without a viewer it emits an auth-required notice and returns
// errs.ErrAuthRequired before build is called. When the remote call fails
// the mutation is compensated, a mutation-failed notice is emitted and the
// error is returned wrapped with action.
func (c *Controller) Run(ctx context.Context, action string, build func(model.Viewer) Mutation) error {
	viewer, ok := c.viewers.Viewer()
	if !ok {
		c.notify.Notify(notice.NeedAuth(action))
		return fmt.Errorf("%s: %w", action, errs.ErrAuthRequired)
	}
	if err := c.acquire(ctx); err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	defer c.release()

	m := build(viewer)
	if m.Apply != nil {
		m.Apply()
	}
	err := m.Remote(ctx)
	if err == nil {
		return nil
	}
	if m.Compensate != nil {
		m.Compensate()
	}
	c.log.Warn("optimistic mutation rolled back",
		zap.String("action", action),
		zap.Stringer("viewer", viewer.ID),
		zap.Error(err),
	)
	c.notify.Notify(notice.Failed(action, err))
	return fmt.Errorf("%s: %w", action, err)
}

// Busy reports whether a mutation is outstanding.
func (c *Controller) Busy() bool { return len(c.slot) == 1 }

func (c *Controller) acquire(ctx context.Context) error {
	if c.policy == Reject {
		select {
		case c.slot <- struct{}{}:
			return nil
		default:
			return errs.ErrBusy
		}
	}
	select {
	case c.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) release() { <-c.slot }
