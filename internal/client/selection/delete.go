package selection

import (
	"context"
	"fmt"

	"github.com/camadaviva/snaps/internal/client/notice"
	"github.com/camadaviva/snaps/internal/errs"
	"github.com/camadaviva/snaps/internal/model"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

// BatchRemote deletes a set of items in one call.
type BatchRemote interface {
	DeleteSnaps(ctx context.Context, ids []uuid.UUID) error
}

// ViewerSource reports the signed-in viewer.
type ViewerSource interface {
	Viewer() (model.Viewer, bool)
}

// Deleter applies batch deletions to a collection once the remote side confirms them.
type Deleter[T any] struct {
	Items   *Collection[T]
	Viewers ViewerSource
	Remote  BatchRemote
	Notify  notice.Notifier
	Log     *zap.Logger
}

// DeleteSelected deletes the selected items with a single remote call and
// returns how many were removed. Nothing is removed locally when the call
// fails. The selection is cleared whatever the outcome.
func (d *Deleter[T]) DeleteSelected(ctx context.Context) (int, error) {
	const action = "delete selected"
	defer d.Items.ClearSelection()

	if _, ok := d.Viewers.Viewer(); !ok {
		d.notifier().Notify(notice.NeedAuth(action))
		return 0, fmt.Errorf("%s: %w", action, errs.ErrAuthRequired)
	}
	ids := d.Items.Selected()
	if len(ids) == 0 {
		return 0, nil
	}
	if err := d.Remote.DeleteSnaps(ctx, ids); err != nil {
		d.logger().Warn("batch delete failed", zap.Int("count", len(ids)), zap.Error(err))
		d.notifier().Notify(notice.Notice{
			Kind:    notice.MutationFailed,
			Action:  action,
			Message: fmt.Sprintf("could not delete %d items: %v", len(ids), err),
			Err:     err,
		})
		return 0, fmt.Errorf("%s: %w", action, err)
	}
	d.Items.RemoveIDs(ids)
	return len(ids), nil
}

func (d *Deleter[T]) notifier() notice.Notifier {
	if d.Notify == nil {
		return notice.Discard
	}
	return d.Notify
}

func (d *Deleter[T]) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}
