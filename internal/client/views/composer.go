package views

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/camadaviva/snaps/internal/client/notice"
	"github.com/camadaviva/snaps/internal/errs"
	"github.com/camadaviva/snaps/internal/model"
	"github.com/camadaviva/snaps/internal/storage"
	"github.com/gofrs/uuid/v5"
)

// Draft is the snap form as the user filled it in. Tags is the raw
// comma-separated input.
type Draft struct {
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
	Tags      string
	IsPublic  bool

	Media     []byte
	MediaName string
}

// Fields converts the draft into snap fields with tags split and the
// default status applied.
func (d Draft) Fields() model.SnapFields {
	status := strings.TrimSpace(d.Status)
	if status == "" {
		status = model.StatusPending
	}
	return model.SnapFields{
		Title:     strings.TrimSpace(d.Title),
		Context:   d.Context,
		Mood:      d.Mood,
		Territory: d.Territory,
		Community: d.Community,
		Timeframe: d.Timeframe,
		Origin:    d.Origin,
		Category:  d.Category,
		SourceURL: strings.TrimSpace(d.SourceURL),
		Status:    status,
		Tags:      model.ParseTags(d.Tags),
		IsPublic:  d.IsPublic,
	}
}

// DraftOf fills a draft from an existing snap, for the edit form.
func DraftOf(s model.Snap) Draft {
	return Draft{
		Title:     s.Title,
		Context:   s.Context,
		Mood:      s.Mood,
		Territory: s.Territory,
		Community: s.Community,
		Timeframe: s.Timeframe,
		Origin:    s.Origin,
		Category:  s.Category,
		SourceURL: s.SourceURL,
		Status:    s.Status,
		Tags:      strings.Join(s.Tags, ", "),
		IsPublic:  s.IsPublic,
	}
}

// MediaPath is where media uploaded by viewer at ms is stored.
func MediaPath(viewer uuid.UUID, ms int64, name string) string {
	return fmt.Sprintf("%s/%d-%s", viewer, ms, path.Base(name))
}

// Composer registers new snaps and edits existing ones.
type Composer struct {
	base
}

// NewComposer returns a composer for new and existing snaps.
func NewComposer(d Deps) *Composer {
	return &Composer{base: newBase("composer", d)}
}

// Open starts listening for sign-out; composing requires a viewer.
func (c *Composer) Open(context.Context) error {
	if _, ok := c.deps.Gateway.Viewer(); !ok {
		return errs.ErrAuthRequired
	}
	c.subscribe(nil)
	return nil
}

func (c *Composer) upload(ctx context.Context, viewer uuid.UUID, d Draft) (string, error) {
	name := d.MediaName
	if name == "" {
		name = "media"
	}
	return c.deps.Gateway.UploadFile(ctx, storage.MediaBucket, MediaPath(viewer, c.deps.Now().UnixMilli(), name), d.Media, false)
}

// Create uploads the draft's media and registers the snap. Media is required.
func (c *Composer) Create(ctx context.Context, d Draft) (*model.Snap, error) {
	const action = "register snap"
	v, err := c.requireViewer(action)
	if err != nil {
		return nil, err
	}
	if len(d.Media) == 0 {
		return nil, fmt.Errorf("%s: media file required: %w", action, errs.ErrInvalid)
	}
	f := d.Fields()
	if f.Title == "" {
		return nil, fmt.Errorf("%s: title required: %w", action, errs.ErrInvalid)
	}
	url, err := c.upload(ctx, v.ID, d)
	if err != nil {
		return nil, c.fail(action, err)
	}
	f.MediaURL = url
	s, err := c.deps.Gateway.CreateSnap(ctx, f)
	if err != nil {
		return nil, c.fail(action, err)
	}
	c.deps.Notify.Notify(notice.Notice{Kind: notice.Info, Action: action, Message: "snap registered"})
	return s, nil
}

// Edit loads a snap the viewer owns for editing.
func (c *Composer) Edit(ctx context.Context, id uuid.UUID) (*model.Snap, error) {
	v, err := c.requireViewer("edit snap")
	if err != nil {
		return nil, err
	}
	s, err := c.deps.Gateway.GetSnap(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.UserID != v.ID {
		return nil, fmt.Errorf("edit snap: %w", errs.ErrForbidden)
	}
	return s, nil
}

// Save writes the draft over snap s. The media is replaced only when the
// draft carries a new file.
func (c *Composer) Save(ctx context.Context, s model.Snap, d Draft) error {
	const action = "save snap"
	v, err := c.requireViewer(action)
	if err != nil {
		return err
	}
	if s.UserID != v.ID {
		return fmt.Errorf("%s: %w", action, errs.ErrForbidden)
	}
	f := d.Fields()
	if f.Title == "" {
		return fmt.Errorf("%s: title required: %w", action, errs.ErrInvalid)
	}
	f.MediaURL = s.MediaURL
	if len(d.Media) > 0 {
		if f.MediaURL, err = c.upload(ctx, v.ID, d); err != nil {
			return c.fail(action, err)
		}
	}
	if err := c.deps.Gateway.UpdateSnap(ctx, s.ID, f); err != nil {
		return c.fail(action, err)
	}
	c.deps.Notify.Notify(notice.Notice{Kind: notice.Info, Action: action, Message: "snap updated"})
	return nil
}

func (c *Composer) Close() { c.unsubscribe() }
