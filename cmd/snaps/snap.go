package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/camadaviva/snaps/internal/client/views"
	"github.com/camadaviva/snaps/internal/convert"
	"github.com/camadaviva/snaps/internal/errs"
	"github.com/camadaviva/snaps/internal/model"
	"github.com/spf13/cobra"
)

func newSnapCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snap",
		Short: "Show, register and act on a single snap",
	}
	cmd.AddCommand(
		newSnapShowCommand(a),
		newSnapVoteCommand(a),
		newSnapSaveCommand(a),
		newSnapCommentCommand(a),
		newSnapRemixCommand(a),
		newSnapDeleteCommand(a),
		newSnapCreateCommand(a),
		newSnapEditCommand(a),
	)
	return cmd
}

// withDetail opens the snap page for args[0], waits for it and runs fn.
func withDetail(a *app, cmd *cobra.Command, args []string, fn func(ctx context.Context, v *views.SnapDetail, d views.Detail) error) error {
	id, err := convert.ParseID(args[0])
	if err != nil {
		return err
	}
	return a.run(cmd, func(ctx context.Context) error {
		v := views.NewSnapDetail(a.deps(cmd))
		defer v.Close()
		v.Open(ctx, id)
		d, err := await(ctx, v.Wait)
		if err != nil {
			return err
		}
		return fn(ctx, v, d)
	})
}

func newSnapShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a snap with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDetail(a, cmd, args, func(_ context.Context, v *views.SnapDetail, d views.Detail) error {
				return emit(cmd.OutOrStdout(), a.opts.Output, detailOut{
					Snap:     convert.ToAPISnap(d.Snap),
					Comments: convert.ToAPICommentList(d.Comments).Comments,
					Vote:     d.Vote.String(),
					Saved:    d.Saved,
					Owner:    v.IsOwner(),
				})
			})
		},
	}
}

func parseVote(s string) (model.Vote, error) {
	switch strings.ToLower(s) {
	case "up", "+1", "+":
		return model.VoteUp, nil
	case "down", "-1", "-":
		return model.VoteDown, nil
	default:
		return model.VoteNone, fmt.Errorf("vote %q: want up or down: %w", s, errs.ErrInvalid)
	}
}

func newSnapVoteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "vote ID up|down",
		Short: "Vote on a snap; repeating your vote clears it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			want, err := parseVote(args[1])
			if err != nil {
				return err
			}
			return withDetail(a, cmd, args, func(ctx context.Context, v *views.SnapDetail, _ views.Detail) error {
				if err := v.Voter().Vote(ctx, want); err != nil {
					return err
				}
				st := v.Voter().State()
				return emit(cmd.OutOrStdout(), a.opts.Output, voteOut{SnapID: st.SnapID.String(), Vote: st.Vote.String(), Score: st.Score})
			})
		},
	}
}

func newSnapSaveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "save ID",
		Short: "Save a snap, or unsave it if already saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDetail(a, cmd, args, func(ctx context.Context, v *views.SnapDetail, d views.Detail) error {
				if err := v.Saver().Toggle(ctx); err != nil {
					return err
				}
				return emit(cmd.OutOrStdout(), a.opts.Output, map[string]any{"snap_id": d.Snap.ID.String(), "saved": v.Saver().Saved()})
			})
		},
	}
}

func newSnapCommentCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "comment ID TEXT...",
		Short: "Comment on a snap",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDetail(a, cmd, args, func(ctx context.Context, v *views.SnapDetail, _ views.Detail) error {
				c, err := v.Comment(ctx, strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				return emit(cmd.OutOrStdout(), a.opts.Output, convert.ToAPIComment(*c))
			})
		},
	}
}

func newSnapRemixCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remix ID",
		Short: "Copy a snap into your gallery as a private draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDetail(a, cmd, args, func(ctx context.Context, v *views.SnapDetail, _ views.Detail) error {
				id, err := v.Remix(ctx)
				if err != nil {
					return err
				}
				return emit(cmd.OutOrStdout(), a.opts.Output, map[string]string{"id": id.String()})
			})
		},
	}
}

func newSnapDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete one of your snaps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDetail(a, cmd, args, func(ctx context.Context, v *views.SnapDetail, _ views.Detail) error {
				if err := v.Delete(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "deleted")
				return nil
			})
		},
	}
}

// SnapFormOptions are the snap form fields plus the media file.
type SnapFormOptions struct {
	Draft views.Draft
	Media string
}

func (o *SnapFormOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.Draft.Title, "title", "", "title")
	f.StringVar(&o.Draft.Context, "context", "", "context")
	f.StringVar(&o.Draft.Mood, "mood", "", "mood")
	f.StringVar(&o.Draft.Territory, "territory", "", "territory")
	f.StringVar(&o.Draft.Community, "community", "", "community")
	f.StringVar(&o.Draft.Timeframe, "timeframe", "", "timeframe")
	f.StringVar(&o.Draft.Origin, "origin", "", "origin")
	f.StringVar(&o.Draft.Category, "category", "", "category")
	f.StringVar(&o.Draft.SourceURL, "source-url", "", "source URL")
	f.StringVar(&o.Draft.Status, "status", "", "status (default "+model.StatusPending+")")
	f.StringVar(&o.Draft.Tags, "tags", "", "comma-separated tags")
	f.BoolVar(&o.Draft.IsPublic, "public", false, "show in Camada Viva")
	f.StringVar(&o.Media, "media", "", "media file to upload")
}

func (o *SnapFormOptions) readMedia() error {
	if o.Media == "" {
		return nil
	}
	b, err := os.ReadFile(o.Media)
	if err != nil {
		return err
	}
	o.Draft.Media, o.Draft.MediaName = b, filepath.Base(o.Media)
	return nil
}

func newSnapCreateCommand(a *app) *cobra.Command {
	opts := &SnapFormOptions{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new snap",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.readMedia(); err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context) error {
				c := views.NewComposer(a.deps(cmd))
				defer c.Close()
				if err := c.Open(ctx); err != nil {
					return err
				}
				s, err := c.Create(ctx, opts.Draft)
				if err != nil {
					return err
				}
				return emit(cmd.OutOrStdout(), a.opts.Output, convert.ToAPISnap(*s))
			})
		},
	}
	opts.bind(cmd)
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("media")
	return cmd
}

func newSnapEditCommand(a *app) *cobra.Command {
	opts := &SnapFormOptions{}
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit one of your snaps; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := convert.ParseID(args[0])
			if err != nil {
				return err
			}
			if err := opts.readMedia(); err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context) error {
				c := views.NewComposer(a.deps(cmd))
				defer c.Close()
				if err := c.Open(ctx); err != nil {
					return err
				}
				s, err := c.Edit(ctx, id)
				if err != nil {
					return err
				}
				d := mergeDraft(views.DraftOf(*s), opts.Draft, cmd)
				d.Media, d.MediaName = opts.Draft.Media, opts.Draft.MediaName
				if err := c.Save(ctx, *s, d); err != nil {
					return err
				}
				return emit(cmd.OutOrStdout(), a.opts.Output, map[string]string{"id": id.String()})
			})
		},
	}
	opts.bind(cmd)
	return cmd
}

// mergeDraft overlays the flags the user actually set onto cur.
func mergeDraft(cur, in views.Draft, cmd *cobra.Command) views.Draft {
	set := cmd.Flags().Changed
	pick := func(flag string, dst *string, v string) {
		if set(flag) {
			*dst = v
		}
	}
	pick("title", &cur.Title, in.Title)
	pick("context", &cur.Context, in.Context)
	pick("mood", &cur.Mood, in.Mood)
	pick("territory", &cur.Territory, in.Territory)
	pick("community", &cur.Community, in.Community)
	pick("timeframe", &cur.Timeframe, in.Timeframe)
	pick("origin", &cur.Origin, in.Origin)
	pick("category", &cur.Category, in.Category)
	pick("source-url", &cur.SourceURL, in.SourceURL)
	pick("status", &cur.Status, in.Status)
	pick("tags", &cur.Tags, in.Tags)
	if set("public") {
		cur.IsPublic = in.IsPublic
	}
	return cur
}
