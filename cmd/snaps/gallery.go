package main

import (
	"context"
	"fmt"

	"github.com/camadaviva/snaps/internal/client/views"
	"github.com/camadaviva/snaps/internal/convert"
	"github.com/camadaviva/snaps/internal/errs"
	"github.com/spf13/cobra"
)

// GalleryOptions holds options for the gallery commands.
type GalleryOptions struct {
	Mode string
}

func newGalleryCommand(a *app) *cobra.Command {
	opts := &GalleryOptions{}
	cmd := &cobra.Command{
		Use:   "gallery",
		Short: "List your snaps or the snaps you saved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context) error {
				g, err := openGallery(ctx, a, cmd, opts.Mode)
				if err != nil {
					return err
				}
				defer g.Close()
				return emit(cmd.OutOrStdout(), a.opts.Output, snapsOut(g.Items()))
			})
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.Mode, "mode", "m", views.ModeMine, "mine or saved")
	cmd.AddCommand(newGalleryDeleteCommand(a, opts))
	return cmd
}

func openGallery(ctx context.Context, a *app, cmd *cobra.Command, mode string) (*views.Gallery, error) {
	g := views.NewGallery(a.deps(cmd))
	if err := g.Open(ctx); err != nil {
		g.Close()
		return nil, err
	}
	if mode != views.ModeMine {
		if err := g.SetMode(ctx, mode); err != nil {
			g.Close()
			return nil, err
		}
	}
	if _, err := await(ctx, g.Wait); err != nil {
		g.Close()
		return nil, err
	}
	return g, nil
}

func newGalleryDeleteCommand(a *app, opts *GalleryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete several snaps from the gallery at once",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := convert.ParseIDs(args)
			if err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context) error {
				g, err := openGallery(ctx, a, cmd, opts.Mode)
				if err != nil {
					return err
				}
				defer g.Close()
				g.Select(ids...)
				if n := len(g.Selected()); n != len(ids) {
					return fmt.Errorf("%d of %d ids are not in the %s gallery: %w", len(ids)-n, len(ids), g.Mode(), errs.ErrNotFound)
				}
				n, err := g.DeleteSelected(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "deleted %d snaps\n", n)
				return emit(cmd.OutOrStdout(), a.opts.Output, snapsOut(g.Items()))
			})
		},
	}
}

func newFeedCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "feed [TERM]",
		Short: "Search Camada Viva, the public feed",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context) error {
				f := views.NewFeed(a.deps(cmd))
				defer f.Close()
				if err := f.Open(ctx); err != nil {
					return err
				}
				if len(args) == 1 {
					f.Search(ctx, args[0])
				}
				snaps, err := await(ctx, f.Wait)
				if err != nil {
					return err
				}
				return emit(cmd.OutOrStdout(), a.opts.Output, snapsOut(snaps))
			})
		},
	}
}
