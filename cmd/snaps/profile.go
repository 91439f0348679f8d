package main

import (
	"context"
	"fmt"
	"os"

	"github.com/camadaviva/snaps/internal/client/views"
	"github.com/camadaviva/snaps/internal/convert"
	"github.com/camadaviva/snaps/internal/errs"
	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"
)

func newProfileCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profile [USER_ID]",
		Short: "Show a profile and its public snaps (yours by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context) error {
				var id uuid.UUID
				if len(args) == 1 {
					var err error
					if id, err = convert.ParseID(args[0]); err != nil {
						return err
					}
				} else {
					v, ok := a.gw.Viewer()
					if !ok {
						return fmt.Errorf("no user id and no session: %w", errs.ErrAuthRequired)
					}
					id = v.ID
				}
				p := views.NewProfilePage(a.deps(cmd))
				defer p.Close()
				p.Open(ctx, id)
				d, err := await(ctx, p.Wait)
				if err != nil {
					return err
				}
				return emit(cmd.OutOrStdout(), a.opts.Output, profileOut{
					Profile: convert.ToAPIProfile(d.Profile),
					Snaps:   snapsOut(d.Snaps),
				})
			})
		},
	}
}

// AccountOptions holds the account update flags.
type AccountOptions struct {
	Username string
	Bio      string
	Website  string
	Avatar   string
}

func newAccountCommand(a *app) *cobra.Command {
	opts := &AccountOptions{}
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Show or update your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var avatar []byte
			if opts.Avatar != "" {
				b, err := os.ReadFile(opts.Avatar)
				if err != nil {
					return err
				}
				avatar = b
			}
			return a.run(cmd, func(ctx context.Context) error {
				acc := views.NewAccount(a.deps(cmd))
				defer acc.Close()
				if err := acc.Open(ctx); err != nil {
					return err
				}
				cur, err := await(ctx, acc.Wait)
				if err != nil {
					return err
				}
				set := cmd.Flags().Changed
				if !set("username") && !set("bio") && !set("website") && avatar == nil {
					return emit(cmd.OutOrStdout(), a.opts.Output, convert.ToAPIProfile(cur))
				}
				e := views.ProfileEdit{Username: cur.Username, Bio: cur.Bio, WebsiteURL: cur.WebsiteURL, Avatar: avatar}
				if set("username") {
					e.Username = opts.Username
				}
				if set("bio") {
					e.Bio = opts.Bio
				}
				if set("website") {
					e.WebsiteURL = opts.Website
				}
				p, err := acc.Update(ctx, e)
				if err != nil {
					return err
				}
				return emit(cmd.OutOrStdout(), a.opts.Output, convert.ToAPIProfile(*p))
			})
		},
	}
	cmd.Flags().StringVar(&opts.Username, "username", "", "new username")
	cmd.Flags().StringVar(&opts.Bio, "bio", "", "new bio")
	cmd.Flags().StringVar(&opts.Website, "website", "", "new website URL")
	cmd.Flags().StringVar(&opts.Avatar, "avatar", "", "image file to upload as avatar")
	return cmd
}
