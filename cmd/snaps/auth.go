package main

import (
	"context"
	"fmt"

	"github.com/camadaviva/snaps/internal/errs"
	"github.com/spf13/cobra"
)

// CredentialsOptions holds the sign-up and sign-in flags.
type CredentialsOptions struct {
	Email    string
	Password string
}

func (o *CredentialsOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.Email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&o.Password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
}

func newSignUpCommand(a *app) *cobra.Command {
	opts := &CredentialsOptions{}
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context) error {
				id, err := a.gw.SignUp(ctx, opts.Email, opts.Password)
				if err != nil {
					return err
				}
				return emit(cmd.OutOrStdout(), a.opts.Output, map[string]string{"user_id": id.String()})
			})
		},
	}
	opts.bind(cmd)
	return cmd
}

func newSignInCommand(a *app) *cobra.Command {
	opts := &CredentialsOptions{}
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context) error {
				v, err := a.gw.SignIn(ctx, opts.Email, opts.Password)
				if err != nil {
					return err
				}
				return emit(cmd.OutOrStdout(), a.opts.Output, toViewerOut(v))
			})
		},
	}
	opts.bind(cmd)
	return cmd
}

func newSignOutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context) error {
				if err := a.gw.SignOut(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "signed out")
				return nil
			})
		},
	}
}

func newWhoAmICommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in viewer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(context.Context) error {
				v, ok := a.gw.Viewer()
				if !ok {
					return fmt.Errorf("no session: %w", errs.ErrAuthRequired)
				}
				return emit(cmd.OutOrStdout(), a.opts.Output, toViewerOut(v))
			})
		},
	}
}
