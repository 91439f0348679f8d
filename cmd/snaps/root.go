package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/camadaviva/snaps/internal/client/gateway"
	"github.com/camadaviva/snaps/internal/client/loader"
	"github.com/camadaviva/snaps/internal/client/notice"
	"github.com/camadaviva/snaps/internal/client/optimistic"
	"github.com/camadaviva/snaps/internal/client/views"
	"github.com/camadaviva/snaps/internal/errs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// GlobalOptions are the persistent flags shared by every command.
type GlobalOptions struct {
	Addr       string
	CACert     string
	Insecure   bool
	Plaintext  bool
	TokenFile  string
	Output     string
	Timeout    time.Duration
	MaxMessage int
	Verbose    bool
}

// connectFunc opens a gateway for the given options.
type connectFunc func(o *GlobalOptions, log *zap.Logger) (gateway.Gateway, io.Closer, error)

func dialRemote(o *GlobalOptions, log *zap.Logger) (gateway.Gateway, io.Closer, error) {
	cc, err := gateway.Dial(o.Addr, gateway.DialOptions{
		CAPath:       o.CACert,
		SkipTLS:      o.Plaintext,
		SkipVerify:   o.Insecure,
		MaxMessageMB: o.MaxMessage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", o.Addr, err)
	}
	store := gateway.DefaultFileStore()
	if o.TokenFile != "" {
		store = gateway.FileStore{Path: o.TokenFile}
	}
	r, err := gateway.NewRemote(cc, store, gateway.WithLogger(log))
	if err != nil {
		_ = cc.Close()
		return nil, nil, err
	}
	return r, cc, nil
}

// app is what a running command needs: the gateway and the view dependencies.
type app struct {
	opts    *GlobalOptions
	connect connectFunc
	gw      gateway.Gateway
	log     *zap.Logger
}

// run connects, calls fn with a deadline-bound context and always closes the connection.
func (a *app) run(cmd *cobra.Command, fn func(ctx context.Context) error) error {
	if err := checkOutput(a.opts.Output); err != nil {
		return err
	}
	a.log = zap.NewNop()
	if a.opts.Verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		a.log = l
	}
	defer func() { _ = a.log.Sync() }()

	gw, closer, err := a.connect(a.opts, a.log)
	if err != nil {
		return err
	}
	defer closer.Close()
	a.gw = gw

	ctx, cancel := context.WithTimeout(cmd.Context(), a.opts.Timeout)
	defer cancel()
	return fn(ctx)
}

func (a *app) deps(cmd *cobra.Command) views.Deps {
	return views.Deps{
		Gateway: a.gw,
		Notify: notice.Func(func(n notice.Notice) {
			fmt.Fprintln(cmd.ErrOrStderr(), n.String())
		}),
		Log:    a.log,
		Now:    time.Now,
		Policy: optimistic.Reject,
	}
}

// await waits for a view to settle and turns non-ready states into errors.
func await[T any](ctx context.Context, wait func(context.Context) (loader.Snapshot[T], error)) (T, error) {
	var zero T
	s, err := wait(ctx)
	if err != nil {
		return zero, err
	}
	switch s.State {
	case loader.Ready:
		return s.Data, nil
	case loader.Redirect:
		return zero, fmt.Errorf("sign in first: %w", errs.ErrAuthRequired)
	case loader.NotFound, loader.Failed:
		return zero, s.Err
	default:
		return zero, fmt.Errorf("view still %s", s.State)
	}
}

// NewRootCommand creates the root command.
func NewRootCommand(version string) *cobra.Command {
	return newRootCommand(version, dialRemote)
}

func newRootCommand(version string, connect connectFunc) *cobra.Command {
	opts := &GlobalOptions{}
	a := &app{opts: opts, connect: connect}

	cmd := &cobra.Command{
		Use:          "snaps",
		Short:        "Snaps - share, vote on and remix media snaps",
		Version:      version,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.Addr, "addr", "localhost:8443", "gateway address")
	pf.StringVar(&opts.CACert, "cacert", "", "CA certificate (PEM)")
	pf.BoolVar(&opts.Insecure, "insecure", false, "skip certificate verification (dev)")
	pf.BoolVar(&opts.Plaintext, "plaintext", false, "dial without TLS (dev)")
	pf.StringVar(&opts.TokenFile, "token-file", "", "session file (default $XDG_CONFIG_HOME/snaps/token.json)")
	pf.StringVarP(&opts.Output, "output", "o", "json", "output format: json or yaml")
	pf.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "per-command timeout")
	pf.IntVar(&opts.MaxMessage, "max-message-mb", 32, "largest message sent or received, in MiB")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "log to stderr")

	cmd.AddCommand(
		newSignUpCommand(a),
		newSignInCommand(a),
		newSignOutCommand(a),
		newWhoAmICommand(a),
		newGalleryCommand(a),
		newFeedCommand(a),
		newSnapCommand(a),
		newProfileCommand(a),
		newAccountCommand(a),
	)
	return cmd
}
