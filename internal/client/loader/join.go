package loader

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Join2 runs two queries concurrently. If either fails the other is
// cancelled and only the first error is returned.
func Join2[A, B any](ctx context.Context,
	fa func(context.Context) (A, error),
	fb func(context.Context) (B, error),
) (A, B, error) {
	var (
		a A
		b B
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { a, err = fa(ctx); return err })
	g.Go(func() (err error) { b, err = fb(ctx); return err })
	if err := g.Wait(); err != nil {
		var za A
		var zb B
		return za, zb, err
	}
	return a, b, nil
}

// Join3 is Join2 for three queries.
func Join3[A, B, C any](ctx context.Context,
	fa func(context.Context) (A, error),
	fb func(context.Context) (B, error),
	fc func(context.Context) (C, error),
) (A, B, C, error) {
	var (
		a A
		b B
		c C
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { a, err = fa(ctx); return err })
	g.Go(func() (err error) { b, err = fb(ctx); return err })
	g.Go(func() (err error) { c, err = fc(ctx); return err })
	if err := g.Wait(); err != nil {
		var (
			za A
			zb B
			zc C
		)
		return za, zb, zc, err
	}
	return a, b, c, nil
}
