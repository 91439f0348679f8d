package gateway

import (
	"context"
	"fmt"

	"github.com/camadaviva/snaps/internal/errs"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// fromStatus turns a gRPC status back into the matching sentinel so callers can use errors.Is.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	var sentinel error
	switch st.Code() {
	case codes.NotFound:
		sentinel = errs.ErrNotFound
	case codes.Unauthenticated:
		sentinel = errs.ErrUnauthorized
	case codes.PermissionDenied:
		sentinel = errs.ErrForbidden
	case codes.ResourceExhausted:
		sentinel = errs.ErrRateLimited
	case codes.AlreadyExists:
		sentinel = errs.ErrAlreadyExists
	case codes.InvalidArgument:
		sentinel = errs.ErrInvalid
	case codes.Canceled:
		sentinel = context.Canceled
	case codes.DeadlineExceeded:
		sentinel = context.DeadlineExceeded
	default:
		return err
	}
	return fmt.Errorf("%w (%s)", sentinel, st.Message())
}
