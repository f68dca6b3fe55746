package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/librarian/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps a service error to a gRPC status. Authentication failures
// of every kind collapse into one message so callers cannot tell them apart.
// Unexpected errors are logged and reported without detail.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrDuplicateEmail):
		return status.Error(codes.AlreadyExists, common.ErrDuplicateEmail.Error())
	case errors.Is(err, common.ErrAlreadyBorrowed):
		return status.Error(codes.AlreadyExists, common.ErrAlreadyBorrowed.Error())
	case errors.Is(err, common.ErrAlreadyInState):
		return status.Error(codes.FailedPrecondition, common.ErrAlreadyInState.Error())
	case errors.Is(err, common.ErrNoActiveLoan):
		return status.Error(codes.FailedPrecondition, common.ErrNoActiveLoan.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case common.IsAuthError(err):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, "forbidden")
	case errors.Is(err, common.ErrTransientStore):
		s.logger.Warn(ctx, "storage unavailable", "error", err.Error())
		return status.Error(codes.Unavailable, common.ErrTransientStore.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request cancelled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}

	s.logger.Error(ctx, "internal error", "error", err.Error())
	return status.Error(codes.Internal, "internal error")
}
