package codes

import (
	"errors"

	"lagoon/core"

	"github.com/twitchtv/twirp"
)

// Twirp classifies an engine error by retry semantics: invalid input never
// retries, precondition failures retry after the caller changes something,
// unavailable retries later as-is.
func Twirp(err error) twirp.Error {
	if twerr, ok := err.(twirp.Error); ok {
		return twerr
	}

	switch {
	case errors.Is(err, core.ErrZeroAmount),
		errors.Is(err, core.ErrInvalidRiskParams):
		return twirp.NewError(twirp.InvalidArgument, err.Error())

	case errors.Is(err, core.ErrInvalidPool),
		errors.Is(err, core.ErrInvalidToken),
		errors.Is(err, core.ErrPriceNotFound):
		return twirp.NewError(twirp.NotFound, err.Error())

	case errors.Is(err, core.ErrInsufficientBalance),
		errors.Is(err, core.ErrHealthFactorTooLow),
		errors.Is(err, core.ErrUserHealthy):
		return twirp.NewError(twirp.FailedPrecondition, err.Error())

	case errors.Is(err, core.ErrInsufficientLiquidity):
		return twirp.NewError(twirp.ResourceExhausted, err.Error())

	case errors.Is(err, core.ErrReentrant),
		errors.Is(err, core.ErrOptimisticLock):
		return twirp.NewError(twirp.Aborted, err.Error())

	case errors.Is(err, core.ErrStalePrice),
		errors.Is(err, core.ErrPaused):
		return twirp.NewError(twirp.Unavailable, err.Error())

	case errors.Is(err, core.ErrUnauthorized):
		return twirp.NewError(twirp.PermissionDenied, err.Error())
	}

	return twirp.InternalErrorWith(err)
}

// Status http status for the classified error
func Status(err error) int {
	return twirp.ServerHTTPStatusFromErrorCode(Twirp(err).Code())
}
