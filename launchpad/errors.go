package launchpad

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every rejected operation wraps exactly one of these
// sentinels, so callers classify failures with errors.Is:
//
//   - ErrAuthorization: the caller is not allowed to perform the operation
//     (wrong identity, invalid or missing signature, disabled verifier).
//   - ErrState: the operation was invoked outside its valid status; the
//     caller must wait or take a different path.
//   - ErrBounds: a parameter is outside the configured policy window, or
//     nothing is currently owed/refundable.
//   - ErrExternal: a host call (token transfer, pool mint) failed; the
//     failure is propagated unchanged and the caller may resubmit once the
//     underlying condition is fixed.
//
// All errors abort the entire operation with no partial state change.
var (
	ErrAuthorization = errors.New("authorization denied")
	ErrState         = errors.New("operation not allowed in current status")
	ErrBounds        = errors.New("out of bounds")
	ErrExternal      = errors.New("external call failed")
)

func authErrf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrAuthorization, fmt.Sprintf(format, args...))
}

func stateErrf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrState, fmt.Sprintf(format, args...))
}

func boundsErrf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrBounds, fmt.Sprintf(format, args...))
}

func externErrf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrExternal, fmt.Sprintf(format, args...))
}
