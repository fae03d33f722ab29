package whoop

import (
	"fmt"

	"github.com/desertthunder/bandctl/internal/shared"
)

// HTTPError is a non-2xx, non-401-recoverable response from a data endpoint.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%v: status %d: %s", shared.ErrAPIRequest, e.Status, e.Body)
}

// Is matches [shared.ErrAPIRequest] so callers can test the error kind
// without depending on the concrete type.
func (e *HTTPError) Is(target error) bool {
	return target == shared.ErrAPIRequest
}

// RefreshError is a failed refresh-token grant. It is fatal for the calling
// operation: the refresh token is likely expired or revoked and the operator
// must re-run the authorization flow.
type RefreshError struct {
	Status int
	Body   string
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("%v: status %d: %s", shared.ErrRefreshFailed, e.Status, e.Body)
}

func (e *RefreshError) Is(target error) bool {
	return target == shared.ErrRefreshFailed
}
