package catalog

import (
	"errors"
	"fmt"
)

// ErrUnsupportedRequest matches every UnsupportedRequestError via errors.Is.
var ErrUnsupportedRequest = errors.New("unsupported request type")

// UnsupportedRequestError is returned, before any network call, for a
// request that is not one of the known variants.
type UnsupportedRequestError struct {
	Request any
}

func (e *UnsupportedRequestError) Error() string {
	return fmt.Sprintf("unsupported request type: %v", e.Request)
}

func (e *UnsupportedRequestError) Is(target error) bool {
	return target == ErrUnsupportedRequest
}
