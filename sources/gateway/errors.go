package gateway

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindBadRequest ErrorKind = iota
	KindUnauthorized
	KindNotFound
	KindRateLimited
	KindNetwork
	KindHttp
)

func (k ErrorKind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindNetwork:
		return "network"
	default:
		return "http"
	}
}

// Error is the single error type every gateway operation returns on
// failure. Status is zero for network-level failures.
type Error struct {
	Kind   ErrorKind
	Status int
	Body   string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("gateway: %s: %v", e.Kind, e.cause)
	}
	return fmt.Sprintf("gateway: %s: status %d: %s", e.Kind, e.Status, e.Body)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func kindOf(err error) (ErrorKind, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind, true
	}
	return 0, false
}

func IsBadRequest(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindBadRequest
}

func IsUnauthorized(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindUnauthorized
}

func IsNotFound(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindNotFound
}

func IsRateLimited(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindRateLimited
}

func IsNetwork(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindNetwork
}
