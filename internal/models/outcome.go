package models

import (
	"errors"
	"fmt"
)

var (
	ErrRemote        = errors.New("identity provider returned an error")
	ErrMalformed     = errors.New("invalid OAuth2 response")
	ErrListenerFault = errors.New("callback listener failed")
	ErrNoResponse    = errors.New("listener stopped without receiving a callback")
)

// OutcomeKind enumerates the ways a listener run can end.
type OutcomeKind int

const (
	OutcomeNoResponse OutcomeKind = iota
	OutcomeSuccess
	OutcomeRemoteError
	OutcomeMalformed
	OutcomeListenerFault
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeRemoteError:
		return "remote_error"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeListenerFault:
		return "listener_fault"
	default:
		return "no_response"
	}
}

// ParseOutcomeKind is the inverse of [OutcomeKind.String].
func ParseOutcomeKind(s string) (OutcomeKind, error) {
	for _, k := range []OutcomeKind{OutcomeSuccess, OutcomeRemoteError, OutcomeMalformed, OutcomeListenerFault, OutcomeNoResponse} {
		if k.String() == s {
			return k, nil
		}
	}
	return OutcomeNoResponse, fmt.Errorf("unknown outcome kind %q", s)
}

// Outcome is the value a listener run resolves to.
//
// Grant is set only for [OutcomeSuccess], Remote only for [OutcomeRemoteError].
// Err carries the underlying cause for malformed queries and listener faults.
type Outcome struct {
	Kind   OutcomeKind
	Grant  *CodeGrant
	Remote *ErrorResponse
	Err    error
}

// Success wraps a captured grant.
func Success(g CodeGrant) Outcome {
	return Outcome{Kind: OutcomeSuccess, Grant: &g}
}

// RemoteError wraps a provider error response.
func RemoteError(e ErrorResponse) Outcome {
	return Outcome{Kind: OutcomeRemoteError, Remote: &e}
}

// Malformed records a query that could not be decoded into either shape.
func Malformed(cause error) Outcome {
	return Outcome{Kind: OutcomeMalformed, Err: cause}
}

// ListenerFault records a bind or serve failure.
func ListenerFault(cause error) Outcome {
	return Outcome{Kind: OutcomeListenerFault, Err: cause}
}

// NoResponse is the outcome of a teardown with an empty capture slot.
func NoResponse() Outcome {
	return Outcome{Kind: OutcomeNoResponse}
}

// WithCause attaches the reason a run ended without a response, e.g. a deadline.
// Other outcomes are returned unchanged.
func (o Outcome) WithCause(cause error) Outcome {
	if o.Kind != OutcomeNoResponse {
		return o
	}
	o.Err = cause
	return o
}

// FromResult classifies a parsed [AuthorizationResult].
func FromResult(r AuthorizationResult) Outcome {
	if r.Grant != nil {
		return Success(*r.Grant)
	}
	if r.Err != nil {
		return RemoteError(*r.Err)
	}
	return Malformed(nil)
}

// Result converts the outcome into an explicit error return.
//
// Remote errors satisfy errors.Is(err, [ErrRemote]) and errors.As(err, **[ErrorResponse]).
func (o Outcome) Result() (*CodeGrant, error) {
	switch o.Kind {
	case OutcomeSuccess:
		return o.Grant, nil
	case OutcomeRemoteError:
		return nil, fmt.Errorf("%w: %w", ErrRemote, o.Remote)
	case OutcomeMalformed:
		if o.Err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, o.Err)
		}
		return nil, ErrMalformed
	case OutcomeListenerFault:
		if o.Err != nil {
			return nil, fmt.Errorf("%w: %w", ErrListenerFault, o.Err)
		}
		return nil, ErrListenerFault
	default:
		if o.Err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoResponse, o.Err)
		}
		return nil, ErrNoResponse
	}
}

// ErrorCode returns the provider error code for remote errors, empty otherwise.
func (o Outcome) ErrorCode() string {
	if o.Remote == nil {
		return ""
	}
	return o.Remote.Code
}
