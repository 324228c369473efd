package authority

import (
	"errors"
	"fmt"
)

var (
	// ErrRejected marks a well-formed refusal from the authority (bad or consumed token, permissions).
	ErrRejected = errors.New("identity authority rejected the request")
	// ErrUnavailable marks transport failures or responses that could not be understood.
	ErrUnavailable = errors.New("identity authority unavailable")
)

// Error is an error body reported by the authority. 4xx responses carrying an
// authority error body are rejections. 5xx responses, and any status whose
// body is not an authority error (a proxy page, a wrong base URL), mean the
// authority could not serve the request.
// RawBody is kept for server side logging and must not be shown to end users.
type Error struct {
	StatusCode int    `json:"status_code"`
	RequestID  string `json:"request_id"`
	ErrorType  string `json:"error_type"`
	Message    string `json:"error_message"`
	RawBody    string `json:"-"`
	// Unknown is set when the response body was not an authority error.
	Unknown bool `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("authority error %d %s: %s", e.StatusCode, e.ErrorType, e.Message)
}

func (e *Error) Unwrap() error {
	if e.Unknown || e.StatusCode >= 500 {
		return ErrUnavailable
	}
	return ErrRejected
}

// IsRejected reports whether err is an authority rejection.
func IsRejected(err error) bool {
	return errors.Is(err, ErrRejected)
}

// IsUnavailable reports whether err is a transport or decoding failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
