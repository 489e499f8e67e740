package tallysync

import "fmt"

type TransportErrorKind string

const (
	TransportConnectionRefused TransportErrorKind = "connection_refused"
	TransportTimeout           TransportErrorKind = "timeout"
	TransportNotFound          TransportErrorKind = "not_found"
	TransportUnauthorized      TransportErrorKind = "unauthorized"
	TransportForbidden         TransportErrorKind = "forbidden"
	TransportServerError       TransportErrorKind = "server_error"
	TransportProtocolError     TransportErrorKind = "protocol_error"
	TransportUnknown           TransportErrorKind = "unknown"
)

// TransportError is the typed failure of a fetch against the Tally XML
// gateway. Kind drives both the retry decision and the operator-facing
// message; Attempts is how many requests were actually made.
type TransportError struct {
	Kind     TransportErrorKind
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	msg := ""
	switch e.Kind {
	case TransportConnectionRefused:
		msg = "cannot connect to Tally: make sure Tally is running and its XML gateway is enabled"
	case TransportTimeout:
		msg = "Tally did not respond in time: the export may be too large for the current timeout settings"
	case TransportNotFound:
		msg = "Tally endpoint not found: check the configured endpoint URL"
	case TransportUnauthorized:
		msg = "Tally rejected the request as unauthorized: check gateway security settings"
	case TransportForbidden:
		msg = "Tally refused the request: check gateway security settings"
	case TransportServerError:
		msg = "Tally returned a server error"
	case TransportProtocolError:
		msg = "Tally returned an invalid or error response"
	default:
		msg = "unexpected error talking to Tally"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s (attempts=%d): %v", msg, e.Attempts, e.Err)
	}
	return fmt.Sprintf("%s (attempts=%d)", msg, e.Attempts)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Retryable reports whether another attempt can plausibly succeed.
// Misconfiguration (404/401/403) and malformed payloads fail immediately.
func (e *TransportError) Retryable() bool {
	switch e.Kind {
	case TransportConnectionRefused, TransportTimeout, TransportServerError:
		return true
	default:
		return false
	}
}
