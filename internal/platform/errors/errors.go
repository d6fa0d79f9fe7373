package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrNotFound             = errors.New("not found")
	ErrTransitionNotAllowed = errors.New("transition not allowed")
	ErrViewClosed           = errors.New("view closed")
)

// Kind classifies a failed call against the grading backend.
type Kind string

const (
	KindNetwork   Kind = "transient-network"
	KindTimeout   Kind = "timeout"
	KindServer    Kind = "server-reported"
	KindMalformed Kind = "malformed-response"
	KindUnknown   Kind = "unknown"
)

// Sentinels matched by errors.Is against a *RemoteError of the same kind.
var (
	ErrUnreachable = errors.New("server unreachable")
	ErrTimeout     = errors.New("request timed out")
	ErrServer      = errors.New("server reported an error")
	ErrMalformed   = errors.New("malformed response")
)

type RemoteError struct {
	Kind     Kind
	Op       string
	Endpoint string
	Status   int
	Message  string
	Err      error
}

func (e *RemoteError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: %s (status %d): %s", e.Op, e.Endpoint, e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("%s %s: %s: %s", e.Op, e.Endpoint, e.Kind, msg)
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrUnreachable:
		return e.Kind == KindNetwork
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrServer:
		return e.Kind == KindServer
	case ErrMalformed:
		return e.Kind == KindMalformed
	}
	return false
}

// Transient reports whether repeating the same request may succeed.
func (e *RemoteError) Transient() bool {
	return e.Kind == KindNetwork || e.Kind == KindTimeout
}

func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Kind
	}
	return KindUnknown
}

func IsTransient(err error) bool {
	var remote *RemoteError
	return errors.As(err, &remote) && remote.Transient()
}

// UserMessage translates err into the text shown in an alert. Timeouts and
// unreachable servers name the configured address so the user can fix it.
func UserMessage(err error, baseURL string) string {
	if err == nil {
		return ""
	}
	var remote *RemoteError
	if !errors.As(err, &remote) {
		if errors.Is(err, ErrInvalidInput) {
			return err.Error()
		}
		return "Something went wrong: " + err.Error()
	}
	switch remote.Kind {
	case KindTimeout:
		return fmt.Sprintf("The server at %s took too long to respond. Check the server address and try again.", baseURL)
	case KindNetwork:
		return fmt.Sprintf("Could not reach the server at %s. Verify the address is correct and the server is running.", baseURL)
	case KindServer, KindMalformed:
		if remote.Message != "" {
			return remote.Message
		}
		return "The server could not process the request."
	default:
		return "An unexpected error occurred. Please try again."
	}
}
