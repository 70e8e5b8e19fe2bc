package workflow

import "fmt"

// ValidationError reports input rejected locally, before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("workflow: invalid %s: %s", e.Field, e.Reason)
}

// TransportError reports a network-level failure: the request never
// produced a server response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("workflow: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServiceError reports a call that reached the server but was rejected,
// either by HTTP status or by a structural success=false in the body.
type ServiceError struct {
	Op      string
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("workflow: %s: server rejected request (status %d): %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("workflow: %s: server reported failure: %s", e.Op, e.Message)
}

// NotConnectedError reports a publish attempted without an active
// platform connection.
type NotConnectedError struct{}

func (e *NotConnectedError) Error() string {
	return "workflow: LinkedIn account is not connected"
}

// AuthorizationDeniedError reports that the user denied authorization at
// the platform, carried back on the redirect as an error parameter.
type AuthorizationDeniedError struct {
	Reason string
}

func (e *AuthorizationDeniedError) Error() string {
	return fmt.Sprintf("workflow: authorization denied: %s", e.Reason)
}

// MissingCodeError reports a redirect that carried neither a code nor an
// error parameter.
type MissingCodeError struct{}

func (e *MissingCodeError) Error() string {
	return "workflow: callback carried no authorization code"
}

// ExchangeFailedError reports a failed authorization-code exchange.
type ExchangeFailedError struct {
	Err error
}

func (e *ExchangeFailedError) Error() string {
	return fmt.Sprintf("workflow: code exchange failed: %v", e.Err)
}

func (e *ExchangeFailedError) Unwrap() error { return e.Err }

// StateError reports an operation that is not allowed in the post's
// current lifecycle status.
type StateError struct {
	Op     string
	Status Status
}

func (e *StateError) Error() string {
	return fmt.Sprintf("workflow: cannot %s a post with status %q", e.Op, e.Status)
}
