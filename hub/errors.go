package hub

import "errors"

var (
	// ErrNotAuthenticated indicates an operation was attempted with no
	// session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrInvalidUsername indicates the username failed local validation.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidPassword indicates the password failed local validation.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrInvalidRegion indicates an unsupported region code.
	ErrInvalidRegion = errors.New("invalid region")
	// ErrLoginFailed indicates the upstream rejected the login or the call
	// failed in transit. The two are deliberately not distinguished here;
	// the tuya client types them for callers that need the detail.
	ErrLoginFailed = errors.New("login failed")
	// ErrActionFailed indicates a device command was rejected or lost.
	ErrActionFailed = errors.New("failed to send interaction")
)
