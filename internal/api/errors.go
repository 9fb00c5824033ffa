package api

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSessionExpired is returned when the refresh protocol fails terminally;
// the session has been cleared and the caller should redirect to login.
var ErrSessionExpired = errors.New("session expired")

// Error is a non-2xx backend response carrying the envelope message.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// AsError unwraps err into an *Error when it carries an HTTP status.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// AuthErrorKey maps a backend auth failure message to a stable key the UI
// layer can localize. Unrecognized messages map to "operationFailed".
func AuthErrorKey(message string) string {
	if message == "" {
		return "operationFailed"
	}
	msg := strings.ToLower(message)

	switch {
	case strings.Contains(msg, "invalid email or password"):
		return "invalidCredentials"
	case strings.Contains(msg, "email already registered"),
		strings.Contains(msg, "email already exists"):
		return "emailTaken"
	case strings.Contains(msg, "user not found"):
		return "userNotFound"
	case strings.Contains(msg, "invalid or expired"):
		return "invalidToken"
	case strings.Contains(msg, "password"):
		return "passwordWeak"
	case strings.Contains(msg, "verify"):
		return "verifyFirst"
	}
	return "operationFailed"
}
