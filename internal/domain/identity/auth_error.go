package identity

import (
	"errors"
	"fmt"
)

// AuthErrorType classifies a sign-in failure
type AuthErrorType string

const (
	// ErrTypeCredentialsSignin means the submitted email/password were rejected
	ErrTypeCredentialsSignin AuthErrorType = "CredentialsSignin"
	// ErrTypeCallbackRoute means the provider failed while authorizing the credentials
	ErrTypeCallbackRoute AuthErrorType = "CallbackRouteError"
	ErrTypeAccessDenied  AuthErrorType = "AccessDenied"
	// ErrTypeConfiguration means the sign-in method is not set up
	ErrTypeConfiguration AuthErrorType = "Configuration"
)

// MethodCredentials is the email/password sign-in method
const MethodCredentials = "credentials"

// AuthError is a classified sign-in failure. Callers branch on Type;
// any other error out of a sign-in is unexpected.
type AuthError struct {
	Type AuthErrorType
	Err  error
}

// NewAuthError creates a classified sign-in failure
func NewAuthError(t AuthErrorType, err error) *AuthError {
	return &AuthError{Type: t, Err: err}
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return string(e.Type)
	}
	return fmt.Sprintf("%s: %v", e.Type, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// AsAuthError extracts a classified sign-in failure from err
func AsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}
