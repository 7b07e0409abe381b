package identity

import (
	"context"
	"net/url"

	"github.com/invoicedash/backend/internal/domain/identity"
)

// CredentialCheck turns sign-in failures into the message shown on the login form
type CredentialCheck struct {
	auth Authenticator
}

// NewCredentialCheck creates a new credential check
func NewCredentialCheck(auth Authenticator) *CredentialCheck {
	return &CredentialCheck{auth: auth}
}

// Authenticate attempts a credentials sign-in. On success the session has been
// written to w and the message is empty. Classified failures become a message;
// anything else is returned as an error. The previous message is ignored.
func (c *CredentialCheck) Authenticate(ctx context.Context, w SessionWriter, _ string, form url.Values) (string, error) {
	_, err := c.auth.SignIn(ctx, w, identity.MethodCredentials, form)
	if err == nil {
		return "", nil
	}

	authErr, ok := identity.AsAuthError(err)
	if !ok {
		return "", err
	}
	switch authErr.Type {
	case identity.ErrTypeCredentialsSignin:
		return MsgInvalidCredentials, nil
	default:
		return MsgSomethingWentWrong, nil
	}
}
