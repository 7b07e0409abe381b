package identity

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/invoicedash/backend/internal/domain/identity"
	"github.com/invoicedash/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SessionIssuer signs a new session for a user
type SessionIssuer interface {
	Issue(user *identity.User) (*identity.Session, string, error)
}

// SessionWriter stores an issued session with the client, typically as a cookie
type SessionWriter interface {
	WriteSession(session *identity.Session, token string)
}

// Authenticator establishes a session from submitted credentials
type Authenticator interface {
	SignIn(ctx context.Context, w SessionWriter, method string, form url.Values) (*identity.Session, error)
}

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// CredentialsProvider signs users in with email and password.
// Failures it understands come back as *identity.AuthError; context
// cancellation is returned as is.
type CredentialsProvider struct {
	users    identity.UserRepository
	issuer   SessionIssuer
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCredentialsProvider creates a new credentials provider
func NewCredentialsProvider(users identity.UserRepository, issuer SessionIssuer, logger *zap.Logger) *CredentialsProvider {
	return &CredentialsProvider{
		users:    users,
		issuer:   issuer,
		validate: validator.New(),
		logger:   logger,
	}
}

// SignIn verifies the submitted email and password and writes a session on success
func (p *CredentialsProvider) SignIn(ctx context.Context, w SessionWriter, method string, form url.Values) (*identity.Session, error) {
	if method != identity.MethodCredentials {
		return nil, identity.NewAuthError(identity.ErrTypeConfiguration, errors.New("unsupported sign-in method "+method))
	}

	creds := credentials{
		Email:    strings.TrimSpace(form.Get(FieldEmail)),
		Password: form.Get(FieldPassword),
	}
	if err := p.validate.Struct(creds); err != nil {
		p.logger.Debug("Credentials form rejected", zap.Error(err))
		return nil, identity.NewAuthError(identity.ErrTypeCredentialsSignin, nil)
	}

	user, err := p.users.FindByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			p.logger.Warn("Sign-in for unknown email", zap.String("email", identity.NormalizeEmail(creds.Email)))
			return nil, identity.NewAuthError(identity.ErrTypeCredentialsSignin, nil)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		p.logger.Error("Failed to look up user", zap.Error(err))
		return nil, identity.NewAuthError(identity.ErrTypeCallbackRoute, err)
	}

	if !user.VerifyPassword(creds.Password) {
		p.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID))
		return nil, identity.NewAuthError(identity.ErrTypeCredentialsSignin, nil)
	}

	session, token, err := p.issuer.Issue(user)
	if err != nil {
		p.logger.Error("Failed to issue session", zap.String("user_id", user.ID), zap.Error(err))
		return nil, identity.NewAuthError(identity.ErrTypeCallbackRoute, err)
	}

	w.WriteSession(session, token)
	p.logger.Info("User signed in", zap.String("user_id", user.ID), zap.String("session_id", session.ID))
	return session, nil
}
