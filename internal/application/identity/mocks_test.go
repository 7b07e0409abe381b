package identity

import (
	"context"
	"net/url"
	"time"

	"github.com/invoicedash/backend/internal/domain/identity"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

// MockSessionIssuer is a mock implementation of SessionIssuer
type MockSessionIssuer struct {
	mock.Mock
}

func (m *MockSessionIssuer) Issue(user *identity.User) (*identity.Session, string, error) {
	args := m.Called(user)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*identity.Session), args.String(1), args.Error(2)
}

// MockAuthenticator is a mock implementation of Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) SignIn(ctx context.Context, w SessionWriter, method string, form url.Values) (*identity.Session, error) {
	args := m.Called(ctx, w, method, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Session), args.Error(1)
}

// MockSessionVerifier is a mock implementation of SessionVerifier
type MockSessionVerifier struct {
	mock.Mock
}

func (m *MockSessionVerifier) Verify(token string) (*identity.Session, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Session), args.Error(1)
}

// MockSessionRevocation is a mock implementation of shared.SessionRevocation
type MockSessionRevocation struct {
	mock.Mock
}

func (m *MockSessionRevocation) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	args := m.Called(ctx, sessionID, ttl)
	return args.Error(0)
}

func (m *MockSessionRevocation) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionRevocation) Close() error {
	return m.Called().Error(0)
}

// recordingWriter captures the session written by a sign-in
type recordingWriter struct {
	session *identity.Session
	token   string
}

func (w *recordingWriter) WriteSession(session *identity.Session, token string) {
	w.session = session
	w.token = token
}
