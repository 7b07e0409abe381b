package identity

import (
	"context"
	"errors"

	"github.com/invoicedash/backend/internal/domain/identity"
	"github.com/invoicedash/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UserService registers dashboard users
type UserService struct {
	users  identity.UserRepository
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(users identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// CreateUser registers a user with a hashed password
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*UserInfo, error) {
	user, err := identity.NewUser(input.Name, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("EMAIL_EXISTS", "A user with this email already exists")
		}
		return nil, err
	}

	s.logger.Info("User created", zap.String("user_id", user.ID), zap.String("email", user.Email))
	info := ToUserInfo(user)
	return &info, nil
}
