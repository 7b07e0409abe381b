package identity

import "github.com/invoicedash/backend/internal/domain/identity"

// Credential check outcomes shown on the login form
const (
	MsgInvalidCredentials = "Invalid credentials."
	MsgSomethingWentWrong = "Something went wrong."
)

// Credential form field names
const (
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldCallbackURL = "redirectTo"
)

// CreateUserInput contains the input for registering a dashboard user
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
}

// UserInfo contains basic user information
type UserInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ToUserInfo converts a domain user
func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{ID: u.ID, Name: u.Name, Email: u.Email}
}
