package domain

import "time"

type UserType string

const (
	UserTypeUser  UserType = "user"
	UserTypeAdmin UserType = "admin"
)

// User represents an account of the assistant. Password holds the stored hash.
type User struct {
	ID        string `validate:"required"`
	FirstName string
	FullName  string
	Email     string `validate:"required"`
	Password  Redacted
	Type      UserType `validate:"oneof=user admin"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Sanitized returns a copy of the user without the password hash.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}

// AuthToken is the result of a successful login.
type AuthToken struct {
	Token     string
	ExpiresAt time.Time
	User      User
}
