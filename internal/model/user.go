package model

import (
	"errors"
	"time"
)

// User is an account holder. Every user owns exactly one Profile.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	Email          string    `db:"email" json:"email"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	PasswordHashed string    `db:"password_hashed" json:"-"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	DateJoined     time.Time `db:"date_joined" json:"date_joined"`
}

// RegisterRequest is the sign-up payload, also accepted by POST /users.
type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginRequest represents the data needed to obtain a token pair
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateUserRequest carries the editable account fields. Nil means "leave as is".
type UpdateUserRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// UserFilter narrows GET /users.
type UserFilter struct {
	Username *string
	IsActive *bool
	Search   string
}

const MaxUsernameLength = 150

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameExists is returned when attempting to create a user with a taken username
	ErrUsernameExists = errors.New("a user with that username already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("no active account found with the given credentials")
)
