// Package identity is the auth service's account store and token issuer.
package identity

import (
	"errors"
	"time"
)

var (
	ErrUserNameTaken      = errors.New("user name already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Account is an identity-provider account.
type Account struct {
	ID          string
	UserName    string
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	IsAdmin     bool
	CreatedAt   time.Time
}

// NewAccount is the input for creating an account.
type NewAccount struct {
	UserName    string
	Password    string
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	IsAdmin     bool
}
