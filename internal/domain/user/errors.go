package user

import "errors"

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidEmailFormat    = errors.New("invalid email format")
	ErrInvalidPasswordLength = errors.New("password must be at least 8 characters")
)
