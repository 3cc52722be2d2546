package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrStreamTokenOnAPI   = errors.New("stream tokens are only accepted by the event stream")
	ErrUserNotFound       = errors.New("user not found")
)
