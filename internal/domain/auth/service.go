package auth

import (
	"context"
)

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	// SSEToken issues a short-lived token for the authenticated user's event stream.
	SSEToken(ctx context.Context) (SSETokenResponse, error)
}
