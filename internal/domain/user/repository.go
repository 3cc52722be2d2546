package user

import (
	"context"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	// Upsert creates the user or, when the email exists, replaces its name,
	// password and provider keys.
	Upsert(ctx context.Context, u User) (User, error)
	UpdateCredentials(ctx context.Context, userID, apiKey, apiSecret string) error
}
