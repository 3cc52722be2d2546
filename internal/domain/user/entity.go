package user

import "time"

// User is a tenant: one login and the provider API keys its reports are
// fetched with.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	APIKey       string
	APISecret    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasCredentials reports whether both provider keys are set.
func (u *User) HasCredentials() bool {
	return u.APIKey != "" && u.APISecret != ""
}
