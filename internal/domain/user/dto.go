package user

import (
	"time"

	"github.com/vontade-empenho/ponto-backend/internal/pkg/validator"
)

// UserResponse represents user data in API responses
type UserResponse struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	HasCredentials bool   `json:"has_credentials"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

func ToResponse(u User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		HasCredentials: u.HasCredentials(),
		CreatedAt:      u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      u.UpdatedAt.Format(time.RFC3339),
	}
}

// CreateUserRequest represents request to create (or re-seed) a tenant
type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Name      string `json:"name" validate:"required,max=100"`
	Password  string `json:"password" validate:"required,min=8,max=255"`
	APIKey    string `json:"api_key" validate:"omitempty,max=128"`
	APISecret string `json:"api_secret" validate:"required_with=APIKey,max=128"`
}

func (r *CreateUserRequest) Validate() error {
	return validator.Struct(r)
}
