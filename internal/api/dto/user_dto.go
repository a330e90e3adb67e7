package dto

import (
	"time"

	"github.com/award-support/crm-service/internal/domain"
)

// RegisterRequest payload for self-service signup.
type RegisterRequest struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Phone     *string `json:"phone"`
	City      *string `json:"city"`
	Country   *string `json:"country"`
	Address   *string `json:"address"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the token and the authenticated account.
type LoginResponse struct {
	Message   string       `json:"message"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// CreateUserRequest payload for admin-created accounts.
type CreateUserRequest struct {
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Email     string          `json:"email"`
	Password  string          `json:"password"`
	Role      domain.UserRole `json:"role"`
	Phone     *string         `json:"phone"`
	City      *string         `json:"city"`
	Country   *string         `json:"country"`
	Address   *string         `json:"address"`
}

// UserResponse is the account shape returned by user endpoints. The
// credential hash never leaves the service.
type UserResponse struct {
	ID        int64           `json:"id"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Email     string          `json:"email"`
	Role      domain.UserRole `json:"role"`
	Phone     *string         `json:"phone,omitempty"`
	City      *string         `json:"city,omitempty"`
	Country   *string         `json:"country,omitempty"`
	Address   *string         `json:"address,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}
