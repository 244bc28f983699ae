package identity

import (
	"time"

	"github.com/estudio-contable/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// RegisterInput contains the input for sign-up
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
	IP       string // for audit logging only
}

// LogoutInput identifies the token being revoked
type LogoutInput struct {
	UserID    uuid.UUID
	TokenJTI  string
	ExpiresIn time.Duration
}

// UpdateProfileInput is a partial edit of the caller's profile
type UpdateProfileInput struct {
	Name         *string
	ProfilePhoto *string
}

// UserInfo is the public view of a user; the password hash never leaves the service
type UserInfo struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"nombre"`
	ProfilePhoto *string   `json:"fotoPerfil"`
	Role         string    `json:"rol"`
	Active       bool      `json:"activo"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AuthResult is returned by register and login
type AuthResult struct {
	User      UserInfo  `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ToUserInfo converts a domain user
func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		ProfilePhoto: u.ProfilePhoto,
		Role:         u.Role,
		Active:       u.Active,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
