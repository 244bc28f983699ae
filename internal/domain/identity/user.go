package identity

import (
	"net/mail"
	"strings"

	"github.com/estudio-contable/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 10

// DefaultRole is given to every registered user
const DefaultRole = "contador"

// User is an accountant account. It owns clients and engagements.
type User struct {
	shared.BaseAggregateRoot
	Email        string
	PasswordHash string
	Name         string
	ProfilePhoto *string // base64 encoded image
	Role         string
	Active       bool
}

// NewUser creates an active user with a hashed password
func NewUser(email, password, name string) (*User, error) {
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Debe proporcionar un email válido")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	u := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		Role:              DefaultRole,
		Active:            true,
	}
	if err := u.Rename(name); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "No se pudo procesar la contraseña")
	}
	u.PasswordHash = passwordHash
	return u, nil
}

// NormalizeEmail lowercases and trims an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Rename sets the display name (at least 2 characters)
func (u *User) Rename(name string) error {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < 2 {
		return shared.NewDomainError("INVALID_NAME", "El nombre debe tener al menos 2 caracteres")
	}
	u.Name = name
	u.Touch()
	return nil
}

// SetProfilePhoto replaces the base64 photo; an empty string clears it.
func (u *User) SetProfilePhoto(photo string) {
	if photo == "" {
		u.ProfilePhoto = nil
	} else {
		u.ProfilePhoto = &photo
	}
	u.Touch()
}

// VerifyPassword checks if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// CanLogin reports whether the account may authenticate
func (u *User) CanLogin() bool {
	return u.Active
}

func validatePassword(password string) error {
	if len(password) < 6 {
		return shared.NewDomainError("INVALID_PASSWORD", "La contraseña debe tener al menos 6 caracteres")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "La contraseña no puede superar los 72 caracteres")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
