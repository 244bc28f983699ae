package identity

import (
	"context"

	"github.com/estudio-contable/backend/internal/domain/shared"
	"github.com/google/uuid"
)

var (
	// ErrUserNotFound is returned when no user matches
	ErrUserNotFound = shared.NotFound("Usuario no encontrado")
	// ErrEmailTaken is returned when registering an email in use
	ErrEmailTaken = shared.NewDomainError("CONFLICT", "El email ya está registrado")
	// ErrInvalidCredentials hides whether email or password was wrong
	ErrInvalidCredentials = shared.NewDomainError("UNAUTHORIZED", "Credenciales inválidas")
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// FindActiveIDs lists every active owner, used by the monthly scheduler.
	FindActiveIDs(ctx context.Context) ([]uuid.UUID, error)
	Save(ctx context.Context, user *User) error
}
