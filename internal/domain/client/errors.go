package client

import "github.com/estudio-contable/backend/internal/domain/shared"

var (
	// ErrNotFound is returned when a client does not exist in the caller's scope
	ErrNotFound = shared.NotFound("Cliente no encontrado")
	// ErrDuplicateCUIT is returned when another client already uses the CUIT
	ErrDuplicateCUIT = shared.NewDomainError("CONFLICT", "Ya existe un cliente con ese CUIT")
	// ErrHasEngagements blocks deleting a client that still has engagements
	ErrHasEngagements = shared.NewDomainError("CONFLICT", "No se puede eliminar un cliente con operaciones asociadas")
	// ErrEmptySearch is returned for a blank search term
	ErrEmptySearch = shared.NewDomainError("BAD_REQUEST", "El término de búsqueda es requerido")
)
