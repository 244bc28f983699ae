// Package models contains the GORM persistence models behind the repositories.
//
// Domain aggregates carry no ORM tags. Each model here owns its table mapping
// and converts to and from its aggregate with ToDomain / FromDomain:
//
//   - base.go: shared id, timestamp, version and owner columns
//   - cliente.go: clientes
//   - operacion.go: operaciones
//   - usuario.go: usuarios
//   - generation_run.go: generaciones_mensuales (monthly billing audit)
package models
