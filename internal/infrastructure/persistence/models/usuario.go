package models

import (
	"github.com/estudio-contable/backend/internal/domain/identity"
)

// UsuarioModel is the persistence model for the User aggregate.
type UsuarioModel struct {
	AggregateModel
	Email        string  `gorm:"column:email;type:varchar(200);not null;uniqueIndex"`
	PasswordHash string  `gorm:"column:password_hash;type:varchar(255);not null"`
	Name         string  `gorm:"column:nombre;type:varchar(200);not null"`
	ProfilePhoto *string `gorm:"column:foto_perfil;type:text"`
	Role         string  `gorm:"column:rol;type:varchar(30);not null;default:'contador'"`
	Active       bool    `gorm:"column:activo;not null;default:true"`
}

// TableName returns the table name for GORM
func (UsuarioModel) TableName() string {
	return "usuarios"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UsuarioModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		Name:              m.Name,
		ProfilePhoto:      m.ProfilePhoto,
		Role:              m.Role,
		Active:            m.Active,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UsuarioModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.Name = u.Name
	m.ProfilePhoto = u.ProfilePhoto
	m.Role = u.Role
	m.Active = u.Active
}

// UsuarioModelFromDomain creates a new persistence model from a domain User entity.
func UsuarioModelFromDomain(u *identity.User) *UsuarioModel {
	m := &UsuarioModel{}
	m.FromDomain(u)
	return m
}
