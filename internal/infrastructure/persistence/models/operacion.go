package models

import (
	"time"

	"github.com/estudio-contable/backend/internal/domain/engagement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OperacionModel is the persistence model for the Engagement aggregate.
type OperacionModel struct {
	OwnedAggregateModel
	ClientID    uuid.UUID         `gorm:"column:cliente_id;type:uuid;not null;index"`
	ClientName  string            `gorm:"column:cliente_nombre;->;-:migration"`
	Type        engagement.Type   `gorm:"column:tipo;type:varchar(30);not null"`
	Description string            `gorm:"column:descripcion;type:text"`
	Notes       string            `gorm:"column:notas;type:text"`
	Fee         decimal.Decimal   `gorm:"column:honorarios;type:decimal(10,2);not null;default:0"`
	GrossIncome decimal.Decimal   `gorm:"column:ingresos_brutos;type:decimal(10,2);not null;default:0"`
	TotalAmount decimal.Decimal   `gorm:"column:monto_total;type:decimal(10,2);not null;default:0"`
	PaidAmount  decimal.Decimal   `gorm:"column:monto_pagado;type:decimal(10,2);not null;default:0"`
	Status      engagement.Status `gorm:"column:estado;type:varchar(20);not null;default:'PENDIENTE';index"`
	Recurring   bool              `gorm:"column:es_mensualidad;not null;default:false"`
	StartDate   time.Time         `gorm:"column:fecha_inicio;type:date;not null"`
	DueDate     *time.Time        `gorm:"column:fecha_limite;type:date"`
	CompletedOn *time.Time        `gorm:"column:fecha_completado;type:date"`
}

// TableName returns the table name for GORM
func (OperacionModel) TableName() string {
	return "operaciones"
}

// ToDomain converts the persistence model to a domain Engagement.
func (m *OperacionModel) ToDomain() *engagement.Engagement {
	return &engagement.Engagement{
		OwnedAggregateRoot: m.ToOwnedAggregateRoot(),
		ClientID:           m.ClientID,
		ClientName:         m.ClientName,
		Type:               m.Type,
		Description:        m.Description,
		Notes:              m.Notes,
		Fee:                m.Fee,
		GrossIncome:        m.GrossIncome,
		TotalAmount:        m.TotalAmount,
		PaidAmount:         m.PaidAmount,
		Status:             m.Status,
		Recurring:          m.Recurring,
		StartDate:          m.StartDate.UTC(),
		DueDate:            utcPtr(m.DueDate),
		CompletedOn:        utcPtr(m.CompletedOn),
	}
}

// FromDomain populates the persistence model from a domain Engagement.
func (m *OperacionModel) FromDomain(e *engagement.Engagement) {
	m.FromDomainOwnedAggregateRoot(e.OwnedAggregateRoot)
	m.ClientID = e.ClientID
	m.ClientName = e.ClientName
	m.Type = e.Type
	m.Description = e.Description
	m.Notes = e.Notes
	m.Fee = e.Fee
	m.GrossIncome = e.GrossIncome
	m.TotalAmount = e.TotalAmount
	m.PaidAmount = e.PaidAmount
	m.Status = e.Status
	m.Recurring = e.Recurring
	m.StartDate = e.StartDate
	m.DueDate = e.DueDate
	m.CompletedOn = e.CompletedOn
}

// OperacionModelFromDomain creates a new persistence model from a domain Engagement.
func OperacionModelFromDomain(e *engagement.Engagement) *OperacionModel {
	m := &OperacionModel{}
	m.FromDomain(e)
	return m
}

// date columns come back in the driver's location
func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
