package models

import (
	"encoding/json"
	"time"

	"github.com/estudio-contable/backend/internal/domain/engagement"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var modelLogger = zap.L().Named("persistence.models")

// GenerationRunModel stores the audit row of a monthly billing batch.
type GenerationRunModel struct {
	BaseModel
	OwnerID      uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	BillingDay   time.Time          `gorm:"column:fecha;type:date;not null"`
	Generated    int                `gorm:"column:generadas;not null"`
	ClientsJSON  string             `gorm:"column:clientes;type:jsonb;default:'[]'"`
	WarningsJSON string             `gorm:"column:advertencias;type:jsonb;default:'[]'"`
	Trigger      engagement.Trigger `gorm:"column:origen;type:varchar(10);not null"`
}

// TableName returns the table name for GORM
func (GenerationRunModel) TableName() string {
	return "generaciones_mensuales"
}

// ToDomain converts the model to a domain GenerationRun. Unreadable JSON
// columns are logged and come back empty.
func (m *GenerationRunModel) ToDomain() *engagement.GenerationRun {
	run := &engagement.GenerationRun{
		BaseEntity: m.BaseModel.ToDomain(),
		OwnerID:    m.OwnerID,
		BillingDay: m.BillingDay.UTC(),
		Generated:  m.Generated,
		Trigger:    m.Trigger,
	}
	if m.ClientsJSON != "" && m.ClientsJSON != "[]" {
		if err := json.Unmarshal([]byte(m.ClientsJSON), &run.Clients); err != nil {
			modelLogger.Warn("failed to parse clientes JSON",
				zap.String("run_id", m.ID.String()),
				zap.Error(err))
		}
	}
	if m.WarningsJSON != "" && m.WarningsJSON != "[]" {
		if err := json.Unmarshal([]byte(m.WarningsJSON), &run.Warnings); err != nil {
			modelLogger.Warn("failed to parse advertencias JSON",
				zap.String("run_id", m.ID.String()),
				zap.Error(err))
		}
	}
	return run
}

// GenerationRunModelFromDomain creates the model for a domain GenerationRun.
func GenerationRunModelFromDomain(r *engagement.GenerationRun) *GenerationRunModel {
	m := &GenerationRunModel{
		OwnerID:      r.OwnerID,
		BillingDay:   r.BillingDay,
		Generated:    r.Generated,
		ClientsJSON:  "[]",
		WarningsJSON: "[]",
		Trigger:      r.Trigger,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	if len(r.Clients) > 0 {
		if b, err := json.Marshal(r.Clients); err == nil {
			m.ClientsJSON = string(b)
		}
	}
	if len(r.Warnings) > 0 {
		if b, err := json.Marshal(r.Warnings); err == nil {
			m.WarningsJSON = string(b)
		}
	}
	return m
}
