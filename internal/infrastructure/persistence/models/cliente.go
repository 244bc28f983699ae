package models

import (
	"time"

	"github.com/estudio-contable/backend/internal/domain/client"
	"github.com/shopspring/decimal"
)

// ClienteModel is the persistence model for the Client aggregate.
type ClienteModel struct {
	OwnedAggregateModel
	Name         string               `gorm:"column:nombre;type:varchar(200);not null"`
	CUIT         string               `gorm:"column:cuit;type:varchar(13);not null;uniqueIndex"`
	RegisteredOn time.Time            `gorm:"column:fecha_alta;type:date;not null"`
	Contact      string               `gorm:"column:contacto;type:varchar(200)"`
	TaxCondition *client.TaxCondition `gorm:"column:condicion_fiscal;type:varchar(30)"`
	Active       bool                 `gorm:"column:activo;not null;default:true"`
	Recurring    bool                 `gorm:"column:es_cliente_fijo;not null;default:false"`
	MonthlyFee   *decimal.Decimal     `gorm:"column:monto_mensualidad;type:decimal(10,2)"`
	SearchKey    string               `gorm:"column:search_key;type:text;not null;default:''"`
}

// TableName returns the table name for GORM
func (ClienteModel) TableName() string {
	return "clientes"
}

// ToDomain converts the persistence model to a domain Client.
func (m *ClienteModel) ToDomain() *client.Client {
	return &client.Client{
		OwnedAggregateRoot: m.ToOwnedAggregateRoot(),
		Name:               m.Name,
		CUIT:               m.CUIT,
		RegisteredOn:       m.RegisteredOn.UTC(),
		Contact:            m.Contact,
		TaxCondition:       m.TaxCondition,
		Active:             m.Active,
		Recurring:          m.Recurring,
		MonthlyFee:         m.MonthlyFee,
	}
}

// FromDomain populates the persistence model and refreshes the search key.
func (m *ClienteModel) FromDomain(c *client.Client) {
	m.FromDomainOwnedAggregateRoot(c.OwnedAggregateRoot)
	m.Name = c.Name
	m.CUIT = c.CUIT
	m.RegisteredOn = c.RegisteredOn
	m.Contact = c.Contact
	m.TaxCondition = c.TaxCondition
	m.Active = c.Active
	m.Recurring = c.Recurring
	m.MonthlyFee = c.MonthlyFee
	m.SearchKey = c.SearchKey()
}

// ClienteModelFromDomain creates a new persistence model from a domain Client.
func ClienteModelFromDomain(c *client.Client) *ClienteModel {
	m := &ClienteModel{}
	m.FromDomain(c)
	return m
}
