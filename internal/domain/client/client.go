package client

import (
	"regexp"
	"strings"
	"time"

	"github.com/estudio-contable/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxCondition is the client's standing with the tax authority
type TaxCondition string

const (
	TaxConditionRegistered    TaxCondition = "RESPONSABLE_INSCRIPTO"
	TaxConditionSimplified    TaxCondition = "MONOTRIBUTISTA"
	TaxConditionExempt        TaxCondition = "EXENTO"
	TaxConditionFinalConsumer TaxCondition = "CONSUMIDOR_FINAL"
)

// IsValid checks if the condition is a known TaxCondition
func (c TaxCondition) IsValid() bool {
	switch c {
	case TaxConditionRegistered, TaxConditionSimplified, TaxConditionExempt, TaxConditionFinalConsumer:
		return true
	}
	return false
}

var cuitPattern = regexp.MustCompile(`^\d{2}-\d{8}-\d{1}$`)

// ValidateCUIT checks the XX-XXXXXXXX-X layout
func ValidateCUIT(cuit string) error {
	if !cuitPattern.MatchString(cuit) {
		return shared.NewDomainError("INVALID_CUIT", "El CUIT debe tener el formato XX-XXXXXXXX-X")
	}
	return nil
}

// Client is a customer of the accounting office.
//
// A fixed client (Recurring) is billed automatically each month and must
// carry a positive MonthlyFee.
type Client struct {
	shared.OwnedAggregateRoot
	Name         string
	CUIT         string
	RegisteredOn time.Time
	Contact      string
	TaxCondition *TaxCondition
	Active       bool
	Recurring    bool
	MonthlyFee   *decimal.Decimal
}

// NewClient creates an active, non-recurring client.
func NewClient(ownerID uuid.UUID, name, cuit string, registeredOn time.Time, contact string) (*Client, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "El usuario es obligatorio")
	}
	c := &Client{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		Active:             true,
	}
	if err := c.Rename(name); err != nil {
		return nil, err
	}
	if err := c.ChangeCUIT(cuit); err != nil {
		return nil, err
	}
	if err := c.SetContact(contact); err != nil {
		return nil, err
	}
	if registeredOn.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "La fecha de alta es obligatoria")
	}
	c.RegisteredOn = shared.DateOf(registeredOn)
	return c, nil
}

// Rename validates and sets the display name
func (c *Client) Rename(name string) error {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < 3 {
		return shared.NewDomainError("INVALID_NAME", "El nombre debe tener al menos 3 caracteres")
	}
	c.Name = name
	c.Touch()
	return nil
}

// ChangeCUIT validates and sets the tax id. Uniqueness is checked by the caller.
func (c *Client) ChangeCUIT(cuit string) error {
	cuit = strings.TrimSpace(cuit)
	if err := ValidateCUIT(cuit); err != nil {
		return err
	}
	c.CUIT = cuit
	c.Touch()
	return nil
}

// SetContact sets the email or phone used to reach the client
func (c *Client) SetContact(contact string) error {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return shared.NewDomainError("INVALID_CONTACT", "El contacto es obligatorio")
	}
	c.Contact = contact
	c.Touch()
	return nil
}

// SetRegisteredOn changes the onboarding date
func (c *Client) SetRegisteredOn(d time.Time) error {
	if d.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "La fecha de alta es obligatoria")
	}
	c.RegisteredOn = shared.DateOf(d)
	c.Touch()
	return nil
}

// SetTaxCondition sets or clears the tax condition
func (c *Client) SetTaxCondition(cond *TaxCondition) error {
	if cond != nil && !cond.IsValid() {
		return shared.NewDomainError("INVALID_TAX_CONDITION", "Condición fiscal inválida")
	}
	c.TaxCondition = cond
	c.Touch()
	return nil
}

// ConfigureBilling sets the recurring flag and fee together so the pair is
// always consistent.
func (c *Client) ConfigureBilling(recurring bool, fee *decimal.Decimal) error {
	if fee != nil && fee.IsNegative() {
		return shared.NewDomainError("INVALID_FEE", "El monto de mensualidad debe ser mayor o igual a 0")
	}
	if recurring && (fee == nil || !fee.IsPositive()) {
		return shared.NewDomainError("INVALID_FEE", "Un cliente fijo debe tener un monto de mensualidad mayor a 0")
	}
	if fee != nil {
		rounded := fee.Round(2)
		fee = &rounded
	}
	c.Recurring = recurring
	c.MonthlyFee = fee
	c.Touch()
	return nil
}

// ToggleActive flips the active flag
func (c *Client) ToggleActive() {
	c.Active = !c.Active
	c.Touch()
}

// IsBillable reports whether monthly generation picks this client up.
func (c *Client) IsBillable() bool {
	return c.Active && c.Recurring
}
