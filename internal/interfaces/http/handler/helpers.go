package handler

import (
	"time"

	"github.com/estudio-contable/backend/internal/domain/shared"
)

// parseDate accepts a calendar date (YYYY-MM-DD) or an RFC 3339 timestamp,
// which is read in the business zone before truncating to its date.
func parseDate(field, value string) (time.Time, error) {
	if d, err := time.Parse(shared.ISODate, value); err == nil {
		return d, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return shared.DateOf(t.In(shared.BusinessLocation())), nil
	}
	return time.Time{}, shared.NewDomainError("INVALID_DATE", field+" debe ser una fecha válida (YYYY-MM-DD)")
}

// parseOptionalDate parses value when present
func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	d, err := parseDate(field, *value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
