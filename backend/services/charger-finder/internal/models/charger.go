package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidCharger is returned when a record breaks write-time rules.
var ErrInvalidCharger = errors.New("charger: invalid record")

// Status of a charger.
type Status string

const (
	StatusAvailable Status = "available"
	StatusBusy      Status = "busy"
	StatusOffline   Status = "offline"
)

// Known charger categories. The set is open: unknown values are stored as-is.
const (
	TypeAC   = "AC"
	TypeDC   = "DC"
	TypeFast = "Fast"
	TypeSlow = "Slow"
)

// DefaultConnectorType is applied when a record omits its connector.
const DefaultConnectorType = "Type 2"

const maxRating = 5

// Charger is the stored charging station record.
type Charger struct {
	ID            string
	Name          string
	Latitude      float64
	Longitude     float64
	Address       string
	Type          string
	Status        Status
	Price         float64
	Rating        float64
	ConnectorType string
}

// ApplyDefaults fills optional fields left empty.
func (c *Charger) ApplyDefaults() {
	if c.Status == "" {
		c.Status = StatusAvailable
	}
	if strings.TrimSpace(c.ConnectorType) == "" {
		c.ConnectorType = DefaultConnectorType
	}
}

// Validate checks the record against write-time rules.
func (c *Charger) Validate() error {
	switch {
	case strings.TrimSpace(c.Name) == "":
		return fieldError("name", "is required")
	case strings.TrimSpace(c.Address) == "":
		return fieldError("address", "is required")
	case !finite(c.Latitude) || c.Latitude < -90 || c.Latitude > 90:
		return fieldError("lat", "must be within [-90, 90]")
	case !finite(c.Longitude) || c.Longitude < -180 || c.Longitude > 180:
		return fieldError("lng", "must be within [-180, 180]")
	case !finite(c.Price) || c.Price < 0:
		return fieldError("price", "must not be negative")
	case !finite(c.Rating) || c.Rating < 0 || c.Rating > maxRating:
		return fieldError("rating", "must be within [0, 5]")
	}

	switch c.Status {
	case StatusAvailable, StatusBusy, StatusOffline:
	default:
		return fieldError("status", fmt.Sprintf("unknown value %q", c.Status))
	}
	return nil
}

func fieldError(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidCharger, field, reason)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
