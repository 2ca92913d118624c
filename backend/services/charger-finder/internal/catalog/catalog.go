package catalog

import (
	"markev/backend/services/charger-finder/internal/geo"
	"markev/backend/services/charger-finder/internal/models"
)

// Fallback supplies chargers when the store has nothing to offer.
type Fallback interface {
	Chargers() []models.Charger
	InBounds(box geo.BoundingBox) []models.Charger
}

var sample = []models.Charger{
	{
		ID:            "1",
		Name:          "Tesla Supercharger",
		Latitude:      23.0225,
		Longitude:     72.5714,
		Address:       "Ahmedabad",
		Type:          models.TypeDC,
		Status:        models.StatusAvailable,
		Price:         18.5,
		Rating:        4.7,
		ConnectorType: "CCS",
	},
	{
		ID:            "2",
		Name:          "ChargePoint",
		Latitude:      23.0250,
		Longitude:     72.5750,
		Address:       "Ahmedabad",
		Type:          models.TypeAC,
		Status:        models.StatusAvailable,
		Price:         12,
		Rating:        4.2,
		ConnectorType: "Type 2",
	},
	{
		ID:            "3",
		Name:          "EV Station",
		Latitude:      23.0300,
		Longitude:     72.5800,
		Address:       "Ahmedabad",
		Type:          models.TypeDC,
		Status:        models.StatusBusy,
		Price:         15,
		Rating:        3.9,
		ConnectorType: "CHAdeMO",
	},
	{
		ID:            "4",
		Name:          "Tata Power EZ Charge",
		Latitude:      23.0395,
		Longitude:     72.5660,
		Address:       "Navrangpura, Ahmedabad",
		Type:          models.TypeFast,
		Status:        models.StatusOffline,
		Price:         20,
		Rating:        4.0,
		ConnectorType: "CCS",
	},
}

// Static is the built-in sample catalog. It is immutable; every call hands out a copy.
type Static struct{}

// NewStatic returns the sample catalog.
func NewStatic() Static {
	return Static{}
}

// Chargers returns all sample records.
func (Static) Chargers() []models.Charger {
	out := make([]models.Charger, len(sample))
	copy(out, sample)
	return out
}

// InBounds returns the sample records inside box.
func (s Static) InBounds(box geo.BoundingBox) []models.Charger {
	return Filter(s.Chargers(), box)
}

// Empty is a catalog with no records, used when fallback is switched off.
type Empty struct{}

// Chargers returns an empty list.
func (Empty) Chargers() []models.Charger { return []models.Charger{} }

// InBounds returns an empty list.
func (Empty) InBounds(geo.BoundingBox) []models.Charger { return []models.Charger{} }

// Filter keeps the records inside box, preserving order.
func Filter(chargers []models.Charger, box geo.BoundingBox) []models.Charger {
	out := make([]models.Charger, 0, len(chargers))
	for _, c := range chargers {
		if box.Contains(c.Latitude, c.Longitude) {
			out = append(out, c)
		}
	}
	return out
}
