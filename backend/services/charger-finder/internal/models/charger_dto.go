package models

// ChargerDTO is the public JSON shape of a charger.
type ChargerDTO struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	Address       string  `json:"address"`
	Type          string  `json:"type"`
	Status        string  `json:"status"`
	Price         float64 `json:"price"`
	Rating        float64 `json:"rating"`
	ConnectorType string  `json:"connector_type"`
}

// ToDTO renames internal fields to the public shape.
func ToDTO(c Charger) ChargerDTO {
	return ChargerDTO{
		ID:            c.ID,
		Name:          c.Name,
		Lat:           c.Latitude,
		Lng:           c.Longitude,
		Address:       c.Address,
		Type:          c.Type,
		Status:        string(c.Status),
		Price:         c.Price,
		Rating:        c.Rating,
		ConnectorType: c.ConnectorType,
	}
}

// FromDTO is the inverse of ToDTO.
func FromDTO(d ChargerDTO) Charger {
	return Charger{
		ID:            d.ID,
		Name:          d.Name,
		Latitude:      d.Lat,
		Longitude:     d.Lng,
		Address:       d.Address,
		Type:          d.Type,
		Status:        Status(d.Status),
		Price:         d.Price,
		Rating:        d.Rating,
		ConnectorType: d.ConnectorType,
	}
}

// ChargerInput is the seed shape of a charger. Coordinates are pointers so a record
// that omits them is told apart from one placed at 0,0.
type ChargerInput struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Lat           *float64 `json:"lat"`
	Lng           *float64 `json:"lng"`
	Address       string   `json:"address"`
	Type          string   `json:"type"`
	Status        string   `json:"status"`
	Price         float64  `json:"price"`
	Rating        float64  `json:"rating"`
	ConnectorType string   `json:"connector_type"`
}

// Charger converts the input, rejecting records without coordinates.
func (in ChargerInput) Charger() (Charger, error) {
	if in.Lat == nil {
		return Charger{}, fieldError("lat", "is required")
	}
	if in.Lng == nil {
		return Charger{}, fieldError("lng", "is required")
	}
	return FromDTO(ChargerDTO{
		ID:            in.ID,
		Name:          in.Name,
		Lat:           *in.Lat,
		Lng:           *in.Lng,
		Address:       in.Address,
		Type:          in.Type,
		Status:        in.Status,
		Price:         in.Price,
		Rating:        in.Rating,
		ConnectorType: in.ConnectorType,
	}), nil
}

// ToDTOs converts a list, never returning nil so JSON encodes as [].
func ToDTOs(chargers []Charger) []ChargerDTO {
	out := make([]ChargerDTO, 0, len(chargers))
	for _, c := range chargers {
		out = append(out, ToDTO(c))
	}
	return out
}
