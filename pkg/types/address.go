package types

import "strings"

// Address is the delivery destination attached to an order submission.
type Address struct {
	Street      string     `json:"street"`
	City        string     `json:"city"`
	State       string     `json:"state"`
	ZipCode     string     `json:"zip_code"`
	Coordinates *[2]float64 `json:"coordinates,omitempty"` // [lng, lat]
}

// MissingFields lists the required fields that are blank.
func (a Address) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(a.Street) == "" {
		missing = append(missing, "street")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(a.State) == "" {
		missing = append(missing, "state")
	}
	if strings.TrimSpace(a.ZipCode) == "" {
		missing = append(missing, "zip_code")
	}
	return missing
}

// IsComplete reports whether all required fields are present.
func (a Address) IsComplete() bool {
	return len(a.MissingFields()) == 0
}
