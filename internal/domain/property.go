package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PropertyType values are the labels stored by the browser application.
type PropertyType string

const (
	TypeApartment  PropertyType = "Apartamento"
	TypeHouse      PropertyType = "Casa"
	TypeCommercial PropertyType = "Comercial"
	TypeLand       PropertyType = "Terreno"
)

// PropertyStatus values are the labels stored by the browser application.
type PropertyStatus string

const (
	StatusAvailable PropertyStatus = "Disponível"
	StatusSold      PropertyStatus = "Vendido"
	StatusRented    PropertyStatus = "Alugado"
	StatusPending   PropertyStatus = "Em Negociação"
)

var propertyTypeCodes = map[string]PropertyType{
	"apartment":  TypeApartment,
	"house":      TypeHouse,
	"commercial": TypeCommercial,
	"land":       TypeLand,
}

var propertyStatusCodes = map[string]PropertyStatus{
	"available":           StatusAvailable,
	"sold":                StatusSold,
	"rented":              StatusRented,
	"pending-negotiation": StatusPending,
}

// ParsePropertyType accepts either the stored label or the english code.
func ParsePropertyType(s string) (PropertyType, error) {
	s = strings.TrimSpace(s)
	if t, ok := propertyTypeCodes[strings.ToLower(s)]; ok {
		return t, nil
	}
	if t := PropertyType(s); t.Valid() {
		return t, nil
	}
	return "", fmt.Errorf("unknown property type %q", s)
}

// ParsePropertyStatus accepts either the stored label or the english code.
func ParsePropertyStatus(s string) (PropertyStatus, error) {
	s = strings.TrimSpace(s)
	if st, ok := propertyStatusCodes[strings.ToLower(s)]; ok {
		return st, nil
	}
	if st := PropertyStatus(s); st.Valid() {
		return st, nil
	}
	return "", fmt.Errorf("unknown property status %q", s)
}

func (t PropertyType) Valid() bool {
	switch t {
	case TypeApartment, TypeHouse, TypeCommercial, TypeLand:
		return true
	}
	return false
}

func (s PropertyStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusSold, StatusRented, StatusPending:
		return true
	}
	return false
}

// ErrInvalidProperty is returned by Validate.
var ErrInvalidProperty = errors.New("invalid property")

// Property is one real-estate unit and its financial history.
type Property struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Price        Money          `json:"price"`
	Type         PropertyType   `json:"type"`
	Status       PropertyStatus `json:"status"`
	Address      string         `json:"address"`
	ConsumerUnit string         `json:"consumerUnit,omitempty"` // utility consumer-unit number
	Bedrooms     int            `json:"bedrooms"`
	Bathrooms    int            `json:"bathrooms"`
	Area         float64        `json:"area"` // m²
	ImageURL     string         `json:"imageUrl"`
	Features     []string       `json:"features"`

	// RentalHistory is kept in entry order, not date order.
	RentalHistory []FinancialRecord `json:"rentalHistory"`
}

// NewID returns a fresh opaque property identifier.
func NewID() string {
	return uuid.NewString()
}

// Validate checks the fields a form submission must carry.
func (p *Property) Validate() error {
	var problems []string
	if strings.TrimSpace(p.Title) == "" {
		problems = append(problems, "title is required")
	}
	if !p.Type.Valid() {
		problems = append(problems, fmt.Sprintf("unknown type %q", p.Type))
	}
	if !p.Status.Valid() {
		problems = append(problems, fmt.Sprintf("unknown status %q", p.Status))
	}
	if p.Price.IsNegative() {
		problems = append(problems, "price must not be negative")
	}
	if p.Bedrooms < 0 || p.Bathrooms < 0 {
		problems = append(problems, "room counts must not be negative")
	}
	if p.Area < 0 {
		problems = append(problems, "area must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidProperty, strings.Join(problems, "; "))
	}
	return nil
}

// Clone returns a deep copy so callers can't mutate store-owned slices.
func (p Property) Clone() Property {
	if p.Features != nil {
		p.Features = append([]string(nil), p.Features...)
	}
	if p.RentalHistory != nil {
		p.RentalHistory = append([]FinancialRecord(nil), p.RentalHistory...)
	}
	return p
}

// CloneAll deep-copies a property slice.
func CloneAll(props []Property) []Property {
	if props == nil {
		return nil
	}
	out := make([]Property, len(props))
	for i, p := range props {
		out[i] = p.Clone()
	}
	return out
}
