package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Address is a value object representing a shipping address.
// It is persisted as a JSON column on the order.
type Address struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone,omitempty"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	District   string `json:"district,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country"`
}

// NewAddress creates a validated Address. FullName, Line1 and City are
// required; Country defaults to TR when empty.
func NewAddress(fullName, line1, city, country string) (Address, error) {
	addr := Address{
		FullName: strings.TrimSpace(fullName),
		Line1:    strings.TrimSpace(line1),
		City:     strings.TrimSpace(city),
		Country:  strings.TrimSpace(country),
	}
	if addr.Country == "" {
		addr.Country = "TR"
	}
	if err := addr.Validate(); err != nil {
		return Address{}, err
	}
	return addr, nil
}

// Validate checks the required address fields
func (a Address) Validate() error {
	if a.FullName == "" {
		return errors.New("address full name is required")
	}
	if a.Line1 == "" {
		return errors.New("address line is required")
	}
	if len(a.Line1) > 255 {
		return errors.New("address line cannot exceed 255 characters")
	}
	if a.City == "" {
		return errors.New("address city is required")
	}
	if a.Country == "" {
		return errors.New("address country is required")
	}
	return nil
}

// IsZero returns true when no field is set
func (a Address) IsZero() bool {
	return a == Address{}
}

// String returns a single-line representation
func (a Address) String() string {
	parts := []string{a.Line1}
	if a.Line2 != "" {
		parts = append(parts, a.Line2)
	}
	if a.District != "" {
		parts = append(parts, a.District)
	}
	parts = append(parts, a.City, a.Country)
	return strings.Join(parts, ", ")
}

// Value implements driver.Valuer for JSON column storage
func (a Address) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner
func (a *Address) Scan(value interface{}) error {
	if value == nil {
		*a = Address{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("cannot scan %T into Address", value)
	}
}
