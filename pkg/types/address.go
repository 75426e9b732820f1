package types

import (
	"encoding/json"
	"strings"
)

// Address is the shipping/billing address shape submitted at checkout and
// persisted on orders as a JSON-encoded string.
type Address struct {
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Phone      string  `json:"phone"`
	Email      *string `json:"email,omitempty"`
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	PostalCode *string `json:"postal_code,omitempty"`
	Country    string  `json:"country"`
}

// Encode serializes the address to the string stored on order rows.
func (a Address) Encode() (string, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodeAddress parses the JSON-encoded string persisted on order rows.
func DecodeAddress(raw string) (Address, error) {
	var a Address
	if strings.TrimSpace(raw) == "" {
		return a, nil
	}
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return Address{}, err
	}
	return a, nil
}

// IsZero reports whether no address field has been populated.
func (a Address) IsZero() bool {
	return a == Address{}
}
