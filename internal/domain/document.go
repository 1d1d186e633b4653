package domain

import "strings"

// DocumentKind names one of the two document slots.
type DocumentKind string

const (
	Passport DocumentKind = "passport"
	Vehicle  DocumentKind = "vehicle"
)

// Valid reports whether k is one of the known slots.
func (k DocumentKind) Valid() bool {
	return k == Passport || k == Vehicle
}

// Label is the human wording used in replies.
func (k DocumentKind) Label() string {
	switch k {
	case Passport:
		return "passport"
	case Vehicle:
		return "vehicle document"
	}
	return "document"
}

// PassportFields are the identity fields recognised on a passport or ID card.
type PassportFields struct {
	GivenNames  string `json:"given_names,omitempty"`
	Surname     string `json:"surname,omitempty"`
	DocumentID  string `json:"document_id,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Nationality string `json:"nationality,omitempty"`
	Address     string `json:"address,omitempty"`
}

// FullName joins given names and surname.
func (p PassportFields) FullName() string {
	return strings.TrimSpace(p.GivenNames + " " + p.Surname)
}

// VehicleFields are the fields recognised on a vehicle registration document.
type VehicleFields struct {
	Make         string `json:"make,omitempty"`
	Model        string `json:"model,omitempty"`
	VIN          string `json:"vin,omitempty"`
	Year         string `json:"year,omitempty"`
	Registration string `json:"registration,omitempty"`
}

// Document is the normalized result of one extraction. FullText is always present;
// exactly one of Passport and Vehicle is set, matching Kind.
type Document struct {
	Kind     DocumentKind    `json:"document_type"`
	FullText string          `json:"full_text"`
	Provider string          `json:"provider,omitempty"`
	Passport *PassportFields `json:"passport,omitempty"`
	Vehicle  *VehicleFields  `json:"vehicle,omitempty"`
}

// Empty reports whether the slot holds no extracted data.
func (d Document) Empty() bool {
	return strings.TrimSpace(d.FullText) == ""
}
