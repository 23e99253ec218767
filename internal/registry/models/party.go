package models

import (
	"strings"
	"time"

	id "mhregistry/pkg/domain"
)

// PersonName is an individual's name. Mutually exclusive with a business name
// on the same party.
type PersonName struct {
	First  string `json:"first"`
	Middle string `json:"middle,omitempty"`
	Last   string `json:"last"`
}

// IsEmpty reports whether no name parts were supplied.
func (n PersonName) IsEmpty() bool {
	return n.First == "" && n.Last == ""
}

// Address is a civic or mailing address.
type Address struct {
	Street           string `json:"street"`
	StreetAdditional string `json:"streetAdditional,omitempty"`
	City             string `json:"city"`
	Region           string `json:"region,omitempty"`
	Country          string `json:"country,omitempty"`
	PostalCode       string `json:"postalCode,omitempty"`
}

// Party is any person or organization attached to a registration: owners,
// executors, administrators, the submitting party, and notice contacts.
type Party struct {
	PartyType    PartyType
	Individual   PersonName
	BusinessName string
	Address      Address
	EmailAddress string
	PhoneNumber  string
	Description  string

	StatusType           OwnerStatusType
	ChangeRegistrationID *id.RegistrationID

	// Death metadata, set only when a death-transfer supersedes the owner.
	DeathCertificateNumber string
	DeathTS                *time.Time
	DeathCorpNumber        string
}

// Name returns the display form of the party name: "LAST FIRST MIDDLE" for
// individuals, the organization name otherwise.
func (p Party) Name() string {
	if !p.Individual.IsEmpty() {
		parts := []string{p.Individual.Last, p.Individual.First}
		if p.Individual.Middle != "" {
			parts = append(parts, p.Individual.Middle)
		}
		return strings.ToUpper(strings.Join(parts, " "))
	}
	return strings.ToUpper(p.BusinessName)
}
