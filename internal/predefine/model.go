// Package predefine is the reference-data collaborator: externally
// managed lookup entries (case stages, severities, genders,
// occupations, nationalities, administrative areas) plus the default
// seed resolution and score-to-severity mapping the case normalizer
// depends on.
package predefine

import (
	"time"

	"github.com/google/uuid"
)

// Lookup namespaces.
const (
	NamespaceCaseStage          = "CaseStage"
	NamespaceCaseSeverity       = "CaseSeverity"
	NamespacePartyGender        = "PartyGender"
	NamespacePartyOccupation    = "PartyOccupation"
	NamespacePartyNationality   = "PartyNationality"
	NamespaceAdministrativeArea = "AdministrativeArea"
)

// Severity codes within the CaseSeverity namespace.
const (
	SeverityUnknown  = "UNKNOWN"
	SeverityLow      = "LOW"
	SeverityModerate = "MODERATE"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

// Predefine maps to the predefine table: one taxonomy entry.
type Predefine struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Namespace string    `db:"namespace" json:"namespace"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	Color     *string   `db:"color" json:"color,omitempty"`
	Weight    *float64  `db:"weight" json:"weight,omitempty"`
	IsDefault bool      `db:"is_default" json:"is_default"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DisplayName returns the entry name, 'NA' when the entry is absent.
func (p *Predefine) DisplayName() string {
	if p == nil || p.Name == "" {
		return "NA"
	}
	return p.Name
}
