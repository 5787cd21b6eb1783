// Package caserecord defines and tracks cases opened during an
// emergency response: the Case aggregate, its pre-save normalization,
// the sequential case number assignment and the REST surface.
package caserecord

import (
	"time"

	"github.com/google/uuid"

	"github.com/CodeTanzania/ewea-case/internal/party"
)

// NextOfKin is the party closest to a victim.
type NextOfKin struct {
	Name   string `json:"name,omitempty"`
	Mobile string `json:"mobile,omitempty"`
	Email  string `json:"email,omitempty"`
	Locale string `json:"locale,omitempty"`
}

// Victim is the party a case is opened for. Reference fields point
// into the predefine taxonomy and are guaranteed non-nil after
// normalization.
type Victim struct {
	Referral    string     `json:"referral,omitempty"`
	PCR         string     `json:"pcr,omitempty"`
	Name        string     `json:"name,omitempty"`
	Mobile      string     `json:"mobile,omitempty"`
	Email       string     `json:"email,omitempty"`
	Gender      *uuid.UUID `json:"gender,omitempty"`
	Age         *int       `json:"age,omitempty"`
	Weight      *float64   `json:"weight,omitempty"`
	Occupation  *uuid.UUID `json:"occupation,omitempty"`
	Nationality *uuid.UUID `json:"nationality,omitempty"`
	Address     string     `json:"address,omitempty"`
	Area        *uuid.UUID `json:"area,omitempty"`
	NextOfKin   *NextOfKin `json:"nextOfKin,omitempty"`
}

// Followup captures the latest check-in performed on a case's victim.
type Followup struct {
	Follower   *party.Party           `json:"follower,omitempty"`
	FollowedAt *time.Time             `json:"followedAt,omitempty"`
	Symptoms   map[string]interface{} `json:"symptoms,omitempty"`
	Score      *float64               `json:"score,omitempty"`
	Outcome    string                 `json:"outcome,omitempty"`
	Remarks    string                 `json:"remarks,omitempty"`
}

// Case is a tracked emergency-response incident record. One document
// per case; victim and followup are embedded sub-documents.
type Case struct {
	ID          uuid.UUID    `json:"_id"`
	Number      string       `json:"number"`
	Stage       *uuid.UUID   `json:"stage,omitempty"`
	Severity    *uuid.UUID   `json:"severity,omitempty"`
	Description string       `json:"description,omitempty"`
	Victim      Victim       `json:"victim"`
	ReportedAt  *time.Time   `json:"reportedAt,omitempty"`
	Reporter    *party.Party `json:"reporter,omitempty"`
	ResolvedAt  *time.Time   `json:"resolvedAt,omitempty"`
	Resolver    *party.Party `json:"resolver,omitempty"`
	Followup    *Followup    `json:"followup,omitempty"`
	Remarks     string       `json:"remarks,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	DeletedAt   *time.Time   `json:"deletedAt,omitempty"`
}

// Score returns the followup score, nil when no followup was recorded.
func (c *Case) Score() *float64 {
	if c.Followup == nil {
		return nil
	}
	return c.Followup.Score
}

// SeedCriteria identifies an existing record during seed import.
type SeedCriteria struct {
	ID     *uuid.UUID
	Number string
}

// PrepareSeedCriteria packs the criteria used to match a seed against
// an existing record: id when present, number otherwise.
func PrepareSeedCriteria(seed *Case) SeedCriteria {
	if seed.ID != uuid.Nil {
		id := seed.ID
		return SeedCriteria{ID: &id}
	}
	return SeedCriteria{Number: seed.Number}
}
