// Package party defines the acting-party reference used to stamp who
// reported, resolved or followed up on a case.
package party

import (
	"context"

	"github.com/google/uuid"
)

// Party is a lightweight reference to the focal person or agency acting
// on a case. The full party record lives in the stakeholder registry;
// only the fields needed for display and export are carried here.
type Party struct {
	ID           uuid.UUID `json:"_id"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email,omitempty"`
	Mobile       string    `json:"mobile,omitempty"`
	Abbreviation string    `json:"abbreviation,omitempty"`
	Role         string    `json:"role,omitempty"`
	Locale       string    `json:"locale,omitempty"`
}

// DisplayName returns the party name, falling back to 'NA' when the
// reference is empty. Used by the CSV export formatters.
func (p *Party) DisplayName() string {
	if p == nil || p.Name == "" {
		return "NA"
	}
	return p.Name
}

type contextKey string

const partyKey contextKey = "party"

// NewContext returns a context carrying the authenticated acting party.
func NewContext(ctx context.Context, p *Party) context.Context {
	return context.WithValue(ctx, partyKey, p)
}

// FromContext returns the acting party on the context, or nil when the
// request was not authenticated.
func FromContext(ctx context.Context) *Party {
	p, _ := ctx.Value(partyKey).(*Party)
	return p
}
