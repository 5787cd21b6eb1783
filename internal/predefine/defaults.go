package predefine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Defaults carries the well-known lookup ids the case normalizer falls
// back to, resolved once at startup. Injecting them as a plain value
// keeps normalization free of I/O and deterministic in tests.
type Defaults struct {
	Stage       uuid.UUID
	Gender      uuid.UUID
	Occupation  uuid.UUID
	Nationality uuid.UUID
	Area        uuid.UUID

	severities map[string]uuid.UUID
}

// NewDefaults builds a Defaults value from explicit ids, primarily for
// tests and seeding.
func NewDefaults(stage, gender, occupation, nationality, area uuid.UUID, severities map[string]uuid.UUID) Defaults {
	return Defaults{
		Stage:       stage,
		Gender:      gender,
		Occupation:  occupation,
		Nationality: nationality,
		Area:        area,
		severities:  severities,
	}
}

// ResolveDefaults loads the default seed entry of every namespace the
// normalizer needs, plus the full severity scale. A missing seed is a
// startup error, not a save-time one.
func ResolveDefaults(ctx context.Context, repo Repository) (Defaults, error) {
	d := Defaults{severities: make(map[string]uuid.UUID)}

	for _, ns := range []struct {
		namespace string
		target    *uuid.UUID
	}{
		{NamespaceCaseStage, &d.Stage},
		{NamespacePartyGender, &d.Gender},
		{NamespacePartyOccupation, &d.Occupation},
		{NamespacePartyNationality, &d.Nationality},
		{NamespaceAdministrativeArea, &d.Area},
	} {
		p, err := repo.DefaultFor(ctx, ns.namespace)
		if err != nil {
			return Defaults{}, fmt.Errorf("resolve default %s: %w", ns.namespace, err)
		}
		*ns.target = p.ID
	}

	severities, err := repo.List(ctx, NamespaceCaseSeverity)
	if err != nil {
		return Defaults{}, fmt.Errorf("resolve severities: %w", err)
	}
	for _, s := range severities {
		d.severities[s.Code] = s.ID
	}
	for _, code := range []string{SeverityUnknown, SeverityLow, SeverityModerate, SeverityHigh, SeverityCritical} {
		if _, ok := d.severities[code]; !ok {
			return Defaults{}, fmt.Errorf("severity seed %s is missing", code)
		}
	}

	return d, nil
}

// SeverityForScore maps a followup score onto a severity lookup id.
// The mapping is deterministic and total: nil or out-of-range scores
// resolve to the unknown severity.
func (d Defaults) SeverityForScore(score *float64) uuid.UUID {
	if score == nil {
		return d.severities[SeverityUnknown]
	}
	s := *score
	switch {
	case s < 0 || s > 5:
		return d.severities[SeverityUnknown]
	case s < 2:
		return d.severities[SeverityLow]
	case s < 3:
		return d.severities[SeverityModerate]
	case s < 4:
		return d.severities[SeverityHigh]
	default:
		return d.severities[SeverityCritical]
	}
}
