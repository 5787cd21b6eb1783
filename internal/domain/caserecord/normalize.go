package caserecord

import (
	"time"

	"github.com/CodeTanzania/ewea-case/internal/predefine"
)

// Normalize runs immediately before a case is validated and persisted.
// It fills missing defaults and derives severity from the followup
// score. Every step is independent and idempotent; none can fail.
// Severity always overwrites whatever the client supplied.
func Normalize(c *Case, now time.Time, defaults predefine.Defaults) {
	// ensure reported date
	if c.ReportedAt == nil {
		reportedAt := c.CreatedAt
		if reportedAt.IsZero() {
			reportedAt = now
		}
		c.ReportedAt = &reportedAt
	}

	// ensure case stage
	if c.Stage == nil {
		stage := defaults.Stage
		c.Stage = &stage
	}

	// always: derive case severity from followup score
	severity := defaults.SeverityForScore(c.Score())
	c.Severity = &severity

	// ensure victim gender
	if c.Victim.Gender == nil {
		gender := defaults.Gender
		c.Victim.Gender = &gender
	}

	// ensure victim default occupation
	if c.Victim.Occupation == nil {
		occupation := defaults.Occupation
		c.Victim.Occupation = &occupation
	}

	// ensure victim default nationality
	if c.Victim.Nationality == nil {
		nationality := defaults.Nationality
		c.Victim.Nationality = &nationality
	}

	// ensure victim default area
	if c.Victim.Area == nil {
		area := defaults.Area
		c.Victim.Area = &area
	}
}
