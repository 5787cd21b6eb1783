package caserecord

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/CodeTanzania/ewea-case/internal/party"
	"github.com/CodeTanzania/ewea-case/internal/predefine"
	"github.com/CodeTanzania/ewea-case/internal/schema"
)

// ValidationError reports a field-level validation failure. Handlers
// surface it as a 400 with the field detail.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NumberGenerator allocates the next case number for the given date.
type NumberGenerator interface {
	Next(ctx context.Context, t time.Time) (string, error)
}

type Service struct {
	repo       Repository
	predefines predefine.Repository
	defaults   predefine.Defaults
	gen        NumberGenerator
	def        *schema.Definition
}

func NewService(repo Repository, predefines predefine.Repository, defaults predefine.Defaults, gen NumberGenerator) *Service {
	return &Service{
		repo:       repo,
		predefines: predefines,
		defaults:   defaults,
		gen:        gen,
		def:        Definition(),
	}
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func (s *Service) validate(ctx context.Context, c *Case) error {
	if c.Victim.Email != "" && !emailPattern.MatchString(c.Victim.Email) {
		return &ValidationError{Field: "victim.email", Reason: "is not a valid email"}
	}
	if kin := c.Victim.NextOfKin; kin != nil && kin.Email != "" && !emailPattern.MatchString(kin.Email) {
		return &ValidationError{Field: "victim.nextOfKin.email", Reason: "is not a valid email"}
	}
	if score := c.Score(); score != nil && (*score < 0 || *score > 5) {
		return &ValidationError{Field: "followup.score", Reason: "must be between 0 and 5"}
	}

	refs := []struct {
		field     string
		namespace string
		id        *uuid.UUID
	}{
		{"stage", predefine.NamespaceCaseStage, c.Stage},
		{"severity", predefine.NamespaceCaseSeverity, c.Severity},
		{"victim.gender", predefine.NamespacePartyGender, c.Victim.Gender},
		{"victim.occupation", predefine.NamespacePartyOccupation, c.Victim.Occupation},
		{"victim.nationality", predefine.NamespacePartyNationality, c.Victim.Nationality},
		{"victim.area", predefine.NamespaceAdministrativeArea, c.Victim.Area},
	}
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		exists, err := s.predefines.Exists(ctx, ref.namespace, *ref.id)
		if err != nil {
			return fmt.Errorf("check %s reference: %w", ref.field, err)
		}
		if !exists {
			return &ValidationError{Field: ref.field, Reason: "references an unknown " + ref.namespace}
		}
	}
	return nil
}

// Create normalizes and persists a new case, allocating its number
// when absent. A failed number allocation fails the whole create with
// no record persisted.
func (s *Service) Create(ctx context.Context, c *Case) error {
	now := time.Now().UTC()
	Normalize(c, now, s.defaults)

	if err := s.validate(ctx, c); err != nil {
		return err
	}

	if c.Number == "" {
		number, err := s.gen.Next(ctx, now)
		if err != nil {
			return fmt.Errorf("allocate case number: %w", err)
		}
		c.Number = number
	}

	return s.repo.Create(ctx, c)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Case, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, opts ListOptions) ([]*Case, int, *time.Time, error) {
	items, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, 0, nil, err
	}
	lastModified, err := s.repo.LastModified(ctx)
	if err != nil {
		return nil, 0, nil, err
	}
	return items, total, lastModified, nil
}

// protected fields a patch may never touch. Severity is recomputed by
// normalization, the rest are owned by the store.
var protectedPatchFields = []string{"_id", "number", "severity", "createdAt", "updatedAt", "deletedAt"}

// Patch applies a partial update by id: the patch document is
// deep-merged over the stored record, then the result is normalized
// and saved. The case number never changes.
func (s *Service) Patch(ctx context.Context, id uuid.UUID, patch map[string]interface{}) (*Case, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	for _, field := range protectedPatchFields {
		delete(patch, field)
	}

	doc := map[string]interface{}{}
	raw, err := json.Marshal(existing)
	if err != nil {
		return nil, fmt.Errorf("encode case: %w", err)
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode case: %w", err)
	}
	mergePatch(doc, patch)

	merged := &Case{}
	mergedRaw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode merged case: %w", err)
	}
	if err := json.Unmarshal(mergedRaw, merged); err != nil {
		return nil, &ValidationError{Field: "body", Reason: "is malformed: " + err.Error()}
	}

	merged.ID = existing.ID
	merged.Number = existing.Number
	merged.CreatedAt = existing.CreatedAt

	return s.save(ctx, merged)
}

// Put replaces the stored record wholesale, preserving identity,
// number and creation time.
func (s *Service) Put(ctx context.Context, id uuid.UUID, replacement *Case) (*Case, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	replacement.ID = existing.ID
	replacement.Number = existing.Number
	replacement.CreatedAt = existing.CreatedAt
	replacement.DeletedAt = nil

	return s.save(ctx, replacement)
}

func (s *Service) save(ctx context.Context, c *Case) (*Case, error) {
	Normalize(c, time.Now().UTC(), s.defaults)
	if err := s.validate(ctx, c); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete soft-deletes a case and returns the marked record.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*Case, error) {
	return s.repo.SoftDelete(ctx, id)
}

// Schema returns the machine-readable shape of the Case record.
func (s *Service) Schema() map[string]interface{} {
	return s.def.JSONSchema()
}

// Export streams all live cases as CSV onto w, one row at a time.
// Reference fields render as their display names with 'NA' fallback.
func (s *Service) Export(ctx context.Context, opts ListOptions, w io.Writer) error {
	names, err := s.referenceNames(ctx)
	if err != nil {
		return fmt.Errorf("resolve reference names: %w", err)
	}

	cols := s.def.ExportColumns()
	cw := csv.NewWriter(w)

	headers := make([]string, len(cols))
	for i, col := range cols {
		headers[i] = col.Header
	}
	if err := cw.Write(headers); err != nil {
		return err
	}

	err = s.repo.Each(ctx, opts, func(c *Case) error {
		record := make([]string, len(cols))
		for i, col := range cols {
			record[i] = col.RenderValue(exportValue(c, col.Path, names))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
		// flush per row so large exports stream instead of buffering
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

// referenceNames resolves display names for the whole predefine
// taxonomy once per export; the taxonomy is small reference data.
func (s *Service) referenceNames(ctx context.Context) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string)
	for _, namespace := range []string{
		predefine.NamespaceCaseStage,
		predefine.NamespaceCaseSeverity,
		predefine.NamespacePartyGender,
		predefine.NamespacePartyOccupation,
		predefine.NamespacePartyNationality,
		predefine.NamespaceAdministrativeArea,
	} {
		entries, err := s.predefines.List(ctx, namespace)
		if err != nil {
			return nil, err
		}
		for _, p := range entries {
			names[p.ID] = p.Name
		}
	}
	return names, nil
}

func mergePatch(dst, patch map[string]interface{}) {
	for k, v := range patch {
		if vm, ok := v.(map[string]interface{}); ok {
			if dm, ok := dst[k].(map[string]interface{}); ok {
				mergePatch(dm, vm)
				continue
			}
		}
		dst[k] = v
	}
}

func refName(id *uuid.UUID, names map[uuid.UUID]string) interface{} {
	if id == nil {
		return nil
	}
	return names[*id]
}

func partyName(p *party.Party) interface{} {
	if p == nil {
		return nil
	}
	return p.DisplayName()
}

func dateValue(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func exportValue(c *Case, path string, names map[uuid.UUID]string) interface{} {
	switch path {
	case "number":
		return c.Number
	case "stage":
		return refName(c.Stage, names)
	case "severity":
		return refName(c.Severity, names)
	case "description":
		return c.Description
	case "remarks":
		return c.Remarks
	case "reportedAt":
		return dateValue(c.ReportedAt)
	case "reporter":
		return partyName(c.Reporter)
	case "resolvedAt":
		return dateValue(c.ResolvedAt)
	case "resolver":
		return partyName(c.Resolver)
	case "victim.referral":
		return c.Victim.Referral
	case "victim.pcr":
		return c.Victim.PCR
	case "victim.name":
		return c.Victim.Name
	case "victim.mobile":
		return c.Victim.Mobile
	case "victim.email":
		return c.Victim.Email
	case "victim.gender":
		return refName(c.Victim.Gender, names)
	case "victim.age":
		if c.Victim.Age == nil {
			return nil
		}
		return *c.Victim.Age
	case "victim.weight":
		if c.Victim.Weight == nil {
			return nil
		}
		return *c.Victim.Weight
	case "victim.occupation":
		return refName(c.Victim.Occupation, names)
	case "victim.nationality":
		return refName(c.Victim.Nationality, names)
	case "victim.address":
		return c.Victim.Address
	case "victim.area":
		return refName(c.Victim.Area, names)
	case "victim.nextOfKin.name":
		if c.Victim.NextOfKin == nil {
			return nil
		}
		return c.Victim.NextOfKin.Name
	case "victim.nextOfKin.mobile":
		if c.Victim.NextOfKin == nil {
			return nil
		}
		return c.Victim.NextOfKin.Mobile
	case "followup.follower":
		if c.Followup == nil {
			return nil
		}
		return partyName(c.Followup.Follower)
	case "followup.followedAt":
		if c.Followup == nil {
			return nil
		}
		return dateValue(c.Followup.FollowedAt)
	case "followup.score":
		if c.Followup == nil || c.Followup.Score == nil {
			return nil
		}
		return *c.Followup.Score
	case "followup.outcome":
		if c.Followup == nil {
			return nil
		}
		return c.Followup.Outcome
	default:
		return nil
	}
}
