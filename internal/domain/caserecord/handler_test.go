package caserecord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/CodeTanzania/ewea-case/internal/party"
)

func testParty() *party.Party {
	return &party.Party{
		ID:     uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		Name:   "Asha Juma",
		Email:  "asha.juma@example.com",
		Mobile: "255714001001",
		Role:   "Dispatcher",
	}
}

func newTestServer(svc *Service) *echo.Echo {
	e := echo.New()
	g := e.Group("/v1", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := party.NewContext(c.Request().Context(), testParty())
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})
	NewHandler(svc).RegisterRoutes(g)
	return e
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPostCaseAssignsNumberAndReporter(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &countingGen{})
	e := newTestServer(svc)

	rec := doJSON(e, http.MethodPost, "/v1/cases", `{"description":"Road accident near the market"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	created := &Case{}
	if err := json.Unmarshal(rec.Body.Bytes(), created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !numberPattern.MatchString(created.Number) {
		t.Fatalf("unexpected number %q", created.Number)
	}
	if created.Reporter == nil || created.Reporter.Name != "Asha Juma" {
		t.Fatalf("expected authenticated party as reporter, got %+v", created.Reporter)
	}
	if created.ReportedAt == nil {
		t.Fatal("expected reportedAt filled")
	}
	if created.Stage == nil || created.Severity == nil {
		t.Fatal("expected stage and severity defaults")
	}
}

func TestPostCaseKeepsExplicitReporter(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &countingGen{})
	e := newTestServer(svc)

	body := `{"reporter":{"_id":"00000000-0000-0000-0000-000000000009","name":"Neema Omari"}}`
	rec := doJSON(e, http.MethodPost, "/v1/cases", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	created := &Case{}
	if err := json.Unmarshal(rec.Body.Bytes(), created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Reporter == nil || created.Reporter.Name != "Neema Omari" {
		t.Fatalf("explicit reporter was replaced: %+v", created.Reporter)
	}
}

func TestPostCaseValidationFailureIs400(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &countingGen{})
	e := newTestServer(svc)

	rec := doJSON(e, http.MethodPost, "/v1/cases", `{"followup":{"score":7}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "followup.score") {
		t.Fatalf("expected field detail in body: %s", rec.Body.String())
	}
}

func TestListEnvelope(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &countingGen{})
	e := newTestServer(svc)

	for i := 0; i < 3; i++ {
		if rec := doJSON(e, http.MethodPost, "/v1/cases", `{}`); rec.Code != http.StatusCreated {
			t.Fatalf("seed create failed: %d", rec.Code)
		}
	}

	rec := doJSON(e, http.MethodGet, "/v1/cases?limit=2&page=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	envelope := struct {
		Data         []json.RawMessage `json:"data"`
		Total        int               `json:"total"`
		Limit        int               `json:"limit"`
		Skip         int               `json:"skip"`
		Page         int               `json:"page"`
		Pages        int               `json:"pages"`
		LastModified *string           `json:"lastModified"`
	}{}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if len(envelope.Data) != 2 || envelope.Total != 3 {
		t.Fatalf("expected 2 of 3, got %d of %d", len(envelope.Data), envelope.Total)
	}
	if envelope.Limit != 2 || envelope.Page != 1 || envelope.Pages != 2 {
		t.Fatalf("unexpected paging: %+v", envelope)
	}
	if envelope.LastModified == nil {
		t.Fatal("expected lastModified in envelope")
	}
}

func TestPatchResolvedStampsResolver(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &countingGen{})
	e := newTestServer(svc)

	rec := doJSON(e, http.MethodPost, "/v1/cases", `{}`)
	created := &Case{}
	if err := json.Unmarshal(rec.Body.Bytes(), created); err != nil {
		t.Fatalf("decode created: %v", err)
	}

	rec = doJSON(e, http.MethodPatch, "/v1/cases/"+created.ID.String(),
		`{"resolvedAt":"2026-08-30T12:00:00Z"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	patched := &Case{}
	if err := json.Unmarshal(rec.Body.Bytes(), patched); err != nil {
		t.Fatalf("decode patched: %v", err)
	}
	if patched.ResolvedAt == nil {
		t.Fatal("expected resolvedAt kept")
	}
	if patched.Resolver == nil || patched.Resolver.Name != "Asha Juma" {
		t.Fatalf("expected authenticated party as resolver, got %+v", patched.Resolver)
	}
	if patched.Number != created.Number {
		t.Fatalf("number changed across patch: %q vs %q", patched.Number, created.Number)
	}
}

func TestDeleteThenGetIs404(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &countingGen{})
	e := newTestServer(svc)

	rec := doJSON(e, http.MethodPost, "/v1/cases", `{}`)
	created := &Case{}
	if err := json.Unmarshal(rec.Body.Bytes(), created); err != nil {
		t.Fatalf("decode created: %v", err)
	}

	rec = doJSON(e, http.MethodDelete, "/v1/cases/"+created.ID.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	deleted := &Case{}
	if err := json.Unmarshal(rec.Body.Bytes(), deleted); err != nil {
		t.Fatalf("decode deleted: %v", err)
	}
	if deleted.DeletedAt == nil {
		t.Fatal("expected deletion marker in response")
	}

	rec = doJSON(e, http.MethodGet, "/v1/cases/"+created.ID.String(), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestGetInvalidIDIs400(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &countingGen{})
	e := newTestServer(svc)

	rec := doJSON(e, http.MethodGet, "/v1/cases/not-a-uuid", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestExportHeadersAndBody(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &countingGen{})
	e := newTestServer(svc)

	if rec := doJSON(e, http.MethodPost, "/v1/cases", `{"description":"Cholera suspect"}`); rec.Code != http.StatusCreated {
		t.Fatalf("seed create failed: %d", rec.Code)
	}

	rec := doJSON(e, http.MethodGet, "/v1/cases/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderContentType); got != "text/csv" {
		t.Fatalf("expected text/csv, got %q", got)
	}
	disposition := rec.Header().Get(echo.HeaderContentDisposition)
	if !strings.Contains(disposition, "attachment") || !strings.Contains(disposition, "cases_exports_") {
		t.Fatalf("unexpected content disposition %q", disposition)
	}

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d", len(lines))
	}
}

func TestSchemaEndpoint(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &countingGen{})
	e := newTestServer(svc)

	// served with and without the trailing slash
	for _, target := range []string{"/v1/cases/schema", "/v1/cases/schema/"} {
		rec := doJSON(e, http.MethodGet, target, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", target, rec.Code)
		}

		doc := map[string]interface{}{}
		if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
			t.Fatalf("decode schema: %v", err)
		}
		if _, ok := doc["properties"]; !ok {
			t.Fatalf("schema missing properties for %s", target)
		}
	}
}

func TestPutPreservesNumber(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &countingGen{})
	e := newTestServer(svc)

	rec := doJSON(e, http.MethodPost, "/v1/cases", `{"description":"Initial"}`)
	created := &Case{}
	if err := json.Unmarshal(rec.Body.Bytes(), created); err != nil {
		t.Fatalf("decode created: %v", err)
	}

	rec = doJSON(e, http.MethodPut, "/v1/cases/"+created.ID.String(),
		`{"description":"Rewritten","number":"1999-01-0001-XX"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	replaced := &Case{}
	if err := json.Unmarshal(rec.Body.Bytes(), replaced); err != nil {
		t.Fatalf("decode replaced: %v", err)
	}
	if replaced.Number != created.Number {
		t.Fatalf("number changed across put: %q vs %q", replaced.Number, created.Number)
	}

	stored, err := repo.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get stored: %v", err)
	}
	if stored.Description != "Rewritten" {
		t.Fatalf("replacement not persisted: %q", stored.Description)
	}
}
