package caserecord

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/CodeTanzania/ewea-case/internal/party"
)

// runBodyMiddleware pushes body through mw and returns what the
// downstream handler would read.
func runBodyMiddleware(t *testing.T, mw echo.MiddlewareFunc, body string, withParty bool) []byte {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/cases", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if withParty {
		req = req.WithContext(party.NewContext(req.Context(), testParty()))
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	var seen []byte
	handler := mw(func(c echo.Context) error {
		raw, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return err
		}
		seen = raw
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware: %v", err)
	}
	return seen
}

func TestEnsureReporterDefaultsToParty(t *testing.T) {
	seen := runBodyMiddleware(t, EnsureReporter, `{"description":"Fire outbreak"}`, true)

	body := map[string]interface{}{}
	if err := json.Unmarshal(seen, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	reporter, ok := body["reporter"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected reporter injected, got %v", body["reporter"])
	}
	if reporter["name"] != "Asha Juma" {
		t.Fatalf("unexpected reporter %v", reporter)
	}
	if body["description"] != "Fire outbreak" {
		t.Fatal("original body fields lost")
	}
}

func TestEnsureReporterKeepsClientReporter(t *testing.T) {
	in := `{"reporter":{"name":"Neema Omari"}}`
	seen := runBodyMiddleware(t, EnsureReporter, in, true)

	body := map[string]interface{}{}
	if err := json.Unmarshal(seen, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	reporter := body["reporter"].(map[string]interface{})
	if reporter["name"] != "Neema Omari" {
		t.Fatalf("client reporter was replaced: %v", reporter)
	}
}

func TestEnsureReporterWithoutPartyLeavesBodyAlone(t *testing.T) {
	seen := runBodyMiddleware(t, EnsureReporter, `{"description":"No auth"}`, false)

	body := map[string]interface{}{}
	if err := json.Unmarshal(seen, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if _, ok := body["reporter"]; ok {
		t.Fatal("reporter injected without an authenticated party")
	}
}

func TestEnsureResolverStampsOnResolution(t *testing.T) {
	seen := runBodyMiddleware(t, EnsureResolver, `{"resolvedAt":"2026-08-30T12:00:00Z"}`, true)

	body := map[string]interface{}{}
	if err := json.Unmarshal(seen, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	resolver, ok := body["resolver"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected resolver injected, got %v", body["resolver"])
	}
	if resolver["name"] != "Asha Juma" {
		t.Fatalf("unexpected resolver %v", resolver)
	}
}

func TestEnsureResolverStampsOnCompletedAt(t *testing.T) {
	seen := runBodyMiddleware(t, EnsureResolver, `{"completedAt":"2026-08-30T12:00:00Z"}`, true)

	body := map[string]interface{}{}
	if err := json.Unmarshal(seen, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	resolver, ok := body["resolver"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected resolver injected for completedAt, got %v", body["resolver"])
	}
	if resolver["name"] != "Asha Juma" {
		t.Fatalf("unexpected resolver %v", resolver)
	}
	if resolvedAt, ok := body["resolvedAt"].(string); !ok || resolvedAt == "" {
		t.Fatalf("expected resolvedAt stamped, got %v", body["resolvedAt"])
	}
}

func TestEnsureResolverStampsResolvedAtForResolverOnly(t *testing.T) {
	seen := runBodyMiddleware(t, EnsureResolver, `{"resolver":{"name":"Neema Omari"}}`, true)

	body := map[string]interface{}{}
	if err := json.Unmarshal(seen, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	resolver := body["resolver"].(map[string]interface{})
	if resolver["name"] != "Neema Omari" {
		t.Fatalf("client resolver was replaced: %v", resolver)
	}
	resolvedAt, ok := body["resolvedAt"].(string)
	if !ok || resolvedAt == "" {
		t.Fatalf("expected resolvedAt stamped, got %v", body["resolvedAt"])
	}
	if _, err := time.Parse(time.RFC3339, resolvedAt); err != nil {
		t.Fatalf("resolvedAt is not a timestamp: %q", resolvedAt)
	}
}

func TestEnsureResolverSkipsUnresolvedUpdates(t *testing.T) {
	seen := runBodyMiddleware(t, EnsureResolver, `{"remarks":"still open"}`, true)

	body := map[string]interface{}{}
	if err := json.Unmarshal(seen, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if _, ok := body["resolver"]; ok {
		t.Fatal("resolver injected on an update that does not resolve")
	}
}

func TestEnsureResolverKeepsClientResolver(t *testing.T) {
	in := `{"resolvedAt":"2026-08-30T12:00:00Z","resolver":{"name":"Neema Omari"}}`
	seen := runBodyMiddleware(t, EnsureResolver, in, true)

	body := map[string]interface{}{}
	if err := json.Unmarshal(seen, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	resolver := body["resolver"].(map[string]interface{})
	if resolver["name"] != "Neema Omari" {
		t.Fatalf("client resolver was replaced: %v", resolver)
	}
}

func TestBodyMiddlewaresPassMalformedBodiesThrough(t *testing.T) {
	seen := runBodyMiddleware(t, EnsureReporter, `{not json`, true)
	if string(seen) != `{not json` {
		t.Fatalf("malformed body was altered: %q", seen)
	}
}
