package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/doclint/internal/check"
	"github.com/starford/doclint/internal/models"
)

// testEnv builds a service and router. authToken="" means auth disabled.
func testEnv(t *testing.T, authToken string) (*Service, http.Handler) {
	t.Helper()
	svc := NewService()
	router := NewRouter(svc, authToken != "", authToken, nil)
	return svc, router
}

func sampleReport() *check.Report {
	rep := &check.Report{
		LoadErrors: []models.LoadError{},
		FrontmatterErrors: map[string][]models.FieldError{
			"broken.md": {{Field: "title", Reason: "required field is missing", Severity: models.SeverityError}},
		},
		DanglingReferences: []check.DanglingReference{
			{SourcePath: "a.md", RawTarget: "missing.md"},
		},
		AmbiguousReferences: []check.AmbiguousReference{},
		OrphanDocuments:     []string{"lonely.md"},
		TaxonomyViolations:  []check.TaxonomyViolation{},
		StaleDocuments:      []check.StaleDocument{},
	}
	rep.Summary = check.Summary{
		Documents:          3,
		FrontmatterErrors:  1,
		DanglingReferences: 1,
		OrphanDocuments:    1,
	}
	return rep
}

func TestGetReport_BeforeFirstRun(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/report", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	var body errResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Error != "no report available yet" {
		t.Errorf("error = %q", body.Error)
	}
}

func TestGetReport(t *testing.T) {
	svc, router := testEnv(t, "")
	svc.SetReport(sampleReport())

	req := httptest.NewRequest(http.MethodGet, "/report", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var rep check.Report
	if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rep.DanglingReferences) != 1 || rep.DanglingReferences[0].RawTarget != "missing.md" {
		t.Errorf("dangling = %+v", rep.DanglingReferences)
	}
	if len(rep.OrphanDocuments) != 1 {
		t.Errorf("orphans = %+v", rep.OrphanDocuments)
	}
}

func TestGetSummary(t *testing.T) {
	svc, router := testEnv(t, "")
	svc.SetReport(sampleReport())

	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var s check.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Documents != 3 || s.DanglingReferences != 1 {
		t.Errorf("summary = %+v", s)
	}
}

func TestSetReport_SwapsSnapshot(t *testing.T) {
	svc, router := testEnv(t, "")
	svc.SetReport(sampleReport())

	next := sampleReport()
	next.Summary.Documents = 9
	svc.SetReport(next)

	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var s check.Summary
	_ = json.Unmarshal(w.Body.Bytes(), &s)
	if s.Documents != 9 {
		t.Errorf("documents = %d, want latest snapshot", s.Documents)
	}
}

func TestAuthDisabled(t *testing.T) {
	svc, router := testEnv(t, "")
	svc.SetReport(sampleReport())

	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 with auth disabled", w.Code)
	}
}

func TestAuthTokenMode(t *testing.T) {
	svc, router := testEnv(t, "sekrit")
	svc.SetReport(sampleReport())

	// No header.
	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no header status = %d, want 401", w.Code)
	}

	// Wrong token.
	req = httptest.NewRequest(http.MethodGet, "/summary", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token status = %d, want 401", w.Code)
	}

	// Correct token.
	req = httptest.NewRequest(http.MethodGet, "/summary", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token status = %d, want 200", w.Code)
	}
}
