package check

import (
	"github.com/starford/doclint/internal/models"
)

// DanglingReference is a mention whose target resolves to no loaded file.
// RawTarget is kept verbatim so the offending text can be grep-fixed.
type DanglingReference struct {
	SourcePath string `json:"source_path"`
	RawTarget  string `json:"raw_target"`
}

// AmbiguousReference is a mention matching two or more loaded files by
// suffix. Silent resolution would mask real corpus inconsistencies, so the
// candidates are reported instead.
type AmbiguousReference struct {
	SourcePath string   `json:"source_path"`
	RawTarget  string   `json:"raw_target"`
	Candidates []string `json:"candidates"`
}

// TaxonomyViolation is a frontmatter value outside the controlled vocabulary.
type TaxonomyViolation struct {
	Path  string `json:"path"`
	Field string `json:"field"`
	Value string `json:"value"`
}

// StaleDocument is a document whose updated date exceeds the freshness
// threshold for its type.
type StaleDocument struct {
	Path          string `json:"path"`
	Type          string `json:"type"`
	Updated       string `json:"updated"`
	ThresholdDays int    `json:"threshold_days"`
}

// Summary holds per-section issue counts.
type Summary struct {
	Documents           int `json:"documents"`
	LoadErrors          int `json:"load_errors"`
	FrontmatterErrors   int `json:"frontmatter_errors"`
	DanglingReferences  int `json:"dangling_references"`
	AmbiguousReferences int `json:"ambiguous_references"`
	OrphanDocuments     int `json:"orphan_documents"`
	TaxonomyViolations  int `json:"taxonomy_violations"`
	StaleDocuments      int `json:"stale_documents"`
}

// Report is the single output of an integrity run. It is built once,
// append-only during the checking phase, and never mutated afterwards.
// All sections are sorted so two runs over an unchanged corpus serialize
// byte-identically.
type Report struct {
	LoadErrors          []models.LoadError             `json:"load_errors"`
	FrontmatterErrors   map[string][]models.FieldError `json:"frontmatter_errors"`
	DanglingReferences  []DanglingReference            `json:"dangling_references"`
	AmbiguousReferences []AmbiguousReference           `json:"ambiguous_references"`
	OrphanDocuments     []string                       `json:"orphan_documents"`
	TaxonomyViolations  []TaxonomyViolation            `json:"taxonomy_violations"`
	StaleDocuments      []StaleDocument                `json:"stale_documents"`
	Summary             Summary                        `json:"summary"`
}

// Fatal reports whether the run should fail CI. Load errors, error-severity
// frontmatter findings, and dangling or ambiguous references are always
// fatal; hygiene sections (orphans, taxonomy, staleness) become fatal only
// in strict mode. Warning-severity frontmatter findings never gate.
func (r *Report) Fatal(strict bool) bool {
	if len(r.LoadErrors) > 0 || len(r.DanglingReferences) > 0 || len(r.AmbiguousReferences) > 0 {
		return true
	}
	for _, errs := range r.FrontmatterErrors {
		for _, e := range errs {
			if e.Severity == models.SeverityError {
				return true
			}
		}
	}
	if strict {
		return len(r.OrphanDocuments) > 0 || len(r.TaxonomyViolations) > 0 || len(r.StaleDocuments) > 0
	}
	return false
}

func (r *Report) fillSummary(documents int) {
	// Empty sections serialize as [] rather than null so the JSON schema is
	// stable regardless of which checks found issues.
	if r.LoadErrors == nil {
		r.LoadErrors = []models.LoadError{}
	}
	if r.DanglingReferences == nil {
		r.DanglingReferences = []DanglingReference{}
	}
	if r.AmbiguousReferences == nil {
		r.AmbiguousReferences = []AmbiguousReference{}
	}
	if r.OrphanDocuments == nil {
		r.OrphanDocuments = []string{}
	}
	if r.TaxonomyViolations == nil {
		r.TaxonomyViolations = []TaxonomyViolation{}
	}
	if r.StaleDocuments == nil {
		r.StaleDocuments = []StaleDocument{}
	}

	n := 0
	for _, errs := range r.FrontmatterErrors {
		n += len(errs)
	}
	r.Summary = Summary{
		Documents:           documents,
		LoadErrors:          len(r.LoadErrors),
		FrontmatterErrors:   n,
		DanglingReferences:  len(r.DanglingReferences),
		AmbiguousReferences: len(r.AmbiguousReferences),
		OrphanDocuments:     len(r.OrphanDocuments),
		TaxonomyViolations:  len(r.TaxonomyViolations),
		StaleDocuments:      len(r.StaleDocuments),
	}
}
