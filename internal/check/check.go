// Package check runs the integrity checks over validated documents and the
// reference graph, producing a single structured report.
package check

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/doclint/internal/graph"
	"github.com/starford/doclint/internal/models"
	"github.com/starford/doclint/internal/schema"
)

// Inputs are the immutable snapshots a run consumes. Nothing here is
// mutated by the checker.
type Inputs struct {
	Documents   []models.ValidatedDocument
	FieldErrors map[string][]models.FieldError
	LoadErrors  []models.LoadError
	Mentions    []models.ReferenceMention
	Graph       *graph.Graph
}

// Options configure the hygiene checks.
type Options struct {
	Schema      *schema.Schema
	EntryPoints []string
	// StalenessDays maps a document type to its freshness threshold.
	// Types without an entry fall back to DefaultStalenessDays.
	StalenessDays        map[string]int
	DefaultStalenessDays int
	// Now is injected so reports carry no wall-clock of their own.
	Now time.Time
}

// Run executes the four checks. They are order-insensitive and each writes
// a disjoint report section, so they run concurrently without locking.
func Run(ctx context.Context, in Inputs, opts Options) *Report {
	r := &Report{
		LoadErrors:        append([]models.LoadError(nil), in.LoadErrors...),
		FrontmatterErrors: make(map[string][]models.FieldError, len(in.FieldErrors)),
	}
	for path, errs := range in.FieldErrors {
		if len(errs) > 0 {
			r.FrontmatterErrors[path] = errs
		}
	}
	sort.Slice(r.LoadErrors, func(i, j int) bool { return r.LoadErrors[i].Path < r.LoadErrors[j].Path })

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error { checkReferences(in, r); return nil })
	g.Go(func() error { checkOrphans(in, opts, r); return nil })
	g.Go(func() error { checkTaxonomy(in, opts, r); return nil })
	g.Go(func() error { checkStaleness(in, opts, r); return nil })
	_ = g.Wait()

	r.fillSummary(len(in.Graph.Nodes()))
	return r
}

// checkReferences surfaces every mention without a clean resolution,
// verbatim, classified three ways: resolved mentions become graph edges,
// dangling and ambiguous ones become report entries.
func checkReferences(in Inputs, r *Report) {
	for _, m := range in.Mentions {
		switch m.Resolution {
		case models.ResolutionDangling:
			r.DanglingReferences = append(r.DanglingReferences, DanglingReference{
				SourcePath: m.SourcePath,
				RawTarget:  m.RawTarget,
			})
		case models.ResolutionAmbiguous:
			r.AmbiguousReferences = append(r.AmbiguousReferences, AmbiguousReference{
				SourcePath: m.SourcePath,
				RawTarget:  m.RawTarget,
				Candidates: m.Candidates,
			})
		}
	}
	sort.Slice(r.DanglingReferences, func(i, j int) bool {
		a, b := r.DanglingReferences[i], r.DanglingReferences[j]
		if a.SourcePath != b.SourcePath {
			return a.SourcePath < b.SourcePath
		}
		return a.RawTarget < b.RawTarget
	})
	sort.Slice(r.AmbiguousReferences, func(i, j int) bool {
		a, b := r.AmbiguousReferences[i], r.AmbiguousReferences[j]
		if a.SourcePath != b.SourcePath {
			return a.SourcePath < b.SourcePath
		}
		return a.RawTarget < b.RawTarget
	})
}

// checkOrphans is a pure in-degree scan over the graph.
func checkOrphans(in Inputs, opts Options, r *Report) {
	r.OrphanDocuments = in.Graph.Orphans(opts.EntryPoints)
}

// checkTaxonomy confirms category, type, and status membership in the
// configured closed sets, and tag membership in the optional vocabulary.
// An empty vocabulary disables the tag sub-check.
func checkTaxonomy(in Inputs, opts Options, r *Report) {
	s := opts.Schema
	for _, doc := range in.Documents {
		if doc.Category != "" && !contains(s.CategoryEnum, doc.Category) {
			r.TaxonomyViolations = append(r.TaxonomyViolations, TaxonomyViolation{Path: doc.Path, Field: "category", Value: doc.Category})
		}
		if doc.Type != "" && !contains(s.TypeEnum, doc.Type) {
			r.TaxonomyViolations = append(r.TaxonomyViolations, TaxonomyViolation{Path: doc.Path, Field: "type", Value: doc.Type})
		}
		if doc.Status != "" && !contains(s.StatusEnum, doc.Status) {
			r.TaxonomyViolations = append(r.TaxonomyViolations, TaxonomyViolation{Path: doc.Path, Field: "status", Value: doc.Status})
		}
		if len(s.TagVocabulary) > 0 {
			for _, tag := range doc.Tags {
				if !contains(s.TagVocabulary, tag) {
					r.TaxonomyViolations = append(r.TaxonomyViolations, TaxonomyViolation{Path: doc.Path, Field: "tags", Value: tag})
				}
			}
		}
	}
	sort.Slice(r.TaxonomyViolations, func(i, j int) bool {
		a, b := r.TaxonomyViolations[i], r.TaxonomyViolations[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Field != b.Field {
			return a.Field < b.Field
		}
		return a.Value < b.Value
	})
}

// checkStaleness compares each document's updated date against now minus
// the threshold for its type.
func checkStaleness(in Inputs, opts Options, r *Report) {
	for _, doc := range in.Documents {
		if doc.Updated == "" {
			continue
		}
		updated, err := time.Parse("2006-01-02", doc.Updated)
		if err != nil {
			continue
		}
		days, ok := opts.StalenessDays[doc.Type]
		if !ok {
			days = opts.DefaultStalenessDays
		}
		if days <= 0 {
			continue
		}
		cutoff := opts.Now.AddDate(0, 0, -days)
		if updated.Before(cutoff) {
			r.StaleDocuments = append(r.StaleDocuments, StaleDocument{
				Path:          doc.Path,
				Type:          doc.Type,
				Updated:       doc.Updated,
				ThresholdDays: days,
			})
		}
	}
	sort.Slice(r.StaleDocuments, func(i, j int) bool { return r.StaleDocuments[i].Path < r.StaleDocuments[j].Path })
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
