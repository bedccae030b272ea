// Package report renders an integrity report for machines and humans and
// maps it to a process exit status.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/starford/doclint/internal/check"
	"github.com/starford/doclint/internal/models"
)

// Output formats.
const (
	FormatJSON  = "json"
	FormatTable = "table"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitFatal = 1
	ExitUsage = 2
)

// JSON serializes the report for machine consumption. Struct field order
// and sorted map keys make the output byte-identical across runs over an
// unchanged corpus.
func JSON(r *check.Report) ([]byte, error) {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("report: marshal: %w", err)
	}
	return append(out, '\n'), nil
}

// ExitCode maps a report to the process exit status: 0 when clean or
// warnings-only, 1 when fatal issues are present.
func ExitCode(r *check.Report, strict bool) int {
	if r.Fatal(strict) {
		return ExitFatal
	}
	return ExitOK
}

// Table renders a human-readable summary: issue counts first, then a flat
// listing per section. The table output is presentational only, not a
// stable contract.
func Table(r *check.Report) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "documents\t%d\n", r.Summary.Documents)
	fmt.Fprintf(w, "load errors\t%d\n", r.Summary.LoadErrors)
	fmt.Fprintf(w, "frontmatter errors\t%d\n", r.Summary.FrontmatterErrors)
	fmt.Fprintf(w, "dangling references\t%d\n", r.Summary.DanglingReferences)
	fmt.Fprintf(w, "ambiguous references\t%d\n", r.Summary.AmbiguousReferences)
	fmt.Fprintf(w, "orphan documents\t%d\n", r.Summary.OrphanDocuments)
	fmt.Fprintf(w, "taxonomy violations\t%d\n", r.Summary.TaxonomyViolations)
	fmt.Fprintf(w, "stale documents\t%d\n", r.Summary.StaleDocuments)
	_ = w.Flush()

	listing := &bytes.Buffer{}
	lw := tabwriter.NewWriter(listing, 0, 4, 2, ' ', 0)

	for _, e := range r.LoadErrors {
		fmt.Fprintf(lw, "LOAD\t%s\t%s\n", e.Path, e.Reason)
	}
	for _, path := range sortedKeys(r.FrontmatterErrors) {
		for _, fe := range r.FrontmatterErrors[path] {
			fmt.Fprintf(lw, "%s\t%s\t%s: %s\n", strings.ToUpper(string(fe.Severity)), path, fe.Field, fe.Reason)
		}
	}
	for _, d := range r.DanglingReferences {
		fmt.Fprintf(lw, "DANGLING\t%s\t%s\n", d.SourcePath, d.RawTarget)
	}
	for _, a := range r.AmbiguousReferences {
		fmt.Fprintf(lw, "AMBIGUOUS\t%s\t%s -> %s\n", a.SourcePath, a.RawTarget, strings.Join(a.Candidates, ", "))
	}
	for _, p := range r.OrphanDocuments {
		fmt.Fprintf(lw, "ORPHAN\t%s\t\n", p)
	}
	for _, v := range r.TaxonomyViolations {
		fmt.Fprintf(lw, "TAXONOMY\t%s\t%s: %q not in vocabulary\n", v.Path, v.Field, v.Value)
	}
	for _, s := range r.StaleDocuments {
		fmt.Fprintf(lw, "STALE\t%s\tupdated %s, threshold %dd\n", s.Path, s.Updated, s.ThresholdDays)
	}
	_ = lw.Flush()

	if listing.Len() > 0 {
		buf.WriteString("\n")
		buf.Write(listing.Bytes())
	}
	return buf.String()
}

func sortedKeys(m map[string][]models.FieldError) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
