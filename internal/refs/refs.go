// Package refs extracts cross-reference mentions from document bodies and
// resolves them against the loaded file set.
package refs

import (
	"regexp"
	"sort"
	"strings"

	"github.com/starford/doclint/internal/models"
)

var (
	mdLinkRe         = regexp.MustCompile(`\[[^\]]*\]\(([^()\s]+\.md)\)`)
	relatedHeadingRe = regexp.MustCompile(`(?i)^#{1,6}\s+related\s+documents\b`)
	headingRe        = regexp.MustCompile(`^#{1,6}\s`)
	bulletTokenRe    = regexp.MustCompile(`[\w@/.-]+\.md`)
)

// Extract scans a document body line by line with two independent rules:
// markdown links whose target ends in .md, and bullet-line tokens inside a
// "Related Documents" section. Every occurrence is kept; mentions are not
// deduplicated. Returned targets are stripped of any leading "@" or "./".
func Extract(sourcePath, body string) []models.ReferenceMention {
	var out []models.ReferenceMention
	emit := func(raw string) {
		out = append(out, models.ReferenceMention{
			SourcePath: sourcePath,
			RawTarget:  normalize(raw),
		})
	}

	inRelated := false
	for _, line := range strings.Split(body, "\n") {
		if relatedHeadingRe.MatchString(line) {
			inRelated = true
		} else if headingRe.MatchString(line) {
			inRelated = false
		}

		for _, m := range mdLinkRe.FindAllStringSubmatch(line, -1) {
			emit(m[1])
		}

		if inRelated && strings.HasPrefix(strings.TrimSpace(line), "-") {
			if tok := bulletTokenRe.FindString(line); tok != "" {
				emit(tok)
			}
		}
	}
	return out
}

func normalize(raw string) string {
	raw = strings.TrimPrefix(raw, "@")
	raw = strings.TrimPrefix(raw, "./")
	return raw
}

// Resolver resolves raw mention targets against the loaded path set using
// suffix matching. An exact full-path match always wins; a filename-only
// match with multiple candidates is surfaced as ambiguous rather than
// silently picking one.
type Resolver struct {
	exact    map[string]struct{}
	suffixes map[string][]string // final path segment -> matching paths, sorted
}

// NewResolver builds a resolver over the loaded path set. The index is
// immutable after construction.
func NewResolver(paths []string) *Resolver {
	r := &Resolver{
		exact:    make(map[string]struct{}, len(paths)),
		suffixes: make(map[string][]string),
	}
	for _, p := range paths {
		r.exact[p] = struct{}{}
		base := p
		if i := strings.LastIndex(p, "/"); i >= 0 {
			base = p[i+1:]
		}
		r.suffixes[base] = append(r.suffixes[base], p)
	}
	for base := range r.suffixes {
		sort.Strings(r.suffixes[base])
	}
	return r
}

// Resolve classifies a single mention as resolved, ambiguous, or dangling.
func (r *Resolver) Resolve(m models.ReferenceMention) models.ReferenceMention {
	target := m.RawTarget

	if _, ok := r.exact[target]; ok {
		m.Resolution = models.ResolutionResolved
		m.ResolvedPath = target
		return m
	}

	base := target
	if i := strings.LastIndex(target, "/"); i >= 0 {
		base = target[i+1:]
	}

	var candidates []string
	for _, p := range r.suffixes[base] {
		if p == target || strings.HasSuffix(p, "/"+target) {
			candidates = append(candidates, p)
		}
	}

	switch len(candidates) {
	case 0:
		m.Resolution = models.ResolutionDangling
	case 1:
		m.Resolution = models.ResolutionResolved
		m.ResolvedPath = candidates[0]
	default:
		m.Resolution = models.ResolutionAmbiguous
		m.Candidates = candidates
	}
	return m
}

// ResolveAll resolves a batch of mentions, preserving order.
func (r *Resolver) ResolveAll(mentions []models.ReferenceMention) []models.ReferenceMention {
	out := make([]models.ReferenceMention, len(mentions))
	for i, m := range mentions {
		out[i] = r.Resolve(m)
	}
	return out
}
