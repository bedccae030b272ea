// Package models defines the domain types for doclint.
package models

// RawDocument is a corpus file as loaded from disk, before any validation.
// Frontmatter holds the decoded YAML mapping as-is (untyped); Body is the
// text following the closing delimiter.
type RawDocument struct {
	Path        string         `json:"path"`
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	Body        string         `json:"body"`
	Checksum    string         `json:"checksum"`
}

// LoadError records a per-file failure during loading. The file is excluded
// from validation and extraction but, when the path is known, still counts
// as a graph node (it can be a legitimate link target).
type LoadError struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Severity of a field-level validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// FieldError is a single frontmatter validation finding.
type FieldError struct {
	Field    string   `json:"field"`
	Reason   string   `json:"reason"`
	Severity Severity `json:"severity"`
}

// ValidatedDocument is the narrowed, strongly-typed form of a RawDocument
// whose frontmatter passed schema validation. A document is either fully
// valid or carries a non-empty error list; never partially valid.
type ValidatedDocument struct {
	Path     string   `json:"path"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Type     string   `json:"type"`
	Tags     []string `json:"tags,omitempty"`
	Status   string   `json:"status,omitempty"`
	Updated  string   `json:"updated"`
	Version  string   `json:"version,omitempty"`
	// Extra holds unknown frontmatter fields, preserved for forward
	// compatibility but never validated.
	Extra map[string]any `json:"extra,omitempty"`
}

// Resolution classifies the outcome of resolving a reference mention
// against the loaded file set.
type Resolution string

const (
	ResolutionResolved  Resolution = "resolved"
	ResolutionAmbiguous Resolution = "ambiguous"
	ResolutionDangling  Resolution = "dangling"
)

// ReferenceMention is one occurrence of a cross-reference in a document
// body. Mentions are not deduplicated; a document mentioning the same
// target twice produces two mentions.
type ReferenceMention struct {
	SourcePath string     `json:"source_path"`
	RawTarget  string     `json:"raw_target"`
	Resolution Resolution `json:"resolution"`
	// ResolvedPath is set only when Resolution is "resolved".
	ResolvedPath string `json:"resolved_path,omitempty"`
	// Candidates lists the competing targets when Resolution is "ambiguous".
	Candidates []string `json:"candidates,omitempty"`
}
