// Package schema validates document frontmatter against a declared schema.
package schema

import (
	"fmt"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/doclint/internal/models"
)

// fieldOrder is the declared field order. Validation walks fields in this
// order so error lists are reproducible across runs.
var fieldOrder = []string{"title", "category", "type", "tags", "status", "updated", "version"}

var semverRe = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// Schema holds the controlled vocabulary and required-field configuration
// a corpus is validated against.
type Schema struct {
	// RequiredFields lists fields that must be present and non-empty.
	// "updated" is always required regardless of this list; staleness
	// checking depends on it.
	RequiredFields []string
	CategoryEnum   []string
	TypeEnum       []string
	StatusEnum     []string
	// TagVocabulary is optional; empty disables the tag membership check.
	TagVocabulary []string
}

// required reports whether field must be present.
func (s *Schema) required(field string) bool {
	if field == "updated" {
		return true
	}
	for _, f := range s.RequiredFields {
		if f == field {
			return true
		}
	}
	return false
}

// Validate narrows a RawDocument into a ValidatedDocument. The result is
// all-or-nothing: any error-severity finding yields a nil document and the
// full finding list. Warning-severity findings (a version string that is
// not MAJOR.MINOR.PATCH) do not invalidate the document and are returned
// alongside it. Unknown extra fields are preserved, never rejected.
func (s *Schema) Validate(raw models.RawDocument) (*models.ValidatedDocument, []models.FieldError) {
	var errs []models.FieldError
	doc := &models.ValidatedDocument{Path: raw.Path}

	addErr := func(field, reason string) {
		errs = append(errs, models.FieldError{Field: field, Reason: reason, Severity: models.SeverityError})
	}
	addWarn := func(field, reason string) {
		errs = append(errs, models.FieldError{Field: field, Reason: reason, Severity: models.SeverityWarning})
	}

	for _, field := range fieldOrder {
		value, present := rawValue(raw.Frontmatter, field)

		if !present {
			if s.required(field) {
				addErr(field, "required field is missing")
			}
			continue
		}

		switch field {
		case "title", "category", "type", "status", "version":
			str, ok := stringValue(value)
			if !ok {
				addErr(field, fmt.Sprintf("expected a string, got %T", value))
				continue
			}
			if str == "" && s.required(field) {
				addErr(field, "required field is empty")
				continue
			}
			switch field {
			case "title":
				doc.Title = str
			case "category":
				doc.Category = str
			case "type":
				doc.Type = str
			case "status":
				doc.Status = str
			case "version":
				if str != "" && !semverRe.MatchString(str) {
					addWarn(field, fmt.Sprintf("%q does not match MAJOR.MINOR.PATCH", str))
				}
				doc.Version = str
			}

		case "tags":
			tags, ok := stringList(value)
			if !ok {
				addErr(field, "expected a list of strings")
				continue
			}
			doc.Tags = tags

		case "updated":
			str, ok := dateValue(value)
			if !ok {
				addErr(field, fmt.Sprintf("expected an ISO date string, got %T", value))
				continue
			}
			if err := validation.Validate(str, validation.Required, validation.Date("2006-01-02")); err != nil {
				addErr(field, fmt.Sprintf("%q is not a valid ISO date: %v", str, err))
				continue
			}
			doc.Updated = str
		}
	}

	// Preserve unknown fields for forward compatibility.
	for k, v := range raw.Frontmatter {
		if !isKnownField(k) {
			if doc.Extra == nil {
				doc.Extra = make(map[string]any)
			}
			doc.Extra[k] = v
		}
	}

	for _, e := range errs {
		if e.Severity == models.SeverityError {
			return nil, errs
		}
	}
	return doc, errs
}

func isKnownField(name string) bool {
	for _, f := range fieldOrder {
		if f == name {
			return true
		}
	}
	return false
}

func rawValue(fm map[string]any, field string) (any, bool) {
	if fm == nil {
		return nil, false
	}
	v, ok := fm[field]
	return v, ok
}

// stringValue narrows a frontmatter scalar to a string. YAML decodes
// unquoted dates and numbers to non-string types; those are rejected here
// rather than coerced so type assumptions stay at this boundary.
func stringValue(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// dateValue narrows a frontmatter date. yaml.v3 resolves unquoted ISO dates
// to time.Time during untyped decoding; both that and a plain string are
// accepted.
func dateValue(v any) (string, bool) {
	switch d := v.(type) {
	case string:
		return d, true
	case time.Time:
		return d.Format("2006-01-02"), true
	default:
		return "", false
	}
}

// stringList narrows a frontmatter sequence to []string. A bare string is
// accepted as a single-element list (a common authoring shorthand).
func stringList(v any) ([]string, bool) {
	switch list := v.(type) {
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case []string:
		return list, true
	case string:
		return []string{list}, true
	case nil:
		return nil, true
	default:
		return nil, false
	}
}
