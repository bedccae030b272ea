// Package apperr defines sentinel errors shared across doclint packages.
package apperr

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrMalformedFrontmatter = errors.New("malformed frontmatter")
	ErrInvalidConfig        = errors.New("invalid configuration")
)
