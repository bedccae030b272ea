// Package storage defines the read-only corpus file-system abstraction.
package storage

import "github.com/starford/doclint/internal/models"

// Provider is the interface for corpus file access. doclint never writes to
// the corpus; the surface is intentionally read-only.
type Provider interface {
	// List returns metadata for every matching file under dir (relative to
	// the corpus root), sorted by path.
	List(dir string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the
	// corpus root).
	Read(path string) ([]byte, error)
}
