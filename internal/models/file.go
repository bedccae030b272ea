package models

import "time"

// FileMetadata is a lightweight representation of a corpus file returned by
// storage listing operations.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
