package api

import (
	"sync/atomic"

	"github.com/starford/doclint/internal/check"
)

// Service holds the latest report as an atomically swapped immutable
// snapshot. Watch-driven re-runs call SetReport; readers never observe a
// partially updated report.
type Service struct {
	latest atomic.Pointer[check.Report]
}

// NewService creates a Service with no report yet.
func NewService() *Service {
	return &Service{}
}

// SetReport swaps in a new report snapshot.
func (s *Service) SetReport(r *check.Report) {
	s.latest.Store(r)
}

// Report returns the latest report, or nil when no run has completed yet.
func (s *Service) Report() *check.Report {
	return s.latest.Load()
}
