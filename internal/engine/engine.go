// Package engine runs the integrity pipeline: load, validate, extract,
// build the reference graph, and check.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/doclint/internal/cache"
	"github.com/starford/doclint/internal/check"
	"github.com/starford/doclint/internal/graph"
	"github.com/starford/doclint/internal/loader"
	"github.com/starford/doclint/internal/models"
	"github.com/starford/doclint/internal/refs"
	"github.com/starford/doclint/internal/schema"
	"github.com/starford/doclint/internal/storage"
)

// Params wire an Engine.
type Params struct {
	Store                storage.Provider
	Schema               *schema.Schema
	EntryPoints          []string
	StalenessDays        map[string]int
	DefaultStalenessDays int
	// Cache is optional; nil disables caching.
	Cache  *cache.DB
	Logger *slog.Logger
}

// Engine executes one-shot integrity runs over an immutable per-run
// snapshot of the corpus. It holds no mutable state between runs.
type Engine struct {
	p Params
}

// New creates an Engine.
func New(p Params) *Engine {
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	return &Engine{p: p}
}

// fileResult is the per-file outcome of the parallel stages, aggregated at
// the fan-in barrier before graph construction.
type fileResult struct {
	doc         *models.ValidatedDocument
	fieldErrors []models.FieldError
	loadError   *models.LoadError
	mentions    []models.ReferenceMention
}

// Run executes the full pipeline. now is injected so staleness evaluation
// and report output are deterministic.
func (e *Engine) Run(ctx context.Context, now time.Time) (*check.Report, error) {
	metas, err := e.p.Store.List("")
	if err != nil {
		return nil, fmt.Errorf("engine: list corpus: %w", err)
	}

	results := make([]fileResult, len(metas))

	// Split cache hits from files that need the full per-file stages.
	var pending []int
	for i, m := range metas {
		if e.p.Cache != nil {
			entry, ok, getErr := e.p.Cache.Get(m.Path, m.Checksum)
			if getErr != nil {
				e.p.Logger.Warn("cache lookup failed", slog.String("path", m.Path), slog.String("error", getErr.Error()))
			}
			if ok {
				results[i] = resultFromCache(m.Path, entry)
				continue
			}
		}
		pending = append(pending, i)
	}

	if len(pending) > 0 {
		if err := e.processPending(ctx, metas, pending, results); err != nil {
			return nil, err
		}
	}

	if e.p.Cache != nil {
		live := make(map[string]struct{}, len(metas))
		for _, m := range metas {
			live[m.Path] = struct{}{}
		}
		if pruneErr := e.p.Cache.Prune(live); pruneErr != nil {
			e.p.Logger.Warn("cache prune failed", slog.String("error", pruneErr.Error()))
		}
	}

	// Fan-in: aggregate immutable snapshots for the graph and checks.
	paths := make([]string, len(metas))
	for i, m := range metas {
		paths[i] = m.Path
	}

	var (
		docs        []models.ValidatedDocument
		fieldErrors = make(map[string][]models.FieldError)
		loadErrors  []models.LoadError
		mentions    []models.ReferenceMention
	)
	for i, res := range results {
		if res.doc != nil {
			docs = append(docs, *res.doc)
		}
		if len(res.fieldErrors) > 0 {
			fieldErrors[metas[i].Path] = res.fieldErrors
		}
		if res.loadError != nil {
			loadErrors = append(loadErrors, *res.loadError)
		}
		mentions = append(mentions, res.mentions...)
	}

	resolver := refs.NewResolver(paths)
	resolved := resolver.ResolveAll(mentions)

	g := graph.Build(paths, resolved)

	rep := check.Run(ctx, check.Inputs{
		Documents:   docs,
		FieldErrors: fieldErrors,
		LoadErrors:  loadErrors,
		Mentions:    resolved,
		Graph:       g,
	}, check.Options{
		Schema:               e.p.Schema,
		EntryPoints:          e.p.EntryPoints,
		StalenessDays:        e.p.StalenessDays,
		DefaultStalenessDays: e.p.DefaultStalenessDays,
		Now:                  now,
	})

	e.p.Logger.Info("integrity run complete",
		slog.Int("documents", len(metas)),
		slog.Int("load_errors", rep.Summary.LoadErrors),
		slog.Int("frontmatter_errors", rep.Summary.FrontmatterErrors),
		slog.Int("dangling", rep.Summary.DanglingReferences),
		slog.Int("ambiguous", rep.Summary.AmbiguousReferences),
		slog.Int("orphans", rep.Summary.OrphanDocuments))

	return rep, nil
}

// processPending runs load, validate, and extract for files without a
// cache hit. Per-file work is independent and fans out over a bounded
// worker pool; each worker writes only its own slot.
func (e *Engine) processPending(ctx context.Context, metas []models.FileMetadata, pending []int, results []fileResult) error {
	pendingMetas := make([]models.FileMetadata, len(pending))
	for j, i := range pending {
		pendingMetas[j] = metas[i]
	}

	l := loader.New(e.p.Store)
	rawDocs, loadErrs := l.Load(ctx, pendingMetas)

	byPath := make(map[string]*models.RawDocument, len(rawDocs))
	for i := range rawDocs {
		byPath[rawDocs[i].Path] = &rawDocs[i]
	}
	loadErrByPath := make(map[string]models.LoadError, len(loadErrs))
	for _, le := range loadErrs {
		loadErrByPath[le.Path] = le
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, i := range pending {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m := metas[i]
			res := fileResult{}

			if le, failed := loadErrByPath[m.Path]; failed {
				res.loadError = &le
			} else if raw := byPath[m.Path]; raw != nil {
				doc, fieldErrs := e.p.Schema.Validate(*raw)
				res.doc = doc
				res.fieldErrors = fieldErrs
				res.mentions = refs.Extract(m.Path, raw.Body)
			}
			results[i] = res

			if e.p.Cache != nil {
				entry := cache.Entry{
					Path:        m.Path,
					Checksum:    m.Checksum,
					Document:    res.doc,
					FieldErrors: res.fieldErrors,
					Mentions:    res.mentions,
				}
				if res.loadError != nil {
					entry.LoadError = res.loadError.Reason
				}
				if putErr := e.p.Cache.Put(entry); putErr != nil {
					e.p.Logger.Warn("cache store failed", slog.String("path", m.Path), slog.String("error", putErr.Error()))
				}
			}
			return nil
		})
	}
	// Cancellation yields partial results; the caller still gets a report.
	_ = g.Wait()
	return nil
}

func resultFromCache(path string, entry *cache.Entry) fileResult {
	res := fileResult{
		doc:         entry.Document,
		fieldErrors: entry.FieldErrors,
		mentions:    entry.Mentions,
	}
	if entry.LoadError != "" {
		res.loadError = &models.LoadError{Path: path, Reason: entry.LoadError}
	}
	return res
}
