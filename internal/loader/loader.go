// Package loader reads corpus files and splits YAML frontmatter from body.
package loader

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/starford/doclint/internal/apperr"
	"github.com/starford/doclint/internal/checksum"
	"github.com/starford/doclint/internal/models"
)

const delim = "---"

// Split separates the leading YAML frontmatter block from the Markdown body.
// A file without an opening delimiter is valid: frontmatter is nil and the
// whole content is body (the validator will report the missing fields).
// An opening delimiter without a closing one, or an undecodable YAML block,
// is a malformed-frontmatter error.
func Split(data []byte) (map[string]any, string, error) {
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, "", fmt.Errorf("%w: opening delimiter without closing delimiter", apperr.ErrMalformedFrontmatter)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, "", fmt.Errorf("%w: not valid YAML: %v", apperr.ErrMalformedFrontmatter, err)
	}

	return fm, body, nil
}

// Loader turns corpus files into RawDocuments.
type Loader struct {
	store interface {
		Read(path string) ([]byte, error)
	}
	workers int
}

// New creates a Loader reading through store. Per-file work fans out over
// a worker pool bounded by GOMAXPROCS.
func New(store interface {
	Read(path string) ([]byte, error)
}) *Loader {
	return &Loader{store: store, workers: runtime.GOMAXPROCS(0)}
}

// Load reads and splits every listed file. Per-file failures (unreadable
// file, malformed frontmatter) are collected as LoadErrors and do not abort
// the run; the returned document slice preserves the input order.
func (l *Loader) Load(ctx context.Context, metas []models.FileMetadata) ([]models.RawDocument, []models.LoadError) {
	docs := make([]*models.RawDocument, len(metas))
	loadErrs := make([]*models.LoadError, len(metas))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	for i, m := range metas {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := l.store.Read(m.Path)
			if err != nil {
				loadErrs[i] = &models.LoadError{Path: m.Path, Reason: fmt.Sprintf("read failed: %v", err)}
				return nil
			}
			fm, body, err := Split(data)
			if err != nil {
				loadErrs[i] = &models.LoadError{Path: m.Path, Reason: err.Error()}
				return nil
			}
			docs[i] = &models.RawDocument{
				Path:        m.Path,
				Frontmatter: fm,
				Body:        body,
				Checksum:    checksum.Sum(data),
			}
			return nil
		})
	}
	// Workers never return errors except on cancellation; Wait's error is
	// deliberately ignored so a cancelled run still reports partial results.
	_ = g.Wait()

	out := make([]models.RawDocument, 0, len(metas))
	var errs []models.LoadError
	for i := range metas {
		if docs[i] != nil {
			out = append(out, *docs[i])
		}
		if loadErrs[i] != nil {
			errs = append(errs, *loadErrs[i])
		}
	}
	return out, errs
}
