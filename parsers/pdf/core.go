package pdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sevigo/stairreg/schema"
)

var (
	ErrFileNotFound      = errors.New("pdf: file not found")
	ErrExtractionBackend = errors.New("pdf: extraction backend failed")
	ErrUnknownStrategy   = errors.New("pdf: unknown extraction strategy")
	ErrEncryptedDocument = errors.New("pdf: document is encrypted")
	ErrNoExtractableText = errors.New("pdf: no text extracted")
)

// Strategy selects how page text is pulled out of the document.
type Strategy string

const (
	// StrategyAuto tries the layout-aware strategy and falls back to the
	// fast one on any failure or when it finds no text.
	StrategyAuto Strategy = "auto"
	// StrategyFast reads the content stream text of every page.
	StrategyFast Strategy = "fast"
	// StrategyTables validates the document structure and rebuilds lines
	// from glyph positions, detecting column-aligned tables.
	StrategyTables Strategy = "tables"
)

// Strategies lists the accepted strategy names in display order.
func Strategies() []Strategy {
	return []Strategy{StrategyAuto, StrategyFast, StrategyTables}
}

// ParseStrategy maps a user supplied name to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch s := Strategy(strings.ToLower(strings.TrimSpace(name))); s {
	case StrategyAuto, StrategyFast, StrategyTables:
		return s, nil
	case "":
		return StrategyAuto, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// ExtractionResult is the outcome of one extraction run. Pages is empty
// whenever Err is set. A readable document without a text layer is not an
// error: its pages come back with empty Text. Fallback records why auto
// mode abandoned the preferred strategy.
type ExtractionResult struct {
	Pages    []schema.PageContent
	Method   Strategy
	Err      error
	Fallback error
}

// OK reports whether the run produced pages.
func (r ExtractionResult) OK() bool {
	return r.Err == nil
}

// Extractor pulls per-page text out of a single PDF file.
type Extractor struct {
	path   string
	opts   options
	logger *slog.Logger
}

// NewExtractor checks that path names a readable regular file and returns
// an extractor configured with opts.
func NewExtractor(path string, opts ...Option) (*Extractor, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("pdf: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrFileNotFound, path)
	}

	o := applyOptions(opts...)
	return &Extractor{
		path:   path,
		opts:   o,
		logger: o.logger.With("component", "pdf_extractor", "path", path),
	}, nil
}

// Path returns the document path.
func (e *Extractor) Path() string {
	return e.path
}

// Strategy returns the configured strategy.
func (e *Extractor) Strategy() Strategy {
	return e.opts.strategy
}

// Extract runs the configured strategy over every page of the document.
func (e *Extractor) Extract(ctx context.Context) ExtractionResult {
	switch e.opts.strategy {
	case StrategyFast:
		return e.run(ctx, StrategyFast, e.extractFast)
	case StrategyTables:
		return e.run(ctx, StrategyTables, e.extractTables)
	default:
		res := e.run(ctx, StrategyTables, e.extractTables)
		if res.OK() && hasText(res.Pages) {
			return res
		}
		if !res.OK() && ctx.Err() != nil {
			return res
		}
		preferred := res.Err
		if preferred == nil {
			preferred = fmt.Errorf("%w: %s strategy", ErrNoExtractableText, StrategyTables)
		}
		e.logger.Warn("layout extraction yielded nothing, falling back to fast strategy", "error", preferred)
		fast := e.run(ctx, StrategyFast, e.extractFast)
		if !fast.OK() && res.OK() && ctx.Err() == nil {
			// The document opened but has no text layer; report its
			// empty pages rather than the fast backend failure.
			res.Fallback = fast.Err
			return res
		}
		fast.Fallback = preferred
		return fast
	}
}

// Parse extracts every page and keeps only those mentioning a configured
// keyword. The returned pages keep their original numbering and order.
func (e *Extractor) Parse(ctx context.Context) ([]schema.PageContent, error) {
	res := e.Extract(ctx)
	if !res.OK() {
		return nil, res.Err
	}

	pages := FilterStairPages(res.Pages, e.opts.keywords)
	e.logger.Info("stair related pages selected",
		"method", res.Method,
		"total_pages", len(res.Pages),
		"matched_pages", len(pages))
	return pages, nil
}

type strategyFunc func(ctx context.Context) ([]schema.PageContent, error)

// run converts backend failures, panics included, into a result value.
func (e *Extractor) run(ctx context.Context, s Strategy, fn strategyFunc) (res ExtractionResult) {
	res.Method = s
	defer func() {
		if r := recover(); r != nil {
			res.Pages = nil
			res.Err = fmt.Errorf("%w: %s strategy panicked: %v", ErrExtractionBackend, s, r)
		}
	}()

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	pages, err := fn(ctx)
	if err != nil {
		res.Err = err
		return res
	}
	if !hasText(pages) {
		e.logger.Warn("no text layer found", "method", s, "pages", len(pages))
	}

	e.logger.Debug("extraction finished", "method", s, "pages", len(pages))
	res.Pages = pages
	return res
}

func hasText(pages []schema.PageContent) bool {
	for _, p := range pages {
		if strings.TrimSpace(p.Text) != "" {
			return true
		}
	}
	return false
}
