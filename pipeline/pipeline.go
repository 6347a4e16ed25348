// Package pipeline runs one extraction: PDF pages, keyword filter, the
// model call, validation and the emitted artifacts.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sevigo/stairreg/chains"
	"github.com/sevigo/stairreg/config"
	"github.com/sevigo/stairreg/configgen"
	"github.com/sevigo/stairreg/llms"
	"github.com/sevigo/stairreg/parsers/pdf"
	"github.com/sevigo/stairreg/regulation"
	"github.com/sevigo/stairreg/schema"
)

// Stage identifies a step of a run.
type Stage string

const (
	StageExtract      Stage = "extract"
	StageExtractRules Stage = "extract_rules"
	StageValidate     Stage = "validate"
	StageEmit         Stage = "emit"
)

// Stages lists the steps in execution order.
func Stages() []Stage {
	return []Stage{StageExtract, StageExtractRules, StageValidate, StageEmit}
}

// PageSource yields every page of one document.
type PageSource interface {
	Extract(ctx context.Context) pdf.ExtractionResult
}

// ExtractorFactory opens a page source for a PDF path. It must report a
// missing file with pdf.ErrFileNotFound.
type ExtractorFactory func(path string, opts ...pdf.Option) (PageSource, error)

// DefaultExtractorFactory opens documents with pdf.NewExtractor.
func DefaultExtractorFactory(path string, opts ...pdf.Option) (PageSource, error) {
	return pdf.NewExtractor(path, opts...)
}

// Observer is told when a stage starts. index is 1-based.
type Observer interface {
	StageStarted(stage Stage, index, total int)
}

// Request describes one run.
type Request struct {
	PDFPath    string
	OutputPath string
	Header     bool
	Report     bool
	Workbook   bool
	Method     pdf.Strategy
}

// Outputs lists the files written by a run.
type Outputs struct {
	JSON     string
	Header   string
	Report   string
	Workbook string
}

// Result is what a run produced. A result with no pages means the
// document had nothing stair related and no model call was made.
type Result struct {
	RunID      string
	Method     pdf.Strategy
	TotalPages int
	Pages      []schema.PageContent
	Regulation *regulation.StairRegulation
	Warnings   []string
	Truncated  bool
	Outputs    Outputs
}

// Empty reports whether no page matched the stair keywords.
func (r *Result) Empty() bool {
	return len(r.Pages) == 0
}

// Pipeline wires the extractor, the model chain and the emitters.
type Pipeline struct {
	cfg          *config.Config
	newExtractor ExtractorFactory
	llm          llms.Model
	logger       *slog.Logger
	observer     Observer
	now          func() time.Time
}

type Option func(*Pipeline)

func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		p.observer = o
	}
}

// WithClock overrides the time source used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// New validates its collaborators and returns a pipeline. A nil factory
// means DefaultExtractorFactory and a nil logger means slog.Default().
func New(cfg *config.Config, newExtractor ExtractorFactory, llm llms.Model, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("pipeline: config cannot be nil")
	}
	if llm == nil {
		return nil, errors.New("pipeline: LLM cannot be nil")
	}
	if newExtractor == nil {
		newExtractor = DefaultExtractorFactory
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pipeline{
		cfg:          cfg,
		newExtractor: newExtractor,
		llm:          llm,
		logger:       logger.With("component", "pipeline"),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Pipeline) stage(s Stage) {
	if p.observer == nil {
		return
	}
	for i, candidate := range Stages() {
		if candidate == s {
			p.observer.StageStarted(s, i+1, len(Stages()))
			return
		}
	}
}

// Run executes req. Fatal errors abort the run before any file is written.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	logger := p.logger.With("run_id", res.RunID, "pdf", req.PDFPath)

	method := req.Method
	if method == "" {
		m, err := pdf.ParseStrategy(p.cfg.Extraction.Method)
		if err != nil {
			return nil, err
		}
		method = m
	}

	p.stage(StageExtract)
	source, err := p.newExtractor(req.PDFPath,
		pdf.WithStrategy(method),
		pdf.WithKeywords(p.cfg.Extraction.Keywords...),
		pdf.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("pipeline: open pdf: %w", err)
	}

	extraction := source.Extract(ctx)
	if !extraction.OK() {
		return nil, fmt.Errorf("pipeline: extract pages: %w", extraction.Err)
	}
	if extraction.Fallback != nil {
		logger.WarnContext(ctx, "preferred strategy failed", "error", extraction.Fallback, "used", extraction.Method)
	}

	res.Method = extraction.Method
	res.TotalPages = len(extraction.Pages)
	res.Pages = pdf.FilterStairPages(extraction.Pages, p.keywords())
	logger.InfoContext(ctx, "pages extracted",
		"method", res.Method,
		"total_pages", res.TotalPages,
		"matched_pages", len(res.Pages))
	for _, page := range res.Pages {
		for i, t := range page.Tables {
			logger.DebugContext(ctx, "table detected", "page", page.PageNumber, "index", i+1, "rows", len(t.Rows), "columns", t.Columns())
		}
	}
	if res.Empty() {
		logger.WarnContext(ctx, "no stair related pages found")
		return res, nil
	}

	p.stage(StageExtractRules)
	chain, err := chains.NewRegulationExtraction(p.llm,
		chains.WithMaxChars(p.cfg.Extraction.MaxChars),
		chains.WithTemperature(p.cfg.LLM.Temperature),
		chains.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	ex, err := chain.Extract(ctx, res.Pages)
	if err != nil {
		return nil, err
	}
	res.Regulation = &ex.Regulation
	res.Truncated = ex.Truncated

	p.stage(StageValidate)
	res.Warnings = regulation.Validate(res.Regulation)
	for _, w := range res.Warnings {
		logger.WarnContext(ctx, "implausible value", "warning", w)
	}

	p.stage(StageEmit)
	outputs, err := p.emit(req, res)
	if err != nil {
		return nil, err
	}
	res.Outputs = outputs
	logger.InfoContext(ctx, "configuration written", "path", outputs.JSON)
	return res, nil
}

func (p *Pipeline) keywords() []string {
	if len(p.cfg.Extraction.Keywords) > 0 {
		return p.cfg.Extraction.Keywords
	}
	return pdf.DefaultKeywords()
}

type artifact struct {
	path string
	data []byte
}

// emit renders every requested artifact first and only then writes them,
// so a rendering failure leaves no files behind.
func (p *Pipeline) emit(req Request, res *Result) (Outputs, error) {
	var out Outputs
	out.JSON = req.OutputPath
	if out.JSON == "" {
		out.JSON = configgen.DefaultOutputPath(p.cfg.Output.Dir, req.PDFPath)
	}

	data, err := configgen.MarshalJSON(res.Regulation)
	if err != nil {
		return Outputs{}, err
	}
	artifacts := []artifact{{path: out.JSON, data: data}}

	if req.Header {
		out.Header = configgen.HeaderPath(out.JSON)
		h, err := configgen.RenderHeader(res.Regulation)
		if err != nil {
			return Outputs{}, err
		}
		artifacts = append(artifacts, artifact{path: out.Header, data: []byte(h)})
	}

	report := configgen.Report{
		Regulation:  res.Regulation,
		Warnings:    res.Warnings,
		SourcePDF:   req.PDFPath,
		Method:      string(res.Method),
		Pages:       res.Pages,
		RunID:       res.RunID,
		GeneratedAt: p.now(),
	}
	if req.Report {
		out.Report = configgen.SiblingPath(out.JSON, ".html")
		html, err := configgen.RenderHTML(report)
		if err != nil {
			return Outputs{}, err
		}
		artifacts = append(artifacts, artifact{path: out.Report, data: html})
	}
	if req.Workbook {
		out.Workbook = configgen.SiblingPath(out.JSON, ".xlsx")
		xlsx, err := configgen.RenderWorkbook(report)
		if err != nil {
			return Outputs{}, err
		}
		artifacts = append(artifacts, artifact{path: out.Workbook, data: xlsx})
	}

	for _, a := range artifacts {
		if err := configgen.WriteFile(a.path, a.data); err != nil {
			return Outputs{}, err
		}
	}
	return out, nil
}
