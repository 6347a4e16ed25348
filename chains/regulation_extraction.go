package chains

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sevigo/stairreg/llms"
	"github.com/sevigo/stairreg/prompts"
	"github.com/sevigo/stairreg/regulation"
	"github.com/sevigo/stairreg/schema"
)

const (
	// DefaultMaxChars bounds the page text sent to the model, in runes.
	DefaultMaxChars = 15000
	// DefaultTemperature keeps the extraction close to deterministic.
	DefaultTemperature = 0.1

	pageHeaderFormat = "=== 第%d页 ==="
	pageSeparator    = "\n\n"
	rawExcerptRunes  = 500
)

var (
	ErrNoPages       = errors.New("chains: no pages to extract from")
	ErrLLMRequest    = errors.New("chains: llm request failed")
	ErrResponseParse = errors.New("chains: could not parse llm response")
)

// RequestError is a failed completion call together with the operator hint
// derived from its message.
type RequestError struct {
	Hint llms.ErrorHint
	Err  error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%v: %v", ErrLLMRequest, e.Err)
}

func (e *RequestError) Unwrap() []error {
	return []error{ErrLLMRequest, e.Err}
}

// Extraction is the outcome of one successful extraction call.
type Extraction struct {
	Regulation  regulation.StairRegulation
	Fallback    regulation.Fallback
	Truncated   bool
	PromptRunes int
	Raw         string
}

// RegulationExtraction turns keyword-matched pages into a StairRegulation
// with one JSON-mode completion call.
type RegulationExtraction struct {
	LLM         llms.Model
	maxChars    int
	temperature float64
	model       string
	logger      *slog.Logger
}

type RegulationExtractionOption func(*RegulationExtraction)

// WithMaxChars overrides the text budget. Non-positive values are ignored.
func WithMaxChars(n int) RegulationExtractionOption {
	return func(c *RegulationExtraction) {
		if n > 0 {
			c.maxChars = n
		}
	}
}

func WithTemperature(t float64) RegulationExtractionOption {
	return func(c *RegulationExtraction) {
		c.temperature = t
	}
}

// WithModel overrides the provider's model for the extraction call.
func WithModel(model string) RegulationExtractionOption {
	return func(c *RegulationExtraction) {
		c.model = model
	}
}

func WithLogger(logger *slog.Logger) RegulationExtractionOption {
	return func(c *RegulationExtraction) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewRegulationExtraction creates the chain around llm.
func NewRegulationExtraction(llm llms.Model, opts ...RegulationExtractionOption) (RegulationExtraction, error) {
	if llm == nil {
		return RegulationExtraction{}, errors.New("chains: LLM cannot be nil")
	}

	chain := RegulationExtraction{
		LLM:         llm,
		maxChars:    DefaultMaxChars,
		temperature: DefaultTemperature,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(&chain)
	}
	chain.logger = chain.logger.With("component", "regulation_extraction")
	return chain, nil
}

// CombinePages joins page texts in order, each under a page header.
func CombinePages(pages []schema.PageContent) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = fmt.Sprintf(pageHeaderFormat, p.PageNumber) + "\n" + p.Text
	}
	return strings.Join(parts, pageSeparator)
}

// Truncate keeps the first maxChars runes of text and reports whether
// anything was cut.
func Truncate(text string, maxChars int) (string, bool) {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text, false
	}
	n := 0
	for i := range text {
		if n == maxChars {
			return text[:i], true
		}
		n++
	}
	return text, false
}

// Call extracts the regulation record from pages.
func (c RegulationExtraction) Call(ctx context.Context, pages []schema.PageContent) (*regulation.StairRegulation, error) {
	ex, err := c.Extract(ctx, pages)
	if err != nil {
		return nil, err
	}
	return &ex.Regulation, nil
}

// Extract is Call with the intermediate values kept.
func (c RegulationExtraction) Extract(ctx context.Context, pages []schema.PageContent) (*Extraction, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	text, truncated := Truncate(CombinePages(pages), c.maxChars)
	if truncated {
		c.logger.WarnContext(ctx, "page text truncated", "max_chars", c.maxChars)
	}

	fallback := regulation.SniffFallback(text)
	c.logger.DebugContext(ctx, "regex fallback", "name", fallback.Name, "code", fallback.Code)

	messages := []schema.MessageContent{
		schema.NewSystemMessage(prompts.StairRegulationSystemPrompt),
		schema.NewHumanMessage(prompts.StairRegulationPrompt.Format(map[string]string{"text": text})),
	}
	options := []llms.CallOption{
		llms.WithTemperature(c.temperature),
		llms.WithJSONMode(),
	}
	if c.model != "" {
		options = append(options, llms.WithModel(c.model))
	}

	c.logger.InfoContext(ctx, "calling LLM", "pages", len(pages), "prompt_runes", utf8.RuneCountInString(text))
	resp, err := c.LLM.GenerateContent(ctx, messages, options...)
	if err == nil {
		_, err = resp.FirstContent()
	}
	if err != nil {
		hint := llms.ClassifyError(err)
		c.logger.ErrorContext(ctx, "LLM request failed", "error", err, "hint", hint, "advice", hint.Message())
		return nil, &RequestError{Hint: hint, Err: err}
	}
	raw, _ := resp.FirstContent()

	decoded, err := regulation.DecodeResponse(raw)
	if err != nil {
		c.logger.ErrorContext(ctx, "could not parse LLM response", "error", err, "raw", excerpt(raw, rawExcerptRunes))
		return nil, fmt.Errorf("%w: %w", ErrResponseParse, err)
	}

	return &Extraction{
		Regulation:  regulation.Merge(decoded, fallback),
		Fallback:    fallback,
		Truncated:   truncated,
		PromptRunes: utf8.RuneCountInString(text),
		Raw:         raw,
	}, nil
}

func excerpt(s string, n int) string {
	if cut, truncated := Truncate(s, n); truncated {
		return cut + "..."
	}
	return s
}
