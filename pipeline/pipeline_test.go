package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/stairreg/chains"
	"github.com/sevigo/stairreg/config"
	"github.com/sevigo/stairreg/llms/fake"
	"github.com/sevigo/stairreg/parsers/pdf"
	testutil "github.com/sevigo/stairreg/parsers/testing"
	"github.com/sevigo/stairreg/pipeline"
	"github.com/sevigo/stairreg/regulation"
	"github.com/sevigo/stairreg/schema"
)

const modelResponse = `{
  "regulation_name": "住宅建筑规范",
  "regulation_code": "GB 50368-2005",
  "riser_height": {"max_value": 0.30, "unit": "m", "source": "第6.3.2条", "full_text": "踏步高度不应大于0.30m"},
  "tread_depth": {"min_value": 0.26, "unit": "m", "source": null, "full_text": "踏步宽度不应小于0.26m"},
  "two_r_plus_g": null,
  "landing_length": null
}`

type stubSource struct {
	result pdf.ExtractionResult
	opened string
}

func (s *stubSource) Extract(context.Context) pdf.ExtractionResult {
	return s.result
}

func factoryFor(src *stubSource) pipeline.ExtractorFactory {
	return func(path string, _ ...pdf.Option) (pipeline.PageSource, error) {
		src.opened = path
		return src, nil
	}
}

func documentPages() []schema.PageContent {
	return []schema.PageContent{
		{PageNumber: 1, Text: "前言", Method: "tables"},
		{PageNumber: 2, Text: "住宅建筑规范 GB 50368-2005\n楼梯", Method: "tables"},
		{PageNumber: 3, Text: "防火", Method: "tables"},
		{PageNumber: 4, Text: "Stair tread depth", Method: "tables", Tables: []schema.Table{{Rows: [][]string{{"a", "b"}, {"c", "d"}}}}},
		{PageNumber: 5, Text: "附录", Method: "tables"},
	}
}

type recordingObserver struct {
	stages []pipeline.Stage
}

func (o *recordingObserver) StageStarted(s pipeline.Stage, index, total int) {
	o.stages = append(o.stages, s)
}

func newConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Output.Dir = filepath.Join(t.TempDir(), "output")
	return cfg
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestNewValidatesArguments(t *testing.T) {
	_, err := pipeline.New(nil, nil, fake.NewFakeLLM(nil), nil)
	assert.Error(t, err)

	_, err = pipeline.New(config.Default(), nil, nil, nil)
	assert.Error(t, err)
}

func TestRunSuccess(t *testing.T) {
	cfg := newConfig(t)
	logger, _ := testutil.NewTestLogger(t)
	src := &stubSource{result: pdf.ExtractionResult{Pages: documentPages(), Method: pdf.StrategyTables}}
	llm := fake.NewFakeLLM([]string{modelResponse})
	observer := &recordingObserver{}
	fixed := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	p, err := pipeline.New(cfg, factoryFor(src), llm, logger,
		pipeline.WithObserver(observer),
		pipeline.WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)

	res, err := p.Run(context.Background(), pipeline.Request{
		PDFPath:  "/docs/GB50368-2005.pdf",
		Header:   true,
		Report:   true,
		Workbook: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "/docs/GB50368-2005.pdf", src.opened)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, pdf.StrategyTables, res.Method)
	assert.Equal(t, 5, res.TotalPages)
	require.Len(t, res.Pages, 2)
	assert.Equal(t, 2, res.Pages[0].PageNumber)
	assert.Equal(t, 4, res.Pages[1].PageNumber)
	assert.Equal(t, pipeline.Stages(), observer.stages)

	require.NotNil(t, res.Regulation)
	assert.Equal(t, "GB 50368-2005", res.Regulation.RegulationCode)
	assert.Equal(t, "", res.Regulation.TreadDepth.Source)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "0.30")
	assert.InDelta(t, 0.30, *res.Regulation.RiserHeight.MaxValue, 1e-9, "validation must not alter values")

	wantJSON := filepath.Join(cfg.Output.Dir, "GB50368-2005_config.json")
	assert.Equal(t, wantJSON, res.Outputs.JSON)
	assert.Equal(t, filepath.Join(cfg.Output.Dir, "GB50368-2005_config.h"), res.Outputs.Header)
	assert.ElementsMatch(t,
		[]string{"GB50368-2005_config.json", "GB50368-2005_config.h", "GB50368-2005_config.html", "GB50368-2005_config.xlsx"},
		listFiles(t, cfg.Output.Dir))

	loaded, err := regulation.LoadConfig(wantJSON)
	require.NoError(t, err)
	assert.Equal(t, res.Regulation.RegulationName, loaded.RegulationName)
}

func TestRunExplicitOutputWithoutExtras(t *testing.T) {
	cfg := newConfig(t)
	src := &stubSource{result: pdf.ExtractionResult{Pages: documentPages(), Method: pdf.StrategyFast}}
	p, err := pipeline.New(cfg, factoryFor(src), fake.NewFakeLLM([]string{modelResponse}), nil)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "custom", "cfg.json")
	res, err := p.Run(context.Background(), pipeline.Request{PDFPath: "x.pdf", OutputPath: out})
	require.NoError(t, err)

	assert.Equal(t, out, res.Outputs.JSON)
	assert.Empty(t, res.Outputs.Header)
	assert.Empty(t, res.Outputs.Report)
	assert.Equal(t, []string{"cfg.json"}, listFiles(t, filepath.Dir(out)))
}

func TestRunNoMatchingPages(t *testing.T) {
	cfg := newConfig(t)
	pages := []schema.PageContent{{PageNumber: 1, Text: "总则"}, {PageNumber: 2, Text: "术语"}}
	src := &stubSource{result: pdf.ExtractionResult{Pages: pages, Method: pdf.StrategyFast}}
	llm := fake.NewFakeLLM([]string{modelResponse})

	p, err := pipeline.New(cfg, factoryFor(src), llm, nil)
	require.NoError(t, err)

	res, err := p.Run(context.Background(), pipeline.Request{PDFPath: "x.pdf", Header: true})
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Nil(t, res.Regulation)
	assert.Equal(t, 0, llm.GetCallCount())
	assert.Empty(t, listFiles(t, cfg.Output.Dir))
}

func TestRunBlankDocumentIsEmpty(t *testing.T) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	doc.AddPage()
	pdfPath := filepath.Join(t.TempDir(), "scanned.pdf")
	require.NoError(t, doc.OutputFileAndClose(pdfPath))

	for _, method := range pdf.Strategies() {
		t.Run(string(method), func(t *testing.T) {
			cfg := newConfig(t)
			llm := fake.NewFakeLLM([]string{modelResponse})
			p, err := pipeline.New(cfg, pipeline.DefaultExtractorFactory, llm, nil)
			require.NoError(t, err)

			res, err := p.Run(context.Background(), pipeline.Request{PDFPath: pdfPath, Method: method})
			require.NoError(t, err)
			assert.True(t, res.Empty())
			assert.Equal(t, 2, res.TotalPages)
			assert.Zero(t, llm.GetCallCount())
			assert.Empty(t, listFiles(t, cfg.Output.Dir))
		})
	}
}

func TestRunFatalErrorsWriteNothing(t *testing.T) {
	testCases := []struct {
		name    string
		setup   func(*fake.LLM)
		wantErr error
	}{
		{
			name:    "request failure",
			setup:   func(l *fake.LLM) { l.SetError(errors.New("status 401: authentication failed")) },
			wantErr: chains.ErrLLMRequest,
		},
		{
			name:    "unparseable response",
			setup:   func(l *fake.LLM) { l.AddResponse("not json") },
			wantErr: chains.ErrResponseParse,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := newConfig(t)
			src := &stubSource{result: pdf.ExtractionResult{Pages: documentPages(), Method: pdf.StrategyFast}}
			llm := fake.NewFakeLLM(nil)
			tc.setup(llm)

			p, err := pipeline.New(cfg, factoryFor(src), llm, nil)
			require.NoError(t, err)

			_, err = p.Run(context.Background(), pipeline.Request{PDFPath: "x.pdf", Header: true, Report: true, Workbook: true})
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Empty(t, listFiles(t, cfg.Output.Dir))
		})
	}
}

func TestRunExtractionFailure(t *testing.T) {
	cfg := newConfig(t)
	backendErr := errors.New("xref table broken")
	src := &stubSource{result: pdf.ExtractionResult{
		Method:   pdf.StrategyFast,
		Err:      errors.Join(pdf.ErrExtractionBackend, backendErr),
		Fallback: pdf.ErrExtractionBackend,
	}}
	llm := fake.NewFakeLLM([]string{modelResponse})

	p, err := pipeline.New(cfg, factoryFor(src), llm, nil)
	require.NoError(t, err)

	_, err = p.Run(context.Background(), pipeline.Request{PDFPath: "x.pdf"})
	assert.ErrorIs(t, err, pdf.ErrExtractionBackend)
	assert.Equal(t, 0, llm.GetCallCount())
}

func TestRunMissingPDF(t *testing.T) {
	p, err := pipeline.New(newConfig(t), pipeline.DefaultExtractorFactory, fake.NewFakeLLM([]string{modelResponse}), nil)
	require.NoError(t, err)

	_, err = p.Run(context.Background(), pipeline.Request{PDFPath: filepath.Join(t.TempDir(), "missing.pdf")})
	assert.ErrorIs(t, err, pdf.ErrFileNotFound)
}

func TestRunRejectsUnknownConfiguredMethod(t *testing.T) {
	cfg := newConfig(t)
	cfg.Extraction.Method = "ocr"
	src := &stubSource{}
	p, err := pipeline.New(cfg, factoryFor(src), fake.NewFakeLLM(nil), nil)
	require.NoError(t, err)

	_, err = p.Run(context.Background(), pipeline.Request{PDFPath: "x.pdf"})
	assert.ErrorIs(t, err, pdf.ErrUnknownStrategy)
	assert.Empty(t, src.opened)
}
