package pdf_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/stairreg/parsers/pdf"
	testutil "github.com/sevigo/stairreg/parsers/testing"
)

// writeFixture renders one page per entry of pages. A page whose lines
// contain a tab is drawn as a bordered grid row.
func writeFixture(t *testing.T, pages [][]string) string {
	t.Helper()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	doc.SetFont("Helvetica", "", 12)
	for _, lines := range pages {
		doc.AddPage()
		for _, l := range lines {
			cells := strings.Split(l, "\t")
			if len(cells) == 1 {
				doc.Cell(0, 10, l)
				doc.Ln(12)
				continue
			}
			for _, c := range cells {
				doc.CellFormat(60, 10, c, "1", 0, "L", false, 0, "")
			}
			doc.Ln(10)
		}
	}

	path := filepath.Join(t.TempDir(), "fixture.pdf")
	require.NoError(t, doc.OutputFileAndClose(path))
	return path
}

func fivePageFixture(t *testing.T) string {
	return writeFixture(t, [][]string{
		{"General provisions"},
		{"Stair riser height shall not exceed 175 mm"},
		{"Fire compartments"},
		{"Tread depth of stair flights"},
		{"Appendix"},
	})
}

func TestNewExtractor(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := pdf.NewExtractor(filepath.Join(t.TempDir(), "nope.pdf"))
		assert.ErrorIs(t, err, pdf.ErrFileNotFound)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := pdf.NewExtractor(t.TempDir())
		assert.ErrorIs(t, err, pdf.ErrFileNotFound)
	})

	t.Run("defaults", func(t *testing.T) {
		path := fivePageFixture(t)
		e, err := pdf.NewExtractor(path)
		require.NoError(t, err)
		assert.Equal(t, pdf.StrategyAuto, e.Strategy())
		assert.Equal(t, path, e.Path())
	})
}

func TestExtractFast(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	e, err := pdf.NewExtractor(fivePageFixture(t), pdf.WithStrategy(pdf.StrategyFast), pdf.WithLogger(logger))
	require.NoError(t, err)

	res := e.Extract(context.Background())
	require.True(t, res.OK(), "extract failed: %v", res.Err)
	assert.Equal(t, pdf.StrategyFast, res.Method)
	require.Len(t, res.Pages, 5)
	for i, p := range res.Pages {
		assert.Equal(t, i+1, p.PageNumber)
		assert.Equal(t, "fast", p.Method)
	}
	assert.Contains(t, res.Pages[1].Text, "riser")
}

func TestParseSelectsStairPages(t *testing.T) {
	path := fivePageFixture(t)

	for _, s := range pdf.Strategies() {
		t.Run(string(s), func(t *testing.T) {
			e, err := pdf.NewExtractor(path, pdf.WithStrategy(s))
			require.NoError(t, err)

			pages, err := e.Parse(context.Background())
			require.NoError(t, err)
			require.Len(t, pages, 2)
			assert.Equal(t, 2, pages[0].PageNumber)
			assert.Equal(t, 4, pages[1].PageNumber)
		})
	}
}

func TestParseCustomKeywords(t *testing.T) {
	e, err := pdf.NewExtractor(fivePageFixture(t), pdf.WithStrategy(pdf.StrategyFast), pdf.WithKeywords("appendix"))
	require.NoError(t, err)

	pages, err := e.Parse(context.Background())
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 5, pages[0].PageNumber)
}

func TestExtractTablesDetectsGrid(t *testing.T) {
	path := writeFixture(t, [][]string{{
		"Stair dimensions",
		"Item\tLimit",
		"Riser\t0.175",
		"Tread\t0.260",
	}})

	e, err := pdf.NewExtractor(path, pdf.WithStrategy(pdf.StrategyTables))
	require.NoError(t, err)

	res := e.Extract(context.Background())
	require.True(t, res.OK(), "extract failed: %v", res.Err)
	require.Len(t, res.Pages, 1)
	require.NotEmpty(t, res.Pages[0].Tables)

	table := res.Pages[0].Tables[0]
	assert.Equal(t, 2, table.Columns())
	assert.Len(t, table.Rows, 3)
	assert.Contains(t, res.Pages[0].Text, "Stair dimensions")
}

func TestExtractAutoFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf document"), 0o600))

	e, err := pdf.NewExtractor(path)
	require.NoError(t, err)

	res := e.Extract(context.Background())
	assert.False(t, res.OK())
	assert.Empty(t, res.Pages)
	assert.Equal(t, pdf.StrategyFast, res.Method)
	assert.ErrorIs(t, res.Err, pdf.ErrExtractionBackend)
	assert.ErrorIs(t, res.Fallback, pdf.ErrExtractionBackend)

	_, err = e.Parse(context.Background())
	assert.Error(t, err)
}

func TestBlankDocumentYieldsNoPages(t *testing.T) {
	path := writeFixture(t, [][]string{{}, {}})

	for _, s := range pdf.Strategies() {
		t.Run(string(s), func(t *testing.T) {
			e, err := pdf.NewExtractor(path, pdf.WithStrategy(s))
			require.NoError(t, err)

			res := e.Extract(context.Background())
			require.NoError(t, res.Err)
			require.Len(t, res.Pages, 2)
			for _, p := range res.Pages {
				assert.Empty(t, strings.TrimSpace(p.Text))
			}
			if s == pdf.StrategyAuto {
				assert.ErrorIs(t, res.Fallback, pdf.ErrNoExtractableText)
			}

			pages, err := e.Parse(context.Background())
			require.NoError(t, err)
			assert.Empty(t, pages)
		})
	}
}

func TestExtractCanceledContext(t *testing.T) {
	e, err := pdf.NewExtractor(fivePageFixture(t), pdf.WithStrategy(pdf.StrategyFast))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := e.Extract(ctx)
	assert.ErrorIs(t, res.Err, context.Canceled)
}
