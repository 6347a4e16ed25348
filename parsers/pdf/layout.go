package pdf

import (
	"slices"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/sevigo/stairreg/schema"
)

const (
	// Gaps are measured in multiples of the glyph font size.
	wordGapFactor = 0.35
	cellGapFactor = 1.5

	// Fallback advance for fonts that carry no width table.
	defaultGlyphWidth = 0.5

	minTableRows    = 2
	minTableColumns = 2
)

// line is one visual row of a page split into cells at wide gaps.
type line struct {
	cells []string
}

func (l line) text() string {
	return strings.Join(l.cells, " ")
}

// buildLines turns glyph rows into lines ordered top to bottom.
func buildLines(rows pdf.Rows) []line {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b *pdf.Row) int {
		switch {
		case a.Position > b.Position:
			return -1
		case a.Position < b.Position:
			return 1
		default:
			return 0
		}
	})

	lines := make([]line, 0, len(sorted))
	for _, row := range sorted {
		if row == nil {
			continue
		}
		if l := buildLine(row.Content); len(l.cells) > 0 {
			lines = append(lines, l)
		}
	}
	return lines
}

func buildLine(glyphs []pdf.Text) line {
	glyphs = slices.Clone(glyphs)
	slices.SortStableFunc(glyphs, func(a, b pdf.Text) int {
		switch {
		case a.X < b.X:
			return -1
		case a.X > b.X:
			return 1
		default:
			return 0
		}
	})

	var (
		cells   []string
		current strings.Builder
		prevEnd float64
		started bool
	)
	flush := func() {
		if cell := strings.TrimSpace(current.String()); cell != "" {
			cells = append(cells, cell)
		}
		current.Reset()
	}

	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		size := g.FontSize
		if size <= 0 {
			size = 10
		}
		width := g.W
		if width <= 0 {
			width = defaultGlyphWidth * size * float64(len([]rune(g.S)))
		}

		if started {
			gap := g.X - prevEnd
			switch {
			case gap > cellGapFactor*size:
				flush()
			case gap > wordGapFactor*size:
				current.WriteByte(' ')
			}
		}
		current.WriteString(g.S)
		prevEnd = g.X + width
		started = true
	}
	flush()

	return line{cells: cells}
}

func joinLines(lines []line) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.text()
	}
	return strings.Join(parts, "\n")
}

// detectTables groups consecutive multi-cell lines into tables.
func detectTables(lines []line) []schema.Table {
	var (
		tables []schema.Table
		block  [][]string
	)
	flush := func() {
		if len(block) >= minTableRows {
			tables = append(tables, schema.Table{Rows: block})
		}
		block = nil
	}

	for _, l := range lines {
		if len(l.cells) >= minTableColumns {
			block = append(block, slices.Clone(l.cells))
			continue
		}
		flush()
	}
	flush()
	return tables
}
