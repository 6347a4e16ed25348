package schema

import (
	"fmt"
	"strings"
)

// PageContent is the text of one PDF page as produced by an extraction
// strategy. PageNumber is 1-based and always refers to the source document.
type PageContent struct {
	PageNumber int     `json:"page_number"`
	Text       string  `json:"text"`
	Method     string  `json:"method"`
	Tables     []Table `json:"tables,omitempty"`
}

func (p PageContent) String() string {
	return fmt.Sprintf("page %d (%s, %d chars)", p.PageNumber, p.Method, len([]rune(p.Text)))
}

// Table is a grid of cell texts detected on a page. Rows may be ragged.
type Table struct {
	Rows [][]string `json:"rows"`
}

// Columns returns the widest row length.
func (t Table) Columns() int {
	n := 0
	for _, row := range t.Rows {
		n = max(n, len(row))
	}
	return n
}

// Markdown renders the table as a GitHub-style pipe table, using the first
// row as header.
func (t Table) Markdown() string {
	cols := t.Columns()
	if cols == 0 {
		return ""
	}

	var b strings.Builder
	writeRow := func(row []string) {
		b.WriteString("|")
		for i := range cols {
			cell := ""
			if i < len(row) {
				cell = strings.ReplaceAll(strings.TrimSpace(row[i]), "|", `\|`)
			}
			b.WriteString(" " + cell + " |")
		}
		b.WriteString("\n")
	}

	writeRow(t.Rows[0])
	b.WriteString("|" + strings.Repeat(" --- |", cols) + "\n")
	for _, row := range t.Rows[1:] {
		writeRow(row)
	}
	return b.String()
}
