package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"

	"github.com/sevigo/stairreg/schema"
)

var (
	horizontalSpaceRe = regexp.MustCompile(`[ \t\x{3000}]+`)
	blankLineRe       = regexp.MustCompile(`\n[ \t]*\n`)
	manyNewlinesRe    = regexp.MustCompile(`\n{3,}`)
)

// openReader opens the document with the content stream reader. The
// returned close func must be called once the reader is no longer used.
func (e *Extractor) openReader() (*pdf.Reader, func() error, error) {
	f, err := os.Open(e.path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: open %s: %w", ErrExtractionBackend, e.path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("%w: stat %s: %w", ErrExtractionBackend, e.path, err)
	}

	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("%w: read %s: %w", ErrExtractionBackend, e.path, err)
	}
	return r, f.Close, nil
}

// extractFast returns the plain text of every page, empty pages included.
func (e *Extractor) extractFast(ctx context.Context) ([]schema.PageContent, error) {
	r, closeFn, err := e.openReader()
	if err != nil {
		return nil, err
	}
	defer closeFn()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrExtractionBackend)
	}
	e.logger.Debug("fast extraction starting", "pages", numPages)

	pages := make([]schema.PageContent, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text := ""
		page := r.Page(i)
		if page.V.IsNull() {
			e.logger.Warn("null page", "page", i)
		} else {
			text = e.pageText(page, i)
		}

		pages = append(pages, schema.PageContent{
			PageNumber: i,
			Text:       text,
			Method:     string(StrategyFast),
		})
	}
	return pages, nil
}

func (e *Extractor) pageText(page pdf.Page, pageNum int) string {
	if content, err := page.GetPlainText(nil); err == nil && strings.TrimSpace(content) != "" {
		return cleanText(content)
	}

	var b bytes.Buffer
	tokens := page.Content().Text
	for i, token := range tokens {
		b.WriteString(token.S)
		if i < len(tokens)-1 && !strings.HasSuffix(token.S, " ") && !strings.HasSuffix(token.S, "\n") {
			b.WriteString(" ")
		}
	}
	if text := cleanText(b.String()); text != "" {
		return text
	}

	e.logger.Debug("no text on page", "page", pageNum)
	return ""
}

// cleanText applies compatibility normalization, so full-width code
// letters and digits become ASCII, then collapses runs of whitespace.
func cleanText(text string) string {
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = horizontalSpaceRe.ReplaceAllString(text, " ")
	text = blankLineRe.ReplaceAllString(text, "\n\n")
	text = manyNewlinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
