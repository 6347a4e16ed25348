package pdf

import (
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/sevigo/stairreg/schema"
)

// inspectStructure validates the cross reference table and object graph
// and returns the page count. Encrypted documents are rejected because
// the content stream reader cannot decrypt them.
func (e *Extractor) inspectStructure() (int, error) {
	conf := model.NewDefaultConfiguration()
	if err := api.ValidateFile(e.path, conf); err != nil {
		return 0, fmt.Errorf("%w: validate: %w", ErrExtractionBackend, err)
	}

	pdfCtx, err := api.ReadContextFile(e.path)
	if err != nil {
		return 0, fmt.Errorf("%w: read context: %w", ErrExtractionBackend, err)
	}
	if pdfCtx.Encrypt != nil {
		return 0, ErrEncryptedDocument
	}
	return pdfCtx.PageCount, nil
}

// extractTables rebuilds each page from positioned glyphs so that table
// cells stay on their rows, and records column-aligned blocks as tables.
func (e *Extractor) extractTables(ctx context.Context) ([]schema.PageContent, error) {
	pageCount, err := e.inspectStructure()
	if err != nil {
		return nil, err
	}

	r, closeFn, err := e.openReader()
	if err != nil {
		return nil, err
	}
	defer closeFn()

	numPages := r.NumPage()
	if numPages != pageCount {
		e.logger.Warn("page count mismatch between backends", "validated", pageCount, "reader", numPages)
	}
	if numPages == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrExtractionBackend)
	}
	e.logger.Debug("layout extraction starting", "pages", numPages)

	pages := make([]schema.PageContent, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pc := schema.PageContent{PageNumber: i, Method: string(StrategyTables)}
		page := r.Page(i)
		if !page.V.IsNull() {
			rows, err := page.GetTextByRow()
			if err != nil {
				return nil, fmt.Errorf("%w: page %d rows: %w", ErrExtractionBackend, i, err)
			}
			lines := buildLines(rows)
			pc.Text = cleanText(joinLines(lines))
			pc.Tables = detectTables(lines)
		}
		pages = append(pages, pc)
	}
	return pages, nil
}
