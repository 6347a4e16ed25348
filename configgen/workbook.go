package configgen

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/sevigo/stairreg/regulation"
)

const (
	rulesSheet  = "规则"
	pagesSheet  = "页面"
	tablesSheet = "表格"

	maxCellRunes = 32767
)

// RenderWorkbook builds an xlsx document with the rules, the matched pages
// and any detected tables.
func RenderWorkbook(r Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", rulesSheet); err != nil {
		return nil, fmt.Errorf("configgen: rename sheet: %w", err)
	}
	for _, name := range []string{pagesSheet, tablesSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("configgen: create sheet %s: %w", name, err)
		}
	}

	if err := writeRulesSheet(f, r); err != nil {
		return nil, err
	}
	if err := writePagesSheet(f, r); err != nil {
		return nil, err
	}
	if err := writeTablesSheet(f, r); err != nil {
		return nil, err
	}

	if idx, err := f.GetSheetIndex(rulesSheet); err == nil {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("configgen: encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteWorkbook renders the workbook for r and writes it to path.
func WriteWorkbook(path string, r Report) error {
	data, err := RenderWorkbook(r)
	if err != nil {
		return err
	}
	return WriteFile(path, data)
}

func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("configgen: write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func writeRulesSheet(f *excelize.File, r Report) error {
	reg := r.Regulation
	if reg == nil {
		reg = &regulation.StairRegulation{}
	}

	rows := [][]any{
		{"规范名称", reg.RegulationName},
		{"规范编号", reg.RegulationCode},
		{},
		{"规则", "键", "最小值", "最大值", "单位", "来源", "条文"},
	}
	for _, key := range regulation.RuleKeys() {
		rule := reg.Rule(key)
		if rule == nil {
			rows = append(rows, []any{key.Label(), string(key)})
			continue
		}
		rows = append(rows, []any{
			key.Label(), string(key),
			optionalValue(rule.MinValue), optionalValue(rule.MaxValue),
			rule.Unit, rule.Source, rule.FullText,
		})
	}
	if len(r.Warnings) > 0 {
		rows = append(rows, []any{}, []any{"验证警告"})
		for _, w := range r.Warnings {
			rows = append(rows, []any{w})
		}
	}

	for i, values := range rows {
		if err := setRow(f, rulesSheet, i+1, values...); err != nil {
			return err
		}
	}
	return nil
}

func writePagesSheet(f *excelize.File, r Report) error {
	if err := setRow(f, pagesSheet, 1, "页码", "提取方式", "表格数", "文本"); err != nil {
		return err
	}
	for i, p := range r.Pages {
		if err := setRow(f, pagesSheet, i+2, p.PageNumber, p.Method, len(p.Tables), clipCell(p.Text)); err != nil {
			return err
		}
	}
	return nil
}

func writeTablesSheet(f *excelize.File, r Report) error {
	if err := setRow(f, tablesSheet, 1, "页码", "表格", "行"); err != nil {
		return err
	}
	row := 2
	for _, p := range r.Pages {
		for ti, t := range p.Tables {
			for _, cells := range t.Rows {
				values := []any{p.PageNumber, ti + 1}
				for _, c := range cells {
					values = append(values, clipCell(c))
				}
				if err := setRow(f, tablesSheet, row, values...); err != nil {
					return err
				}
				row++
			}
		}
	}
	return nil
}

func optionalValue(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

// clipCell keeps text within the xlsx cell limit.
func clipCell(s string) string {
	if r := []rune(s); len(r) > maxCellRunes {
		return string(r[:maxCellRunes])
	}
	return strings.TrimSpace(s)
}
