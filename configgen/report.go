package configgen

import (
	"bytes"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/sevigo/stairreg/regulation"
	"github.com/sevigo/stairreg/schema"
)

// Report is everything the human-readable artifacts describe.
type Report struct {
	Regulation  *regulation.StairRegulation
	Warnings    []string
	SourcePDF   string
	Method      string
	Pages       []schema.PageContent
	RunID       string
	GeneratedAt time.Time
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.Table),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(gmhtml.WithXHTML()),
	)
}

// RenderMarkdown builds the Markdown summary of r.
func RenderMarkdown(r Report) string {
	var b strings.Builder
	reg := r.Regulation
	if reg == nil {
		reg = &regulation.StairRegulation{}
	}

	fmt.Fprintf(&b, "# %s\n\n", mdText(reg.RegulationName))
	if reg.RegulationCode != "" {
		fmt.Fprintf(&b, "规范编号: **%s**\n\n", mdText(reg.RegulationCode))
	}
	if r.SourcePDF != "" {
		fmt.Fprintf(&b, "- 来源文件: `%s`\n", strings.ReplaceAll(r.SourcePDF, "`", "'"))
	}
	if r.Method != "" {
		fmt.Fprintf(&b, "- 提取方式: %s\n", r.Method)
	}
	if len(r.Pages) > 0 {
		nums := make([]string, len(r.Pages))
		for i, p := range r.Pages {
			nums[i] = strconv.Itoa(p.PageNumber)
		}
		fmt.Fprintf(&b, "- 相关页码: %s\n", strings.Join(nums, ", "))
	}
	if r.RunID != "" {
		fmt.Fprintf(&b, "- 运行ID: %s\n", r.RunID)
	}
	if !r.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "- 生成时间: %s\n", r.GeneratedAt.Format(time.RFC3339))
	}

	b.WriteString("\n## 楼梯规则\n\n")
	b.WriteString("| 规则 | 最小值 | 最大值 | 单位 | 来源 | 条文 |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
	for _, key := range regulation.RuleKeys() {
		rule := reg.Rule(key)
		if rule == nil {
			fmt.Fprintf(&b, "| %s | - | - | - | 未找到 | |\n", key.Label())
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			key.Label(),
			FormatBound(rule.MinValue),
			FormatBound(rule.MaxValue),
			mdText(rule.Unit),
			mdText(rule.Source),
			mdText(rule.FullText))
	}

	b.WriteString("\n## 数据验证\n\n")
	if len(r.Warnings) == 0 {
		b.WriteString("数据验证通过。\n")
	} else {
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- ⚠ %s\n", mdText(w))
		}
	}

	for _, p := range r.Pages {
		for i, t := range p.Tables {
			fmt.Fprintf(&b, "\n### 第%d页 表格 %d\n\n", p.PageNumber, i+1)
			b.WriteString(t.Markdown())
		}
	}
	return b.String()
}

// RenderHTML converts the Markdown summary into a standalone HTML page.
func RenderHTML(r Report) ([]byte, error) {
	var body bytes.Buffer
	if err := newMarkdown().Convert([]byte(RenderMarkdown(r)), &body); err != nil {
		return nil, fmt.Errorf("configgen: render report: %w", err)
	}

	title := "楼梯规范提取报告"
	if r.Regulation != nil && r.Regulation.RegulationName != "" {
		title = r.Regulation.RegulationName
	}

	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html lang=\"zh-CN\">\n<head>\n<meta charset=\"utf-8\" />\n")
	fmt.Fprintf(&out, "<title>%s</title>\n", html.EscapeString(title))
	out.WriteString("<style>body{font-family:sans-serif;max-width:960px;margin:2em auto}" +
		"table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:4px 8px}</style>\n")
	out.WriteString("</head>\n<body>\n")
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")
	return out.Bytes(), nil
}

// WriteReport renders r as HTML and writes it to path.
func WriteReport(path string, r Report) error {
	data, err := RenderHTML(r)
	if err != nil {
		return err
	}
	return WriteFile(path, data)
}

// FormatBound renders an optional bound with three decimals, or "-".
func FormatBound(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 3, 64)
}

func mdText(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\n", " ")
	return html.EscapeString(strings.TrimSpace(s))
}
