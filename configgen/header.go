package configgen

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"unicode"

	"github.com/sevigo/stairreg/regulation"
)

var headerTemplate = template.Must(template.New("header").Funcs(template.FuncMap{
	"cstr": strconv.Quote,
}).Parse(`// 楼梯规范配置: {{.CommentName}}{{if .CommentCode}} ({{.CommentCode}}){{end}}
// 由 stairreg 自动生成，请勿手动修改。
#pragma once

namespace StairRegulation {

constexpr const char* kRegulationName = {{cstr .Name}};
constexpr const char* kRegulationCode = {{cstr .Code}};
{{range .Rules}}
// {{.Label}}{{if .Source}} ({{.Source}}){{end}}
{{- range .Constants}}
constexpr double {{.Name}} = {{.Value}};
{{- end}}
{{end}}
}  // namespace StairRegulation
`))

type headerData struct {
	Name        string
	Code        string
	CommentName string
	CommentCode string
	Rules       []headerRule
}

type headerRule struct {
	Label     string
	Source    string
	Constants []headerConstant
}

type headerConstant struct {
	Name  string
	Value string
}

var constantPrefixes = map[regulation.RuleKey]string{
	regulation.RiserHeight:   "kRiserHeight",
	regulation.TreadDepth:    "kTreadDepth",
	regulation.TwoRPlusG:     "kTwoRPlusG",
	regulation.LandingLength: "kLandingLength",
}

// RenderHeader renders one constexpr constant per present rule bound.
// Rules without bounds are left out.
func RenderHeader(reg *regulation.StairRegulation) (string, error) {
	if reg == nil {
		return "", fmt.Errorf("configgen: nil regulation")
	}

	data := headerData{
		Name:        reg.RegulationName,
		Code:        reg.RegulationCode,
		CommentName: sanitizeComment(reg.RegulationName),
		CommentCode: sanitizeComment(reg.RegulationCode),
	}
	for _, nr := range reg.PresentRules() {
		hr := headerRule{
			Label:  nr.Key.Label(),
			Source: sanitizeComment(nr.Rule.Source),
		}
		prefix := constantPrefixes[nr.Key]
		if nr.Rule.MinValue != nil {
			hr.Constants = append(hr.Constants, headerConstant{Name: prefix + "Min", Value: cDouble(*nr.Rule.MinValue)})
		}
		if nr.Rule.MaxValue != nil {
			hr.Constants = append(hr.Constants, headerConstant{Name: prefix + "Max", Value: cDouble(*nr.Rule.MaxValue)})
		}
		if len(hr.Constants) > 0 {
			data.Rules = append(data.Rules, hr)
		}
	}

	var buf bytes.Buffer
	if err := headerTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("configgen: render header: %w", err)
	}
	return buf.String(), nil
}

// WriteHeader renders the header for reg and writes it to path.
func WriteHeader(path string, reg *regulation.StairRegulation) error {
	out, err := RenderHeader(reg)
	if err != nil {
		return err
	}
	return WriteFile(path, []byte(out))
}

// cDouble formats v as a C floating literal, always with a decimal point.
func cDouble(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// sanitizeComment keeps s on a single // comment line: control characters
// and line separators become spaces, and a trailing backslash, which would
// splice the next source line into the comment, is dropped.
func sanitizeComment(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == '\u2028' || r == '\u2029' {
			return ' '
		}
		return r
	}, s)
	return strings.TrimRight(strings.TrimSpace(s), `\ `)
}
