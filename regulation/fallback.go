package regulation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	titleScanLines = 20
	maxTitleRunes  = 50
)

// Code patterns in priority order: national, industry, then local
// standards.
var codePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)GB\s*\d+[-\s]*\d+`),
	regexp.MustCompile(`(?i)JGJ\s*\d+[-\s]*\d+`),
	regexp.MustCompile(`(?i)DB\s*\d+/T\s*\d+[-\s]*\d+`),
}

var titleMarkers = []string{"规范", "标准", "规程", "建筑"}

// Fallback is the name and code found by pattern matching alone.
type Fallback struct {
	Name string
	Code string
}

// SniffFallback scans text for a standard code and a short title line.
func SniffFallback(text string) Fallback {
	return Fallback{
		Name: sniffTitle(text),
		Code: sniffCode(text),
	}
}

func sniffCode(text string) string {
	for _, re := range codePatterns {
		if m := re.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

func sniffTitle(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > titleScanLines {
		lines = lines[:titleScanLines]
	}
	for _, line := range lines {
		if !containsAny(line, titleMarkers) {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if utf8.RuneCountInString(trimmed) < maxTitleRunes {
			return trimmed
		}
	}
	return ""
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
