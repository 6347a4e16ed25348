package pdf

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sevigo/stairreg/schema"
)

var defaultKeywords = []string{
	"楼梯", "踏步", "平台", "栏杆", "扶手", "梯段", "踢面", "踏面", "梯井",
	"stair", "step", "riser", "tread", "landing",
}

// DefaultKeywords returns the stair vocabulary used to select pages.
func DefaultKeywords() []string {
	return append([]string(nil), defaultKeywords...)
}

// ContainsKeyword reports whether text contains any keyword, ignoring case.
func ContainsKeyword(text string, keywords []string) bool {
	if text == "" {
		return false
	}
	lower := cases.Lower(language.Und)
	haystack := lower.String(text)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(haystack, lower.String(kw)) {
			return true
		}
	}
	return false
}

// FilterStairPages keeps the pages that mention a keyword, preserving order.
func FilterStairPages(pages []schema.PageContent, keywords []string) []schema.PageContent {
	if len(keywords) == 0 {
		keywords = defaultKeywords
	}
	out := make([]schema.PageContent, 0, len(pages))
	for _, p := range pages {
		if ContainsKeyword(p.Text, keywords) {
			out = append(out, p)
		}
	}
	return out
}
