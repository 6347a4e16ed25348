package prompts_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/stairreg/prompts"
)

func TestPromptTemplateFormat(t *testing.T) {
	t.Run("substitutes every occurrence", func(t *testing.T) {
		p := prompts.NewPromptTemplate("{{.a}} and {{.b}} and {{.a}}")
		assert.Equal(t, "1 and 2 and 1", p.Format(map[string]string{"a": "1", "b": "2"}))
	})

	t.Run("values are not rescanned", func(t *testing.T) {
		p := prompts.NewPromptTemplate("{{.a}}|{{.b}}")
		got := p.Format(map[string]string{"a": "{{.b}}", "b": "x"})
		assert.Equal(t, "{{.b}}|x", got)
	})

	t.Run("unknown placeholders stay", func(t *testing.T) {
		p := prompts.NewPromptTemplate("{{.missing}}")
		assert.Equal(t, "{{.missing}}", p.Format(map[string]string{"a": "1"}))
		assert.Equal(t, "{{.missing}}", p.Format(nil))
	})
}

func TestPromptTemplateVariables(t *testing.T) {
	p := prompts.NewPromptTemplate("{{.b}} {{.a}} {{.b}} {not_a_var}")
	assert.Equal(t, []string{"b", "a"}, p.Variables())
}

func TestStairRegulationPrompt(t *testing.T) {
	assert.Equal(t, []string{"text"}, prompts.StairRegulationPrompt.Variables())

	text := "=== 第3页 ===\n踏步高度不应大于0.175m"
	got := prompts.StairRegulationPrompt.Format(map[string]string{"text": text})

	assert.Contains(t, got, text)
	assert.NotContains(t, got, "{{.text}}")
	for _, key := range []string{"regulation_name", "regulation_code", "riser_height", "tread_depth", "two_r_plus_g", "landing_length"} {
		assert.Contains(t, got, key)
	}
	assert.True(t, strings.HasSuffix(got, "只返回JSON，不要添加其他说明文字。"))
	assert.NotEmpty(t, prompts.StairRegulationSystemPrompt)
}
