package chains_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/stairreg/chains"
	"github.com/sevigo/stairreg/llms"
	"github.com/sevigo/stairreg/llms/fake"
	testutil "github.com/sevigo/stairreg/parsers/testing"
	"github.com/sevigo/stairreg/prompts"
	"github.com/sevigo/stairreg/regulation"
	"github.com/sevigo/stairreg/schema"
)

const fullResponse = `{
  "regulation_name": "住宅建筑规范",
  "regulation_code": "GB 50368-2005",
  "riser_height": {"max_value": 0.175, "unit": "m", "source": "第6.3.2条", "full_text": "楼梯踏步高度不应大于0.175m"},
  "tread_depth": {"min_value": 0.26, "unit": "m", "source": "第6.3.2条", "full_text": "踏步宽度不应小于0.26m"},
  "two_r_plus_g": null,
  "landing_length": null
}`

func stairPages() []schema.PageContent {
	return []schema.PageContent{
		{PageNumber: 2, Text: "住宅建筑规范\nGB 50368-2005", Method: "fast"},
		{PageNumber: 4, Text: "6.3.2 踏步高度不应大于0.175m", Method: "fast"},
	}
}

func TestCombinePages(t *testing.T) {
	got := chains.CombinePages(stairPages())
	assert.Equal(t, "=== 第2页 ===\n住宅建筑规范\nGB 50368-2005\n\n=== 第4页 ===\n6.3.2 踏步高度不应大于0.175m", got)
	assert.Empty(t, chains.CombinePages(nil))
}

func TestTruncate(t *testing.T) {
	got, cut := chains.Truncate("楼梯踏步", 2)
	assert.True(t, cut)
	assert.Equal(t, "楼梯", got)

	got, cut = chains.Truncate("楼梯", 2)
	assert.False(t, cut)
	assert.Equal(t, "楼梯", got)

	got, cut = chains.Truncate("abc", 0)
	assert.False(t, cut)
	assert.Equal(t, "abc", got)
}

func TestNewRegulationExtractionRequiresLLM(t *testing.T) {
	_, err := chains.NewRegulationExtraction(nil)
	assert.Error(t, err)
}

func TestRegulationExtraction_Call(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		fakeLLM := fake.NewFakeLLM([]string{fullResponse})
		chain, err := chains.NewRegulationExtraction(fakeLLM)
		require.NoError(t, err)

		reg, err := chain.Call(ctx, stairPages())
		require.NoError(t, err)

		assert.Equal(t, "住宅建筑规范", reg.RegulationName)
		assert.Equal(t, "GB 50368-2005", reg.RegulationCode)
		require.NotNil(t, reg.RiserHeight)
		assert.InDelta(t, 0.175, *reg.RiserHeight.MaxValue, 1e-9)
		assert.Nil(t, reg.TwoRPlusG)
		assert.Equal(t, 1, fakeLLM.GetCallCount())

		messages := fakeLLM.LastMessages()
		require.Len(t, messages, 2)
		assert.Equal(t, schema.ChatMessageTypeSystem, messages[0].Role)
		assert.Equal(t, prompts.StairRegulationSystemPrompt, messages[0].GetTextContent())

		expectedPrompt := prompts.StairRegulationPrompt.Format(map[string]string{
			"text": chains.CombinePages(stairPages()),
		})
		lastPrompt, _ := fakeLLM.LastPrompt()
		assert.Equal(t, expectedPrompt, lastPrompt)

		opts := fakeLLM.LastOptions()
		assert.True(t, opts.JSONMode)
		assert.InDelta(t, 0.1, opts.Temperature, 1e-9)
		assert.Empty(t, opts.Model)
	})

	t.Run("model override", func(t *testing.T) {
		fakeLLM := fake.NewFakeLLM([]string{fullResponse})
		chain, err := chains.NewRegulationExtraction(fakeLLM, chains.WithModel("openai/gpt-4o"), chains.WithTemperature(0.2))
		require.NoError(t, err)

		_, err = chain.Call(ctx, stairPages())
		require.NoError(t, err)
		assert.Equal(t, "openai/gpt-4o", fakeLLM.LastOptions().Model)
		assert.InDelta(t, 0.2, fakeLLM.LastOptions().Temperature, 1e-9)
	})

	t.Run("long text is cut to the budget", func(t *testing.T) {
		pages := []schema.PageContent{
			{PageNumber: 1, Text: strings.Repeat("楼", 9000)},
			{PageNumber: 2, Text: strings.Repeat("梯", 9000)},
		}
		combined := chains.CombinePages(pages)
		require.Greater(t, utf8.RuneCountInString(combined), chains.DefaultMaxChars)
		want, _ := chains.Truncate(combined, chains.DefaultMaxChars)
		require.Equal(t, chains.DefaultMaxChars, utf8.RuneCountInString(want))

		fakeLLM := fake.NewFakeLLM([]string{`{}`})
		chain, err := chains.NewRegulationExtraction(fakeLLM)
		require.NoError(t, err)

		ex, err := chain.Extract(ctx, pages)
		require.NoError(t, err)
		assert.True(t, ex.Truncated)
		assert.Equal(t, chains.DefaultMaxChars, ex.PromptRunes)

		lastPrompt, _ := fakeLLM.LastPrompt()
		assert.Contains(t, lastPrompt, want)
		assert.NotContains(t, lastPrompt, want+"梯")
	})

	t.Run("model code empty falls back to regex", func(t *testing.T) {
		fakeLLM := fake.NewFakeLLM([]string{`{"regulation_name": "饮食建筑设计标准", "regulation_code": ""}`})
		chain, err := chains.NewRegulationExtraction(fakeLLM)
		require.NoError(t, err)

		pages := []schema.PageContent{{PageNumber: 1, Text: "饮食建筑设计标准 JGJ 64-2017\n楼梯"}}
		ex, err := chain.Extract(ctx, pages)
		require.NoError(t, err)
		assert.Equal(t, "JGJ 64-2017", ex.Regulation.RegulationCode)
		assert.Equal(t, "JGJ 64-2017", ex.Fallback.Code)
	})

	t.Run("null source becomes empty string", func(t *testing.T) {
		fakeLLM := fake.NewFakeLLM([]string{`{"riser_height": {"max_value": 0.18, "unit": "m", "source": null}}`})
		chain, err := chains.NewRegulationExtraction(fakeLLM)
		require.NoError(t, err)

		reg, err := chain.Call(ctx, stairPages())
		require.NoError(t, err)
		require.NotNil(t, reg.RiserHeight)
		assert.Equal(t, "", reg.RiserHeight.Source)
	})

	t.Run("no pages", func(t *testing.T) {
		fakeLLM := fake.NewFakeLLM([]string{fullResponse})
		chain, err := chains.NewRegulationExtraction(fakeLLM)
		require.NoError(t, err)

		_, err = chain.Call(ctx, nil)
		assert.ErrorIs(t, err, chains.ErrNoPages)
		assert.Equal(t, 0, fakeLLM.GetCallCount())
	})

	t.Run("request failure carries hint", func(t *testing.T) {
		cause := errors.New("Post \"https://api.openai.com/v1/chat/completions\": request timeout")
		fakeLLM := fake.NewFakeLLM(nil)
		fakeLLM.SetError(cause)
		chain, err := chains.NewRegulationExtraction(fakeLLM)
		require.NoError(t, err)

		_, err = chain.Call(ctx, stairPages())
		require.ErrorIs(t, err, chains.ErrLLMRequest)
		assert.ErrorIs(t, err, cause)

		var reqErr *chains.RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, llms.HintTimeout, reqErr.Hint)
	})

	t.Run("empty completion is a request failure", func(t *testing.T) {
		chain, err := chains.NewRegulationExtraction(fake.NewFakeLLM(nil))
		require.NoError(t, err)

		_, err = chain.Call(ctx, stairPages())
		assert.ErrorIs(t, err, chains.ErrLLMRequest)
	})

	t.Run("unparseable response logs excerpt", func(t *testing.T) {
		logger, buf := testutil.NewTestLogger(t)
		raw := "抱歉" + strings.Repeat("x", 600)
		chain, err := chains.NewRegulationExtraction(fake.NewFakeLLM([]string{raw}), chains.WithLogger(logger))
		require.NoError(t, err)

		_, err = chain.Call(ctx, stairPages())
		require.ErrorIs(t, err, chains.ErrResponseParse)
		assert.ErrorIs(t, err, regulation.ErrInvalidResponse)

		logged := buf.String()
		assert.Contains(t, logged, "could not parse LLM response")
		assert.Contains(t, logged, "抱歉"+strings.Repeat("x", 498)+"...")
		assert.NotContains(t, logged, strings.Repeat("x", 499))
	})
}
