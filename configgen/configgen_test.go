package configgen_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sevigo/stairreg/configgen"
	"github.com/sevigo/stairreg/regulation"
	"github.com/sevigo/stairreg/schema"
)

func fullRegulation() *regulation.StairRegulation {
	f := regulation.Float
	return &regulation.StairRegulation{
		RegulationName: "住宅建筑规范",
		RegulationCode: "GB 50368-2005",
		RiserHeight:    &regulation.RegulationRule{MaxValue: f(0.175), Unit: "m", Source: "第6.3.2条", FullText: "楼梯踏步高度不应大于0.175m"},
		TreadDepth:     &regulation.RegulationRule{MinValue: f(0.26), Unit: "m", Source: "第6.3.2条", FullText: "踏步宽度不应小于0.26m"},
		TwoRPlusG:      &regulation.RegulationRule{MinValue: f(0.54), MaxValue: f(0.62), Unit: "m", Source: "经验公式", FullText: "2R+G应在540~620mm之间"},
		LandingLength:  &regulation.RegulationRule{MinValue: f(1.2), Unit: "m", Source: "平台要求", FullText: "中间平台宽度不应小于1.20m"},
	}
}

func TestPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("output", "GB50368-2005_config.json"), configgen.DefaultOutputPath("output", "/data/GB50368-2005.pdf"))
	assert.Equal(t, filepath.Join("out", "住宅规范_config.json"), configgen.DefaultOutputPath("out", "住宅规范.PDF"))
	assert.Equal(t, "output/a_config.h", configgen.HeaderPath("output/a_config.json"))
	assert.Equal(t, "cfg.h", configgen.HeaderPath("cfg"))
	assert.Equal(t, "output/a_config.xlsx", configgen.SiblingPath("output/a_config.json", ".xlsx"))
}

func TestSaveJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cfg.json")
	want := fullRegulation()
	require.NoError(t, configgen.SaveJSON(path, want))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"regulation_name": "住宅建筑规范"`)
	assert.Contains(t, string(data), "2R+G应在540~620mm之间")

	var got regulation.StairRegulation
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, *want, got)
}

func TestSaveJSONKeyOrderAndNulls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	reg := &regulation.StairRegulation{
		RegulationName: "x",
		RiserHeight:    &regulation.RegulationRule{MaxValue: regulation.Float(0.18), Unit: "m"},
	}
	require.NoError(t, configgen.SaveJSON(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	keys := []string{"regulation_name", "regulation_code", "riser_height", "tread_depth", "two_r_plus_g", "landing_length"}
	last := -1
	for _, k := range keys {
		idx := strings.Index(text, `"`+k+`"`)
		require.GreaterOrEqual(t, idx, 0, k)
		assert.Greater(t, idx, last, k)
		last = idx
	}
	assert.Contains(t, text, `"min_value": null`)
	assert.Contains(t, text, `"landing_length": null`)
}

func TestSaveJSONNil(t *testing.T) {
	assert.Error(t, configgen.SaveJSON(filepath.Join(t.TempDir(), "x.json"), nil))
}

func TestRenderHeader(t *testing.T) {
	reg := fullRegulation()
	reg.TreadDepth.MinValue = nil

	out, err := configgen.RenderHeader(reg)
	require.NoError(t, err)

	assert.Contains(t, out, "#pragma once")
	assert.Contains(t, out, `constexpr const char* kRegulationName = "住宅建筑规范";`)
	assert.Contains(t, out, "constexpr double kRiserHeightMax = 0.175;")
	assert.Contains(t, out, "constexpr double kTwoRPlusGMin = 0.54;")
	assert.Contains(t, out, "constexpr double kTwoRPlusGMax = 0.62;")
	assert.Contains(t, out, "constexpr double kLandingLengthMin = 1.2;")
	assert.NotContains(t, out, "kTreadDepth")
	assert.NotContains(t, out, "kRiserHeightMin")
	assert.Contains(t, out, "// 踏步高度 (第6.3.2条)")
}

func TestRenderHeaderIntegerValues(t *testing.T) {
	reg := &regulation.StairRegulation{
		RegulationName: `带"引号"的规范`,
		LandingLength:  &regulation.RegulationRule{MinValue: regulation.Float(2)},
	}
	out, err := configgen.RenderHeader(reg)
	require.NoError(t, err)
	assert.Contains(t, out, "constexpr double kLandingLengthMin = 2.0;")
	assert.Contains(t, out, `"带\"引号\"的规范"`)
}

func TestRenderHeaderKeepsCommentsOnOneLine(t *testing.T) {
	reg := fullRegulation()
	reg.RegulationName = "住宅建筑规范\nconstexpr int injected = 1;"
	reg.RegulationCode = "GB 50368-2005\\"
	reg.RiserHeight.Source = "第6.3.2条\r\nint injected_source = 2;"

	out, err := configgen.RenderHeader(reg)
	require.NoError(t, err)

	for _, line := range strings.Split(out, "\n") {
		assert.False(t, strings.HasSuffix(line, `\`), "line continues into the next: %q", line)
		if strings.Contains(line, "injected") {
			assert.True(t,
				strings.HasPrefix(line, "//") || strings.HasPrefix(line, "constexpr const char* kRegulationName"),
				"text escaped its comment: %q", line)
		}
	}
	assert.Contains(t, out, "// 楼梯规范配置: 住宅建筑规范 constexpr int injected = 1; (GB 50368-2005)")
	assert.Contains(t, out, `kRegulationName = "住宅建筑规范\nconstexpr int injected = 1;";`)
}

func TestWriteHeader(t *testing.T) {
	path := configgen.HeaderPath(filepath.Join(t.TempDir(), "cfg.json"))
	require.NoError(t, configgen.WriteHeader(path, fullRegulation()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "namespace StairRegulation")
}

func sampleReport() configgen.Report {
	return configgen.Report{
		Regulation: fullRegulation(),
		Warnings:   []string{"踏步高度异常: 0.300m"},
		SourcePDF:  "GB50368-2005.pdf",
		Method:     "tables",
		Pages: []schema.PageContent{
			{PageNumber: 2, Text: "楼梯", Method: "tables", Tables: []schema.Table{{Rows: [][]string{{"项目", "限值"}, {"踏步高度", "0.175"}}}}},
			{PageNumber: 4, Text: "踏步", Method: "tables"},
		},
		RunID:       "run-1",
		GeneratedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestRenderMarkdown(t *testing.T) {
	md := configgen.RenderMarkdown(sampleReport())
	assert.Contains(t, md, "# 住宅建筑规范")
	assert.Contains(t, md, "| 踏步高度 | - | 0.175 | m | 第6.3.2条 |")
	assert.Contains(t, md, "- 相关页码: 2, 4")
	assert.Contains(t, md, "踏步高度异常: 0.300m")
	assert.Contains(t, md, "### 第2页 表格 1")
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")
	require.NoError(t, configgen.WriteReport(path, sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "<title>住宅建筑规范</title>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>踏步高度</td>")
	assert.Contains(t, html, "run-1")
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "cfg.xlsx")
	require.NoError(t, configgen.WriteWorkbook(path, sampleReport()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"规则", "页面", "表格"}, f.GetSheetList())

	name, err := f.GetCellValue("规则", "B1")
	require.NoError(t, err)
	assert.Equal(t, "住宅建筑规范", name)

	maxRiser, err := f.GetCellValue("规则", "D5")
	require.NoError(t, err)
	assert.Equal(t, "0.175", maxRiser)

	page, err := f.GetCellValue("页面", "A3")
	require.NoError(t, err)
	assert.Equal(t, "4", page)

	cell, err := f.GetCellValue("表格", "D3")
	require.NoError(t, err)
	assert.Equal(t, "0.175", cell)
}
