package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sevigo/stairreg/configgen"
	"github.com/sevigo/stairreg/pipeline"
	"github.com/sevigo/stairreg/regulation"
)

var stageTitles = map[pipeline.Stage]string{
	pipeline.StageExtract:      "解析PDF文件",
	pipeline.StageExtractRules: "使用LLM提取规范数据",
	pipeline.StageValidate:     "验证提取的数据",
	pipeline.StageEmit:         "保存配置文件",
}

// ui renders console output with styles bound to one writer, so color is
// only emitted when that writer is a terminal.
type ui struct {
	out io.Writer

	banner  lipgloss.Style
	step    lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
	panel   lipgloss.Style
	border  lipgloss.Style
}

func newUI(out io.Writer) *ui {
	r := lipgloss.NewRenderer(out)
	return &ui{
		out:     out,
		banner:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6")).Border(lipgloss.DoubleBorder()).Padding(1, 4),
		step:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4")),
		success: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#22C55E")),
		warning: r.NewStyle().Foreground(lipgloss.Color("#EAB308")),
		failure: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		panel:   r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#22C55E")).Padding(0, 2),
		border:  r.NewStyle().Foreground(lipgloss.Color("#45475A")),
	}
}

func (u *ui) println(s string) {
	fmt.Fprintln(u.out, s)
}

func (u *ui) Banner() {
	u.println(u.banner.Render("楼梯规范提取工具 (Stair Regulation Extractor)\n\n自动提取建筑规范中的楼梯限制"))
}

// StageStarted implements pipeline.Observer.
func (u *ui) StageStarted(stage pipeline.Stage, index, total int) {
	u.println("")
	u.println(u.step.Render(fmt.Sprintf("步骤 %d/%d: %s", index, total, stageTitles[stage])))
}

func (u *ui) Info(format string, args ...any) {
	u.println(u.muted.Render(fmt.Sprintf(format, args...)))
}

func (u *ui) Success(format string, args ...any) {
	u.println(u.success.Render(fmt.Sprintf(format, args...)))
}

func (u *ui) Warn(format string, args ...any) {
	u.println(u.warning.Render(fmt.Sprintf(format, args...)))
}

func (u *ui) Error(format string, args ...any) {
	u.println(u.failure.Render(fmt.Sprintf(format, args...)))
}

// Summary prints the extracted rules as a table followed by the
// validation outcome.
func (u *ui) Summary(reg *regulation.StairRegulation, warnings []string) {
	if reg == nil {
		return
	}

	u.println("")
	title := reg.RegulationName
	if reg.RegulationCode != "" {
		title += " (" + reg.RegulationCode + ")"
	}
	u.println(u.step.Render(title))

	rows := make([][]string, 0, len(regulation.RuleKeys()))
	for _, key := range regulation.RuleKeys() {
		rule := reg.Rule(key)
		if rule == nil {
			rows = append(rows, []string{key.Label(), "-", "-", "-", "未找到"})
			continue
		}
		rows = append(rows, []string{
			key.Label(),
			configgen.FormatBound(rule.MinValue),
			configgen.FormatBound(rule.MaxValue),
			rule.Unit,
			rule.Source,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(u.border).
		Headers("规则", "最小值", "最大值", "单位", "来源").
		Rows(rows...)
	u.println(t.String())

	if len(warnings) == 0 {
		u.Success("[OK] 数据验证通过")
		return
	}
	u.Warn("[WARNING] 发现异常数据:")
	for _, w := range warnings {
		u.Warn("  - %s", w)
	}
}

// NextSteps closes a successful run.
func (u *ui) NextSteps(res *pipeline.Result) {
	var b strings.Builder
	b.WriteString("下一步操作:\n\n")
	fmt.Fprintf(&b, "1. 查看生成的配置文件: %s\n", res.Outputs.JSON)
	b.WriteString("2. 将配置文件导入到ARCHICAD插件中\n")
	b.WriteString("3. 如有需要，可以手动编辑配置文件修正数值\n")
	extra := []string{res.Outputs.Header, res.Outputs.Report, res.Outputs.Workbook}
	for _, p := range extra {
		if p != "" {
			fmt.Fprintf(&b, "\n附加文件: %s", p)
		}
	}
	b.WriteString("\n\n提示: 请仔细检查提取的数值是否准确，LLM可能会出错！")

	u.println("")
	u.Success("[SUCCESS] 处理完成！")
	u.println(u.panel.Render(b.String()))
}
