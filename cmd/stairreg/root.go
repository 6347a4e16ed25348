package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sevigo/stairreg/config"
	"github.com/sevigo/stairreg/configgen"
	"github.com/sevigo/stairreg/parsers/pdf"
	"github.com/sevigo/stairreg/pipeline"
)

var errNoStairPages = errors.New("未找到楼梯相关内容")

type rootOptions struct {
	pdfPath    string
	output     string
	cpp        bool
	report     bool
	xlsx       bool
	method     string
	provider   string
	model      string
	configFile string
	envFile    string
	verbose    bool
}

func newRootCmd(a *app) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "stairreg",
		Short: "从PDF规范文件中自动提取楼梯限制",
		Long: `楼梯规范提取工具：解析建筑规范PDF，筛选楼梯相关页面，
调用LLM提取踏步高度、踏步宽度、2R+G与平台长度等限制，并生成JSON配置。

未指定 --pdf 时进入交互模式。`,
		Example: `  # 交互式模式
  stairreg

  # 命令行模式
  stairreg --pdf GB50368-2005.pdf --output config.json

  # 同时生成C++头文件
  stairreg --pdf 规范.pdf --cpp`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runExtract(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.pdfPath, "pdf", "", "PDF规范文件路径")
	f.StringVarP(&opts.output, "output", "o", "", "输出JSON配置文件路径（默认: <输出目录>/<pdf名称>_config.json）")
	f.BoolVar(&opts.cpp, "cpp", false, "同时生成C++头文件")
	f.BoolVar(&opts.report, "report", false, "同时生成HTML报告")
	f.BoolVar(&opts.xlsx, "xlsx", false, "同时导出Excel工作簿")
	f.StringVar(&opts.method, "method", "", "PDF提取方式: auto, fast, tables")
	f.StringVar(&opts.provider, "provider", "", "LLM提供方: "+strings.Join(config.Providers(), ", "))
	f.StringVar(&opts.model, "model", "", "模型名称（覆盖 LLM_MODEL）")
	f.StringVar(&opts.configFile, "config", "", "YAML配置文件（默认: "+config.DefaultConfigFile+"，如存在）")
	f.StringVar(&opts.envFile, "env-file", "", "环境变量文件（默认: "+config.DefaultEnvFile+"）")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "输出调试日志")

	cmd.SetIn(a.in)
	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)
	cmd.AddCommand(newCheckCmd(a))
	return cmd
}

func (a *app) loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{ConfigFile: opts.configFile, EnvFile: opts.envFile})
	if err != nil {
		return nil, err
	}
	if opts.provider != "" {
		cfg.SetProvider(opts.provider)
	}
	if opts.model != "" {
		cfg.LLM.Model = opts.model
	}
	if opts.method != "" {
		method, err := pdf.ParseStrategy(opts.method)
		if err != nil {
			return nil, err
		}
		cfg.Extraction.Method = string(method)
	}
	return cfg, nil
}

// checkPDF reports a missing input before credentials or the network are
// touched.
func checkPDF(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", pdf.ErrFileNotFound, path)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", pdf.ErrFileNotFound, path)
	}
	return nil
}

func (a *app) runExtract(ctx context.Context, opts *rootOptions) error {
	u := newUI(a.out)
	logger := newLogger(a.errOut, opts.verbose)

	cfg, err := a.loadConfig(opts)
	if err != nil {
		return err
	}

	u.Banner()
	req := pipeline.Request{
		PDFPath:    opts.pdfPath,
		OutputPath: opts.output,
		Header:     opts.cpp,
		Report:     opts.report,
		Workbook:   opts.xlsx,
	}

	if req.PDFPath == "" {
		if !a.isTerminal() {
			return errors.New("未指定 --pdf，且标准输入不是终端，无法进入交互模式")
		}
		answers, err := runInteractive(newPrompter(a.in, u), func(p string) string {
			return configgen.DefaultOutputPath(cfg.Output.Dir, p)
		})
		if err != nil {
			return fmt.Errorf("交互输入失败: %w", err)
		}
		req.PDFPath = answers.PDFPath
		req.OutputPath = answers.OutputPath
		req.Header = answers.Header
	} else if err := checkPDF(req.PDFPath); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	model, err := a.newModel(ctx, cfg.LLM, logger)
	if err != nil {
		return err
	}
	u.Info("使用模型: %s (%s)", cfg.LLM.Model, cfg.LLM.Provider)

	p, err := pipeline.New(cfg, a.newExtractor, model, logger, pipeline.WithObserver(u))
	if err != nil {
		return err
	}

	res, err := p.Run(ctx, req)
	if err != nil {
		return err
	}
	if res.Empty() {
		u.Error("错误: %v", errNoStairPages)
		return &exitError{code: 1}
	}

	u.Info("提取方式: %s，相关页面 %d/%d", res.Method, len(res.Pages), res.TotalPages)
	if res.Truncated {
		u.Warn("文本过长，已截取前%d字符", cfg.Extraction.MaxChars)
	}
	u.Summary(res.Regulation, res.Warnings)
	u.NextSteps(res)
	return nil
}
