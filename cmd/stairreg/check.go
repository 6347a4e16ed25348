package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sevigo/stairreg/regulation"
)

type checkOptions struct {
	configPath string
	riser      float64
	tread      float64
	landing    float64
}

func newCheckCmd(a *app) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "检查楼梯尺寸是否符合已提取的规范配置",
		Long: `读取由 stairreg 生成的JSON配置，检查给定的楼梯尺寸（单位: 米）。
不符合规范时退出码为 2。`,
		Example: `  stairreg check --config output/GB50368-2005_config.json --riser 0.17 --tread 0.27`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var landing *float64
			if cmd.Flags().Changed("landing") {
				landing = &opts.landing
			}
			return a.runCheck(opts, landing)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "规范JSON配置文件")
	f.Float64Var(&opts.riser, "riser", 0, "踏步高度（米）")
	f.Float64Var(&opts.tread, "tread", 0, "踏步宽度（米）")
	f.Float64Var(&opts.landing, "landing", 0, "平台长度（米），可选")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("riser")
	_ = cmd.MarkFlagRequired("tread")
	return cmd
}

func (a *app) runCheck(opts *checkOptions, landing *float64) error {
	if opts.riser <= 0 {
		return errors.New("--riser 必须大于0")
	}
	if opts.tread < 0 || (landing != nil && *landing < 0) {
		return errors.New("尺寸不能为负数")
	}

	reg, err := regulation.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}

	u := newUI(a.out)
	u.println(u.step.Render(fmt.Sprintf("规范: %s (%s)", reg.RegulationName, reg.RegulationCode)))

	res := regulation.Evaluate(reg, regulation.Stair{Riser: opts.riser, Tread: opts.tread, Landing: landing})
	u.println("实测: " + res.Metrics)

	for _, n := range res.Notices {
		u.Info("提示: %s", n)
	}
	if res.Compliant() {
		u.Success("✓ 符合规范")
		return nil
	}

	u.Error("✗ 不符合规范")
	for _, v := range res.Violations {
		u.println("  - " + v.Message)
	}
	return &exitError{code: 2}
}
