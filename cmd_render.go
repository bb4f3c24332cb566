package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ByLCY/emodis/export"
	"github.com/ByLCY/emodis/layout"
)

// renderFlags 对应 render 命令的参数，未显式设置的参数沿用配置。
type renderFlags struct {
	size        int
	fill        string
	stroke      string
	strokeWidth int
	background  string
	font        string
	scale       float64
	three       string
	stretch     string

	out            string
	dir            string
	dpr            float64
	preview        int
	debug          bool
	checkMonotonic bool
	download       bool
}

func newRenderCmd(a *app) *cobra.Command {
	var f renderFlags
	cmd := &cobra.Command{
		Use:   "render [text]",
		Short: "渲染单个表情",
		Long: `渲染 1~6 个字符为正方形 PNG。文本作为一个参数传入，含空格时需加引号。

示例:
  emodis render 草
  emodis render 四字熟語 --fill "#ff3b30" --stroke "#ffffff" --size 256
  emodis render あいう --three twoPlusOne --stretch 1.4 --out out/aiu.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := a.defaults()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				req.Text = args[0]
			}
			if err := f.apply(cmd, &req); err != nil {
				return err
			}
			if err := req.Validate(); err != nil {
				return err
			}
			if err := export.CheckTemplate(f.out); err != nil {
				return err
			}

			p := a.newPipeline(cmd, &f)
			outPath := a.outputPath(cmd, &f, req)
			if _, err := p.run(cmd.Context(), req, outPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), outPath)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.IntVarP(&f.size, "size", "s", 128, "画布边长（px）")
	fl.StringVar(&f.fill, "fill", "", "填充色，例如 #ff3b30")
	fl.StringVar(&f.stroke, "stroke", "", "描边色")
	fl.IntVar(&f.strokeWidth, "stroke-width", 6, "描边宽度（px），0 表示不描边")
	fl.StringVar(&f.background, "bg", "", "背景色；none 表示透明")
	fl.StringVarP(&f.font, "font", "f", "", "字体: pop, mushin, yugothic, meiryo")
	fl.Float64Var(&f.scale, "scale", 1.3, "字体倍率")
	fl.StringVar(&f.three, "three", "", "三字布局: row 或 twoPlusOne")
	fl.StringVar(&f.stretch, "stretch", "", "纵向拉伸: auto 或数值")
	addOutputFlags(cmd, &f)
	fl.StringVarP(&f.out, "out", "o", "", "输出路径（支持 ${text} 等占位符）")
	return cmd
}

// addOutputFlags 注册 render、batch 与 watch 共用的输出参数。
func addOutputFlags(cmd *cobra.Command, f *renderFlags) {
	fl := cmd.Flags()
	fl.StringVarP(&f.dir, "dir", "d", "", "输出目录")
	fl.Float64Var(&f.dpr, "dpr", 1, "设备像素比，输出尺寸为 size×dpr")
	fl.IntVar(&f.preview, "preview", 0, "额外输出 N px 见方的预览图，0 表示不输出")
	fl.BoolVar(&f.debug, "debug", false, "输出布局调试 JSON")
	fl.BoolVar(&f.checkMonotonic, "check-monotonic", false, "检查字体度量随字号单调")
	fl.BoolVar(&f.download, "download", false, "允许从 Google Fonts 下载字体")
}

// apply 将显式设置的参数写入请求。
func (f *renderFlags) apply(cmd *cobra.Command, req *layout.Request) error {
	fl := cmd.Flags()
	if fl.Changed("size") {
		req.Size = f.size
	}
	if fl.Changed("fill") {
		c, err := layout.ParseColor(f.fill)
		if err != nil {
			return err
		}
		req.Fill = c
	}
	if fl.Changed("stroke") {
		c, err := layout.ParseColor(f.stroke)
		if err != nil {
			return err
		}
		req.Stroke = c
	}
	if fl.Changed("stroke-width") {
		req.StrokeWidth = f.strokeWidth
	}
	if fl.Changed("bg") {
		switch strings.ToLower(strings.TrimSpace(f.background)) {
		case "", "none", "off", "transparent":
			req.Background = false
		default:
			c, err := layout.ParseColor(f.background)
			if err != nil {
				return err
			}
			req.Background, req.BackgroundColor = true, c
		}
	}
	if fl.Changed("font") {
		req.Font = layout.FontKey(f.font)
	}
	if fl.Changed("scale") {
		req.FontScale = f.scale
	}
	if fl.Changed("three") {
		req.ThreeMode = layout.ThreeMode(f.three)
	}
	if fl.Changed("stretch") {
		if strings.EqualFold(f.stretch, string(layout.StretchAuto)) {
			req.StretchMode = layout.StretchAuto
		} else {
			v, err := strconv.ParseFloat(f.stretch, 64)
			if err != nil {
				return fmt.Errorf("无法解析纵向拉伸率 %q: %w", f.stretch, err)
			}
			req.StretchMode, req.ManualStretch = layout.StretchManual, v
		}
	}
	return nil
}

// outputOptions 合并配置与命令行参数。
func (a *app) outputOptions(cmd *cobra.Command, f *renderFlags) outputOptions {
	o := outputOptions{
		DPR:            a.cfg.Output.DPR,
		Preview:        a.cfg.Output.Preview,
		Debug:          a.cfg.Output.Debug,
		CheckMonotonic: a.cfg.Output.CheckMonotonic,
	}
	fl := cmd.Flags()
	if fl.Changed("dpr") {
		o.DPR = f.dpr
	}
	if fl.Changed("preview") {
		o.Preview = f.preview
	}
	if fl.Changed("debug") {
		o.Debug = f.debug
	}
	if fl.Changed("check-monotonic") {
		o.CheckMonotonic = f.checkMonotonic
	}
	return o
}

func (a *app) newPipeline(cmd *cobra.Command, f *renderFlags) *pipeline {
	fontsCfg := a.cfg.Fonts
	if cmd.Flags().Changed("download") {
		fontsCfg.Download = f.download
	}
	return newPipeline(fontsCfg.Resolver(a.logger), a.outputOptions(cmd, f), a.logger)
}

func (a *app) outputDir(cmd *cobra.Command, f *renderFlags) string {
	if cmd.Flags().Changed("dir") {
		return f.dir
	}
	return a.cfg.Output.Dir
}

// outputPath 计算单个表情的输出路径；--out 优先于配置中的模板。
func (a *app) outputPath(cmd *cobra.Command, f *renderFlags, req layout.Request) string {
	template := a.cfg.Output.Template
	if f.out != "" {
		template = f.out
	}
	return export.OutputPath(template, a.outputDir(cmd, f), req, 0)
}
