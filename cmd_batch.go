package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ByLCY/emodis/dsl"
	"github.com/ByLCY/emodis/export"
)

func newBatchCmd(a *app) *cobra.Command {
	var f renderFlags
	cmd := &cobra.Command{
		Use:   "batch RECIPE",
		Short: "按配方文件批量渲染表情",
		Long: `读取配方文件并依次渲染其中声明的每个表情。

配方示例:
  defaults { size: 128; fill: #ff3b30; stroke: #ffffff }
  emoji "草"
  emoji "四字熟語" { font: mushin; out: "yoji.png" }`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.newPipeline(cmd, &f)
			paths, err := a.runRecipe(cmd.Context(), p, args[0], a.outputDir(cmd, &f))
			for _, path := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return err
		},
	}
	addOutputFlags(cmd, &f)
	return cmd
}

// runRecipe 解析并编译配方，逐条渲染，返回已写入的文件路径。遇到第一个错误即停止。
func (a *app) runRecipe(ctx context.Context, p *pipeline, path, dir string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开配方文件失败: %w", err)
	}
	defer file.Close()

	recipe, err := dsl.Parse(path, file)
	if err != nil {
		return nil, err
	}
	base, err := a.defaults()
	if err != nil {
		return nil, err
	}
	jobs, err := dsl.Compile(recipe, dsl.CompileOptions{Base: base, Out: a.cfg.Output.Template})
	if err != nil {
		return nil, err
	}

	a.logger.Debug().Str("recipe", path).Int("jobs", len(jobs)).Msg("配方编译完成")
	paths := make([]string, 0, len(jobs))
	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		out := export.OutputPath(job.Out, dir, job.Request, i)
		if _, err := p.run(ctx, job.Request, out); err != nil {
			return paths, fmt.Errorf("%s: %w", job.Pos, err)
		}
		paths = append(paths, out)
	}
	return paths, nil
}
