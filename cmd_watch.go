package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ByLCY/emodis/config"
	"github.com/ByLCY/emodis/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var f renderFlags
	cmd := &cobra.Command{
		Use:   "watch [RECIPE]",
		Short: "监视配置与配方文件，变更后自动重新渲染",
		Long: `先渲染一次，之后在配置文件或配方文件被保存时重新渲染。
不指定配方时渲染配置文件中 [defaults] 描述的表情。按 Ctrl+C 退出。`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := []string{a.configPath}
			recipe := ""
			if len(args) == 1 {
				recipe = args[0]
				files = append(files, recipe)
			}

			rerender := func() error {
				cfg, err := config.Load(a.configPath)
				if err != nil {
					return err
				}
				a.cfg = cfg
				p := a.newPipeline(cmd, &f)
				if recipe != "" {
					paths, err := a.runRecipe(cmd.Context(), p, recipe, a.outputDir(cmd, &f))
					a.logger.Info().Int("count", len(paths)).Msg("配方渲染完成")
					return err
				}
				req, err := a.defaults()
				if err != nil {
					return err
				}
				_, err = p.run(cmd.Context(), req, a.outputPath(cmd, &f, req))
				return err
			}

			w, err := watch.New(files, watch.Options{Logger: a.logger})
			if err != nil {
				return err
			}
			defer w.Close()

			if err := rerender(); err != nil {
				a.logger.Error().Err(err).Msg("渲染失败")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "正在监视文件变更，按 Ctrl+C 退出")
			return watch.Run(cmd.Context(), w, rerender)
		},
	}
	addOutputFlags(cmd, &f)
	return cmd
}
