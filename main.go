package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ByLCY/emodis/config"
	"github.com/ByLCY/emodis/layout"
	"github.com/ByLCY/emodis/logging"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app 保存一次命令执行期间共享的配置与日志。
type app struct {
	configPath string
	logLevel   string
	logFile    string

	cfg    *config.Config
	logger zerolog.Logger
	closer io.Closer
	out    io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out, logger: zerolog.Nop()}
	root := &cobra.Command{
		Use:     "emodis",
		Short:   "将 1~6 个字符渲染为正方形 PNG 表情",
		Version: Version,
		Long: `emodis 将 1~6 个字符排布到正方形画布中，自动选择能放进单元格的最大字号，
并按字符数纵向拉伸，输出可直接上传到聊天平台的自定义表情 PNG。

默认参数来自配置文件（emodis config init 生成），命令行参数优先。`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.DefaultFileName, "配置文件路径")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "日志级别（覆盖配置）")
	root.PersistentFlags().StringVar(&a.logFile, "log-file", "", "日志文件（覆盖配置）")

	root.AddCommand(newRenderCmd(a))
	root.AddCommand(newBatchCmd(a))
	root.AddCommand(newWatchCmd(a))
	root.AddCommand(newFontsCmd(a))
	root.AddCommand(newConfigCmd(a))
	return root
}

// setup 读取配置并初始化日志。config init 也会经过这里，此时配置文件通常还不存在，Load 会返回默认值。
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	opts := logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	}
	if a.logLevel != "" {
		opts.Level = a.logLevel
	}
	if a.logFile != "" {
		opts.File = a.logFile
	}
	a.logger, a.closer = logging.New(opts)
	return nil
}

// defaults 返回配置中的默认请求。
func (a *app) defaults() (layout.Request, error) {
	return a.cfg.Defaults.Request()
}
