package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ByLCY/emodis/fonts"
	"github.com/ByLCY/emodis/layout"
)

func newFontsCmd(a *app) *cobra.Command {
	var download bool
	cmd := &cobra.Command{
		Use:   "fonts",
		Short: "列出可选字体及其解析结果",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fontsCfg := a.cfg.Fonts
			if cmd.Flags().Changed("download") {
				fontsCfg.Download = download
			}
			statuses, err := fontsCfg.Resolver(a.logger).Statuses(cmd.Context())
			if err != nil {
				return err
			}
			printFontTable(cmd.OutOrStdout(), statuses)
			return nil
		},
	}
	cmd.Flags().BoolVar(&download, "download", false, "允许从 Google Fonts 下载字体")
	return cmd
}

func printFontTable(w io.Writer, statuses []fonts.Status) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-10s %-12s %-15s %s\n", "KEY", "STATUS", "FAMILY", "SOURCE")
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fallbacks := 0
	for _, s := range statuses {
		if s.Fallback {
			fallbacks++
			printFontRow(w, string(s.Entry.Key), "⚠ FALLBACK", s.Resource, color.FgYellow)
		} else {
			printFontRow(w, string(s.Entry.Key), "✓ OK", s.Resource, color.FgGreen)
		}
	}
	fmt.Fprintln(w)
	if fallbacks > 0 {
		color.New(color.FgYellow).Fprintf(w, "%d 个字体未找到，将使用内置 sans-serif 渲染\n", fallbacks)
		color.New(color.FgCyan).Fprintln(w, "💡 在配置的 [fonts.files] 中指定字体文件，或使用 --download 从 Google Fonts 获取")
		return
	}
	color.New(color.FgGreen).Fprintln(w, "全部字体均已找到")
}

func printFontRow(w io.Writer, key, status string, res layout.FontResource, statusColor color.Attribute) {
	fmt.Fprintf(w, "%-10s ", key)
	color.New(statusColor).Fprintf(w, "%-12s ", status)
	fmt.Fprintf(w, "%-15s %s\n", res.Family, res.Src)
}
