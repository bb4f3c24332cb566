package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ByLCY/emodis/export"
	"github.com/ByLCY/emodis/layout"
	canvasrenderer "github.com/ByLCY/emodis/renderer/canvas"
)

// fontResolver 将字体键解析为具体字体，由 fonts.Resolver 实现。
type fontResolver interface {
	Resolve(ctx context.Context, key layout.FontKey) (layout.FontResource, error)
}

// outputOptions 控制单次渲染的附带输出。
type outputOptions struct {
	DPR            float64
	Preview        int
	Debug          bool
	CheckMonotonic bool
}

// pipeline 串联字体解析、布局、渲染与写文件。同一 pipeline 内的渲染器复用字体缓存。
type pipeline struct {
	resolver fontResolver
	renderer *canvasrenderer.Renderer
	opts     outputOptions
	logger   zerolog.Logger
}

// 字体路径已由 config.Load 换算到配置文件所在目录，渲染器按原样读取。
func newPipeline(resolver fontResolver, opts outputOptions, logger zerolog.Logger) *pipeline {
	return &pipeline{
		resolver: resolver,
		renderer: canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
			DevicePixelRatio: opts.DPR,
		}),
		opts:   opts,
		logger: logger,
	}
}

// run 渲染一个请求并写入 outPath，返回布局结果。
func (p *pipeline) run(ctx context.Context, req layout.Request, outPath string) (*layout.Result, error) {
	if p.resolver == nil {
		return nil, fmt.Errorf("缺少字体解析器")
	}
	font, err := p.resolver.Resolve(ctx, req.Font)
	if err != nil {
		return nil, fmt.Errorf("解析字体失败: %w", err)
	}
	if err := p.renderer.Preload(font); err != nil {
		p.logger.Warn().Err(err).Str("src", font.Src).Msg("字体无法读取，改用内置字体")
	}

	result, err := layout.Build(req, layout.BuildOptions{
		Measurer: p.renderer,
		Font:     font,
		Debug:    layout.DebugOptions{CheckMonotonic: p.opts.CheckMonotonic},
	})
	if err != nil {
		return nil, fmt.Errorf("布局计算失败: %w", err)
	}
	for _, w := range result.Warnings {
		p.logger.Warn().Str("text", req.Text).Msg(w)
	}

	data, err := p.renderer.Render(result)
	if err != nil {
		return nil, fmt.Errorf("渲染 PNG 失败: %w", err)
	}
	if err := export.WritePNG(outPath, data); err != nil {
		return nil, err
	}
	if err := export.CheckUploadLimit(data); errors.Is(err, export.ErrTooLarge) {
		p.logger.Warn().Err(err).Str("path", outPath).Msg("图像可能无法上传为表情")
	}

	if p.opts.Preview > 0 {
		thumb, err := export.Preview(data, p.opts.Preview)
		if err != nil {
			return nil, err
		}
		if err := export.WritePNG(export.PreviewPath(outPath, p.opts.Preview), thumb); err != nil {
			return nil, err
		}
	}
	if p.opts.Debug {
		if err := layout.WriteDebugJSON(result, export.DebugPath(outPath)); err != nil {
			return nil, fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	}

	p.logger.Info().
		Str("path", outPath).
		Str("font", font.Family).
		Int("px", layout.DevicePixels(result.Size, p.renderer.DevicePixelRatio())).
		Float64("stretch", result.Stretch).
		Int("bytes", len(data)).
		Msg("已生成表情")
	return result, nil
}
