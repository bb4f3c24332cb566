package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"golang.org/x/image/font/sfnt"

	"github.com/ByLCY/emodis/layout"
	"github.com/ByLCY/emodis/renderer"
)

// Renderer draws layout results via github.com/tdewolff/canvas and measures glyphs
// with the same parsed font data, so fitting and drawing agree on every outline.
//
// 坐标约定：1 个逻辑像素对应 canvas 中的 1 mm，光栅化分辨率为每毫米 DevicePixelRatio 个设备像素。
type Renderer struct {
	dpr float64

	fontMu    sync.Mutex
	fontCache map[string]*sfnt.Font // by Src
	loadErrs  map[string]error      // Src 加载失败的原因，对应缓存中的是内置字体
	fallback  *sfnt.Font
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	DevicePixelRatio float64 // 小于 1 或为 NaN 时按 1 处理
}

// NewRenderer creates a canvas-based renderer at device pixel ratio 1.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a renderer with the given options.
// Relative font paths in FontResource.Src are read from the working directory.
func NewRendererWithOptions(opts Options) *Renderer {
	dpr := opts.DevicePixelRatio
	if !(dpr >= 1) {
		dpr = 1
	}
	return &Renderer{
		dpr:       dpr,
		fontCache: map[string]*sfnt.Font{},
		loadErrs:  map[string]error{},
	}
}

// DevicePixelRatio 返回实际使用的设备像素比。
func (r *Renderer) DevicePixelRatio() float64 { return r.dpr }

// Render 绘制并编码为 PNG。相同的输入产生相同的字节。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	img, err := r.Rasterize(result)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// Rasterize 返回 size·dpr 见方的位图。
func (r *Renderer) Rasterize(result *layout.Result) (*image.RGBA, error) {
	c, err := r.Canvas(result)
	if err != nil {
		return nil, err
	}
	return rasterizer.Draw(c, canvas.DPMM(r.dpr), canvas.DefaultColorSpace), nil
}

// Canvas 创建 size×size 的画布并绘制布局结果。
func (r *Renderer) Canvas(result *layout.Result) (*canvas.Canvas, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if result.Size <= 0 {
		return nil, fmt.Errorf("画布尺寸必须为正数，实际 %d", result.Size)
	}
	size := float64(result.Size)
	c := canvas.New(size, size)
	if err := r.Draw(canvas.NewContext(c), result); err != nil {
		return nil, err
	}
	return c, nil
}

// Draw 将布局结果绘制到 ctx 上；ctx 为空时什么也不做。
// 画布使用默认的 y 轴向上坐标系，布局中向下为正的 y 在这里换算为 size-y。
func (r *Renderer) Draw(ctx *canvas.Context, result *layout.Result) error {
	if ctx == nil {
		return nil
	}
	if result == nil {
		return fmt.Errorf("渲染结果为空")
	}
	size := float64(result.Size)

	// 没有背景色时保持透明。
	if result.Background != nil {
		ctx.SetFillColor(colorFromLayout(*result.Background))
		ctx.SetStrokeColor(color.RGBA{})
		ctx.DrawPath(0, 0, canvas.Rectangle(size, size))
	}

	stretch := result.Stretch
	if stretch <= 0 {
		stretch = 1
	}
	for _, g := range result.Glyphs {
		f, err := r.sfntFont(result.Font)
		if err != nil {
			return err
		}
		path, err := glyphPath(f, g.Char, float64(g.FontSize), g.Baseline)
		if err != nil {
			return fmt.Errorf("生成字符 %q 的轮廓失败: %w", g.Char, err)
		}
		if path == nil {
			continue
		}

		ctx.Push()
		ctx.Translate(g.Cell.CX, size-g.Cell.CY)
		ctx.Scale(1, stretch)
		// 先描边再填充，填充覆盖描边的内侧一半。
		if g.LineWidth > 0 {
			ctx.SetFillColor(color.RGBA{})
			ctx.SetStrokeColor(colorFromLayout(g.Stroke))
			ctx.SetStrokeWidth(g.LineWidth)
			ctx.SetStrokeJoiner(canvas.RoundJoin)
			ctx.SetStrokeCapper(canvas.RoundCap)
			ctx.DrawPath(0, 0, path)
		}
		ctx.SetFillColor(colorFromLayout(g.Fill))
		ctx.SetStrokeColor(color.RGBA{})
		ctx.DrawPath(0, 0, path)
		ctx.Pop()
	}
	return nil
}

func colorFromLayout(c layout.Color) color.Color {
	return color.NRGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: uint8(c.A)}
}
