package canvasrenderer

import (
	"fmt"

	"github.com/tdewolff/canvas"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/emodis/fonts"
	"github.com/ByLCY/emodis/layout"
)

// MeasureGlyph 实现 layout.Measurer：在 sizePx 下测量字符的墨迹包围盒（y 轴向下，单位 px）。
func (r *Renderer) MeasureGlyph(ch string, res layout.FontResource, sizePx float64) (layout.GlyphMetrics, error) {
	f, err := r.sfntFont(res)
	if err != nil {
		return layout.GlyphMetrics{}, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72, // 72 DPI 下 1pt = 1px
		Hinting: font.HintingNone,
	})
	if err != nil {
		return layout.GlyphMetrics{}, fmt.Errorf("创建字体面失败: %w", err)
	}
	defer face.Close()

	bounds, advance := font.BoundString(face, ch)
	if bounds.Empty() {
		return layout.GlyphMetrics{Advance: fromFixed(advance)}, nil
	}
	return layout.GlyphMetrics{
		Ascent:  -fromFixed(bounds.Min.Y),
		Descent: fromFixed(bounds.Max.Y),
		Left:    -fromFixed(bounds.Min.X),
		Right:   fromFixed(bounds.Max.X),
		Advance: fromFixed(advance),
	}, nil
}

// glyphPath 将字符轮廓转换为以单元格中心为原点、y 轴向上的路径：水平方向按步进宽度居中，
// 基线位于中心下方 baseline 处。字符内的多个码点按步进依次排列（含字偶距）。空白字符返回 nil。
func glyphPath(f *sfnt.Font, ch string, sizePx, baseline float64) (*canvas.Path, error) {
	var buf sfnt.Buffer
	ppem := toFixed(sizePx)

	type placed struct {
		index sfnt.GlyphIndex
		x     float64
	}
	var glyphs []placed
	pen := 0.0
	prev := sfnt.GlyphIndex(0)
	for i, ru := range ch {
		idx, err := f.GlyphIndex(&buf, ru)
		if err != nil {
			return nil, err
		}
		if i > 0 && prev != 0 && idx != 0 {
			if kern, err := f.Kern(&buf, prev, idx, ppem, font.HintingNone); err == nil {
				pen += fromFixed(kern)
			}
		}
		glyphs = append(glyphs, placed{index: idx, x: pen})
		adv, err := f.GlyphAdvance(&buf, idx, ppem, font.HintingNone)
		if err != nil {
			return nil, err
		}
		pen += fromFixed(adv)
		prev = idx
	}

	originX := -pen / 2
	p := &canvas.Path{}
	drawn := false
	for _, g := range glyphs {
		segments, err := f.LoadGlyph(&buf, g.index, ppem, nil)
		if err != nil {
			return nil, err
		}
		// sfnt 的轮廓以基线为原点、y 向下；换算到中心原点、y 向上。
		pt := func(v fixed.Point26_6) (float64, float64) {
			return originX + g.x + fromFixed(v.X), -(baseline + fromFixed(v.Y))
		}
		open := false
		for _, seg := range segments {
			switch seg.Op {
			case sfnt.SegmentOpMoveTo:
				if open {
					p.Close()
				}
				x, y := pt(seg.Args[0])
				p.MoveTo(x, y)
				open = true
			case sfnt.SegmentOpLineTo:
				x, y := pt(seg.Args[0])
				p.LineTo(x, y)
			case sfnt.SegmentOpQuadTo:
				cx, cy := pt(seg.Args[0])
				x, y := pt(seg.Args[1])
				p.QuadTo(cx, cy, x, y)
			case sfnt.SegmentOpCubeTo:
				c1x, c1y := pt(seg.Args[0])
				c2x, c2y := pt(seg.Args[1])
				x, y := pt(seg.Args[2])
				p.CubeTo(c1x, c1y, c2x, c2y, x, y)
			}
		}
		if open {
			p.Close()
			drawn = true
		}
	}
	if !drawn {
		return nil, nil
	}
	return p, nil
}

// Preload 解析并缓存 res 对应的字体。字体无法读取时返回加载错误，之后的测量与绘制使用内置字体。
func (r *Renderer) Preload(res layout.FontResource) error {
	if _, err := r.sfntFont(res); err != nil {
		return err
	}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	return r.loadErrs[fontKey(res)]
}

func fontKey(res layout.FontResource) string {
	if res.Src == "" {
		return fonts.FallbackSrc
	}
	return res.Src
}

// sfntFont 按 Src 缓存解析后的字体；加载失败时回退到内置字体。
func (r *Renderer) sfntFont(res layout.FontResource) (*sfnt.Font, error) {
	key := fontKey(res)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if f, ok := r.fontCache[key]; ok {
		return f, nil
	}
	f, err := r.loadFont(key)
	if err != nil {
		fb, fbErr := r.fallbackFont()
		if fbErr != nil {
			return nil, err
		}
		r.fontCache[key] = fb
		r.loadErrs[key] = err
		return fb, nil
	}
	r.fontCache[key] = f
	return f, nil
}

func (r *Renderer) fallbackFont() (*sfnt.Font, error) {
	if r.fallback != nil {
		return r.fallback, nil
	}
	f, err := r.loadFont(fonts.FallbackSrc)
	if err != nil {
		return nil, err
	}
	r.fallback = f
	return f, nil
}

// loadFont 解析字体数据；字体集合（.ttc）取第一个字体。
func (r *Renderer) loadFont(src string) (*sfnt.Font, error) {
	data, err := fonts.ReadSource(src)
	if err != nil {
		return nil, err
	}
	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", src, err)
	}
	f, err := coll.Font(0)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return f, nil
}

func fromFixed(v fixed.Int26_6) float64 { return float64(v) / 64 }

func toFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(v*64 + 0.5) }
