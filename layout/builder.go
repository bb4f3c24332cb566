package layout

import (
	"errors"
	"fmt"
)

// Build 根据请求计算单元格、纵向拉伸率与每个字符的字号和基线，生成绘制计划。
// 每次调用都从头计算，不保留任何跨调用状态。
func Build(req Request, opts BuildOptions) (*Result, error) {
	if opts.Measurer == nil {
		return nil, ErrNoMeasurer
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	font := opts.Font
	if font.Key == "" {
		font.Key = req.Font
	}

	chars := req.Chars()
	count := len(chars)
	cells := Partition(req.Size, max(1, count), req.ThreeMode)
	stretch := StretchFactor(count, req.ThreeMode, req.StretchMode, req.ManualStretch)

	res := &Result{
		Size:    req.Size,
		Stretch: stretch,
		Font:    font,
		Cells:   cells,
		Glyphs:  make([]Glyph, 0, count),
	}
	if req.Background {
		bg := req.BackgroundColor
		res.Background = &bg
	}

	strokeWidth := float64(max(0, req.StrokeWidth))
	for i, ch := range chars {
		glyph, err := composeGlyph(ch, cells[i], strokeWidth, stretch, req, font, opts.Measurer)
		if err != nil {
			return nil, err
		}
		if opts.Debug.CheckMonotonic {
			if err := CheckMonotonic(opts.Measurer, ch, font, DefaultMinFontSize, DefaultMaxFontSize); err != nil {
				if !errors.Is(err, ErrNonMonotonic) {
					return nil, err
				}
				res.Warnings = append(res.Warnings, err.Error())
			}
		}
		res.Glyphs = append(res.Glyphs, glyph)
	}
	return res, nil
}

func composeGlyph(ch string, cell Cell, strokeWidth, stretch float64, req Request, font FontResource, m Measurer) (Glyph, error) {
	padding := CellPadding(cell.W, cell.H)
	fitted, err := FitFontSize(m, ch, FitParams{
		CellWidth:   float64(cell.W),
		CellHeight:  float64(cell.H),
		Padding:     float64(padding),
		StrokeWidth: strokeWidth,
		Font:        font,
		Stretch:     stretch,
		Min:         DefaultMinFontSize,
		Max:         DefaultMaxFontSize,
	})
	if err != nil {
		return Glyph{}, err
	}
	size := ScaleFontSize(fitted, req.FontScale)

	// 以字符自身的墨迹上升/下降部居中，而不是字体框。
	metrics, err := m.MeasureGlyph(ch, font, float64(size))
	if err != nil {
		return Glyph{}, fmt.Errorf("测量字符 %q（%dpx）失败: %w", ch, size, err)
	}
	baseline := metrics.Ascent - metrics.Height()/2

	return Glyph{
		Char:      ch,
		Cell:      cell,
		Padding:   padding,
		Fitted:    fitted,
		FontSize:  size,
		Metrics:   metrics,
		Baseline:  baseline,
		LineWidth: strokeWidth / stretch,
		Fill:      req.Fill,
		Stroke:    req.Stroke,
	}, nil
}
