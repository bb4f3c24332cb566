package layout

// BuildOptions 配置布局阶段所需的依赖，例如测量后端与已解析的字体。
type BuildOptions struct {
	Measurer Measurer
	Font     FontResource // 为空时只填入请求中的字体键，由测量后端自行回退
	Debug    DebugOptions
}

// DebugOptions 控制调试相关行为。
type DebugOptions struct {
	CheckMonotonic bool // 对每个字符额外测量 min/max 两个字号，违反单调性时写入 Result.Warnings
}

// Measurer 负责在给定字号与字体下测量单个字符的墨迹包围盒。
// 返回值需与绘制表面处于同一坐标空间。
type Measurer interface {
	MeasureGlyph(ch string, font FontResource, sizePx float64) (GlyphMetrics, error)
}
