package canvasrenderer

import (
	"bytes"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/tdewolff/canvas"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ByLCY/emodis/layout"
)

func build(t *testing.T, r *Renderer, req layout.Request) *layout.Result {
	t.Helper()
	res, err := layout.Build(req, layout.BuildOptions{Measurer: r})
	if err != nil {
		t.Fatalf("布局计算失败: %v", err)
	}
	return res
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("PNG 解码失败: %v", err)
	}
	return img
}

func TestMeasureGlyphScalesWithSize(t *testing.T) {
	r := NewRenderer()
	small, err := r.MeasureGlyph("A", layout.FontResource{}, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if small.Ascent <= 0 || small.Advance <= 0 || small.Descent < 0 {
		t.Fatalf("度量不合理: %+v", small)
	}
	large, err := r.MeasureGlyph("A", layout.FontResource{}, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ratio := large.Advance / small.Advance; math.Abs(ratio-2) > 0.05 {
		t.Fatalf("字号加倍时步进宽度应约加倍，实际比例 %g", ratio)
	}
	if large.Height() < small.Height() || large.Width() < small.Width() {
		t.Fatalf("包围盒应随字号单调不减: %+v vs %+v", small, large)
	}
}

func TestMeasureGlyphWhitespace(t *testing.T) {
	m, err := NewRenderer().MeasureGlyph(" ", layout.FontResource{}, 64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Height() != 0 || m.Advance <= 0 {
		t.Fatalf("空格应只有步进宽度: %+v", m)
	}
}

func TestMeasureWithFileAndMissingFonts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regular.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewRenderer()
	regular := layout.FontResource{Src: path}
	if err := r.Preload(regular); err != nil {
		t.Fatalf("字体文件应能加载: %v", err)
	}
	got, err := r.MeasureGlyph("A", regular, 100)
	if err != nil {
		t.Fatalf("测量失败: %v", err)
	}
	bold, err := r.MeasureGlyph("A", layout.FontResource{}, 100)
	if err != nil {
		t.Fatalf("测量失败: %v", err)
	}
	if got.Advance == bold.Advance {
		t.Fatalf("字体文件与内置粗体的步进宽度不应相同: %g", got.Advance)
	}

	// 不存在的文件回退到内置字体，Preload 报告原因。
	missing := layout.FontResource{Src: "/nonexistent/font.ttf"}
	if err := r.Preload(missing); err == nil {
		t.Fatalf("缺失字体应由 Preload 报告")
	}
	m, err := r.MeasureGlyph("A", missing, 100)
	if err != nil {
		t.Fatalf("缺失字体应回退: %v", err)
	}
	if m != bold {
		t.Fatalf("缺失字体应使用内置字体度量: %+v vs %+v", m, bold)
	}
}

func TestRenderPNGSize(t *testing.T) {
	req := layout.DefaultRequest()
	req.Text = "AB"
	for _, dpr := range []float64{0, 1, 2, math.NaN()} {
		r := NewRendererWithOptions(Options{DevicePixelRatio: dpr})
		data, err := r.Render(build(t, r, req))
		if err != nil {
			t.Fatalf("渲染失败: %v", err)
		}
		want := layout.DevicePixels(req.Size, dpr)
		if b := decode(t, data).Bounds(); b.Dx() != want || b.Dy() != want {
			t.Fatalf("dpr=%g 期望 %dx%d，实际 %dx%d", dpr, want, want, b.Dx(), b.Dy())
		}
	}
}

func TestRenderIdempotent(t *testing.T) {
	r := NewRenderer()
	req := layout.DefaultRequest()
	req.Text = "ABC"
	req.Size = 300
	a, err := r.Render(build(t, r, req))
	if err != nil {
		t.Fatalf("渲染失败: %v", err)
	}
	b, err := r.Render(build(t, r, req))
	if err != nil {
		t.Fatalf("渲染失败: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("相同参数两次渲染的 PNG 字节不一致")
	}
}

func near(a uint8, b int) bool { return math.Abs(float64(int(a)-b)) <= 2 }

func TestRenderBackground(t *testing.T) {
	r := NewRenderer()
	req := layout.DefaultRequest()
	req.Text = "I"
	req.FontScale = 1
	req.Background = true
	req.BackgroundColor = layout.MustColor("#2040c0")
	img, err := r.Rasterize(build(t, r, req))
	if err != nil {
		t.Fatalf("渲染失败: %v", err)
	}
	c := img.RGBAAt(0, 0)
	if !near(c.R, 0x20) || !near(c.G, 0x40) || !near(c.B, 0xc0) || c.A != 255 {
		t.Fatalf("角落像素应为背景色，实际 %+v", c)
	}
	// 单元格中心被字形覆盖（填充或描边），必然不透明且不是背景色。
	center := img.RGBAAt(64, 64)
	if center == c {
		t.Fatalf("中心像素未被字形覆盖: %+v", center)
	}
}

func TestRenderEmptyTextIsTransparent(t *testing.T) {
	r := NewRenderer()
	req := layout.DefaultRequest()
	req.Text = ""
	img, err := r.Rasterize(build(t, r, req))
	if err != nil {
		t.Fatalf("渲染失败: %v", err)
	}
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			t.Fatalf("空文本且无背景时应完全透明，第 %d 个像素 alpha=%d", i/4, img.Pix[i])
		}
	}
}

func TestRenderGlyphInk(t *testing.T) {
	r := NewRenderer()
	req := layout.DefaultRequest()
	req.Text = "I"
	req.FontScale = 1
	img, err := r.Rasterize(build(t, r, req))
	if err != nil {
		t.Fatalf("渲染失败: %v", err)
	}
	if a := img.RGBAAt(64, 64).A; a == 0 {
		t.Fatalf("字形中心应有墨迹")
	}
	if a := img.RGBAAt(0, 0).A; a != 0 {
		t.Fatalf("内边距区域应保持透明，实际 alpha=%d", a)
	}
}

func TestDrawNilContext(t *testing.T) {
	r := NewRenderer()
	res := build(t, r, layout.DefaultRequest())
	if err := r.Draw(nil, res); err != nil {
		t.Fatalf("空绘制表面应静默跳过，实际 %v", err)
	}
	if err := r.Draw(canvas.NewContext(canvas.New(10, 10)), nil); err == nil {
		t.Fatalf("空结果应返回错误")
	}
	if _, err := r.Render(nil); err == nil {
		t.Fatalf("空结果应返回错误")
	}
}
