package layout

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"testing"
)

func buildWithStub(t *testing.T, req Request) *Result {
	t.Helper()
	res, err := Build(req, BuildOptions{Measurer: newStubMeasurer()})
	if err != nil {
		t.Fatalf("布局计算失败: %v", err)
	}
	return res
}

// TestBuildThreeRow 对应 "ABC"、300px、横一列、自动拉伸的端到端场景。
func TestBuildThreeRow(t *testing.T) {
	req := DefaultRequest()
	req.Text = "ABC"
	req.Size = 300
	req.FontScale = 1.0
	res := buildWithStub(t, req)

	if res.Stretch != 2.5 {
		t.Fatalf("期望拉伸率 2.5，实际 %g", res.Stretch)
	}
	if len(res.Cells) != 3 || len(res.Glyphs) != 3 {
		t.Fatalf("期望 3 个单元格与 3 个字形，实际 %d/%d", len(res.Cells), len(res.Glyphs))
	}
	for i, g := range res.Glyphs {
		if g.Char != string("ABC"[i]) {
			t.Fatalf("第 %d 个字形应为 %c，实际 %q", i, "ABC"[i], g.Char)
		}
		if g.Cell.W != 100 || g.Cell.H != 300 || g.Cell.X != i*100 {
			t.Fatalf("第 %d 个单元格错误: %+v", i, g.Cell)
		}
		if g.Fitted != 75 {
			t.Fatalf("第 %d 个字形期望搜索字号 75，实际 %d", i, g.Fitted)
		}
		if float64(g.FontSize) > float64(g.Fitted)*req.FontScale {
			t.Fatalf("最终字号 %d 超过 fitted×scale", g.FontSize)
		}
		if math.Abs(g.LineWidth-6/2.5) > 1e-9 {
			t.Fatalf("描边宽度应预先除以拉伸率，实际 %g", g.LineWidth)
		}
	}
}

func TestBuildEmptyText(t *testing.T) {
	req := DefaultRequest()
	req.Text = "   "
	req.Size = 128
	req.Background = true
	req.BackgroundColor = MustColor("#123456")
	res := buildWithStub(t, req)

	if len(res.Cells) != 1 || res.Cells[0] != newCell(0, 0, 128, 128) {
		t.Fatalf("空文本应得到一个整幅单元格，实际 %+v", res.Cells)
	}
	if len(res.Glyphs) != 0 {
		t.Fatalf("空文本不应绘制字形，实际 %d 个", len(res.Glyphs))
	}
	if res.Background == nil || *res.Background != MustColor("#123456") {
		t.Fatalf("背景色未保留: %+v", res.Background)
	}
	if res.Stretch != 1 {
		t.Fatalf("空文本拉伸率应为 1，实际 %g", res.Stretch)
	}
}

func TestBuildTransparentBackground(t *testing.T) {
	req := DefaultRequest()
	req.Background = false
	if res := buildWithStub(t, req); res.Background != nil {
		t.Fatalf("未启用背景时应为透明，实际 %+v", res.Background)
	}
}

// TestBuildBaselineCentersInk 断言基线偏移使墨迹包围盒以单元格中心对称。
func TestBuildBaselineCentersInk(t *testing.T) {
	req := DefaultRequest()
	req.Text = "字"
	res := buildWithStub(t, req)
	g := res.Glyphs[0]
	top := g.Baseline - g.Metrics.Ascent
	bottom := g.Baseline + g.Metrics.Descent
	if math.Abs(top+bottom) > 1e-9 {
		t.Fatalf("墨迹未居中: top=%g bottom=%g", top, bottom)
	}
}

func TestBuildTruncatesToSixChars(t *testing.T) {
	req := DefaultRequest()
	req.Text = "あいうえおかきく"
	res := buildWithStub(t, req)
	if len(res.Glyphs) != MaxChars {
		t.Fatalf("期望截断为 %d 个字形，实际 %d", MaxChars, len(res.Glyphs))
	}
	if res.Glyphs[5].Char != "か" {
		t.Fatalf("第 6 个字形应为 か，实际 %q", res.Glyphs[5].Char)
	}
	if res.Stretch != 1.65 {
		t.Fatalf("六字期望拉伸率 1.65，实际 %g", res.Stretch)
	}
}

func TestBuildManualStretch(t *testing.T) {
	req := DefaultRequest()
	req.Text = "あいうえお"
	req.StretchMode = StretchManual
	req.ManualStretch = 0
	res := buildWithStub(t, req)
	if res.Stretch != 0.1 {
		t.Fatalf("手动拉伸下限应为 0.1，实际 %g", res.Stretch)
	}
}

func TestBuildFontDefaultsToRequestKey(t *testing.T) {
	req := DefaultRequest()
	req.Font = FontMeiryo
	res := buildWithStub(t, req)
	if res.Font.Key != FontMeiryo {
		t.Fatalf("未解析字体时应沿用请求的字体键，实际 %q", res.Font.Key)
	}
}

// TestBuildIdempotent 同样的参数两次布局，结果与调试 JSON 完全一致。
func TestBuildIdempotent(t *testing.T) {
	req := DefaultRequest()
	a := buildWithStub(t, req)
	b := buildWithStub(t, req)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("两次布局结果不一致")
	}
	var ja, jb bytes.Buffer
	if err := EncodeDebugJSON(a, &ja); err != nil {
		t.Fatalf("EncodeDebugJSON: %v", err)
	}
	if err := EncodeDebugJSON(b, &jb); err != nil {
		t.Fatalf("EncodeDebugJSON: %v", err)
	}
	if !bytes.Equal(ja.Bytes(), jb.Bytes()) {
		t.Fatalf("调试 JSON 不一致")
	}
}

func TestBuildRequiresMeasurer(t *testing.T) {
	if _, err := Build(DefaultRequest(), BuildOptions{}); !errors.Is(err, ErrNoMeasurer) {
		t.Fatalf("期望 ErrNoMeasurer，实际 %v", err)
	}
}

func TestBuildRejectsInvalidRequest(t *testing.T) {
	req := DefaultRequest()
	req.Size = 0
	if _, err := Build(req, BuildOptions{Measurer: newStubMeasurer()}); err == nil {
		t.Fatalf("size=0 应返回错误")
	}
}

func TestBuildMonotonicWarning(t *testing.T) {
	req := DefaultRequest()
	req.Text = "A"
	res, err := Build(req, BuildOptions{
		Measurer: shrinkingMeasurer{},
		Debug:    DebugOptions{CheckMonotonic: true},
	})
	if err != nil {
		t.Fatalf("非单调字体只应产生警告，实际错误 %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("期望 1 条警告，实际 %v", res.Warnings)
	}
}
