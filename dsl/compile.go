package dsl

import (
	"fmt"
	"math"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ByLCY/emodis/export"
	"github.com/ByLCY/emodis/layout"
)

// Job 是一条 emoji 声明编译后的渲染任务。
type Job struct {
	Request layout.Request
	Out     string // 输出路径模板，可含 ${text} 等占位符
	Pos     lexer.Position
}

// CompileOptions 提供配方之外的初始默认值。
type CompileOptions struct {
	Base layout.Request
	Out  string
}

// Compile 自上而下求值配方：defaults 块累积修改默认值，每个 emoji 声明在当前默认值上套用自己的属性。
func Compile(recipe *Recipe, opts CompileOptions) ([]Job, error) {
	if recipe == nil {
		return nil, fmt.Errorf("配方为空")
	}
	current := Job{Request: opts.Base, Out: opts.Out}
	var jobs []Job
	for _, entry := range recipe.Entries {
		switch {
		case entry.Defaults != nil:
			if err := apply(&current, entry.Defaults.Block); err != nil {
				return nil, err
			}
		case entry.Emoji != nil:
			job := current
			job.Request.Text = string(entry.Emoji.Text)
			job.Pos = entry.Emoji.Pos
			if err := apply(&job, entry.Emoji.Block); err != nil {
				return nil, err
			}
			if err := job.Request.Validate(); err != nil {
				return nil, fmt.Errorf("%s: %w", entry.Emoji.Pos, err)
			}
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

func apply(job *Job, block *Block) error {
	if block == nil {
		return nil
	}
	for _, prop := range block.Properties {
		if err := applyProperty(job, prop); err != nil {
			return fmt.Errorf("%s: %s: %w", prop.Pos, prop.Key, err)
		}
	}
	return nil
}

func applyProperty(job *Job, prop *Property) error {
	req := &job.Request
	v := prop.Value
	switch normalizeKey(prop.Key) {
	case "size":
		n, err := intValue(v)
		if err != nil {
			return err
		}
		req.Size = n
	case "fill":
		c, err := colorValue(v)
		if err != nil {
			return err
		}
		req.Fill = c
	case "stroke":
		c, err := colorValue(v)
		if err != nil {
			return err
		}
		req.Stroke = c
	case "strokewidth":
		n, err := intValue(v)
		if err != nil {
			return err
		}
		req.StrokeWidth = n
	case "background":
		// 颜色表示启用背景并设置颜色；none/off/false 关闭背景。
		if v.Ident != nil {
			on, err := boolValue(v)
			if err != nil {
				return err
			}
			req.Background = on
			return nil
		}
		c, err := colorValue(v)
		if err != nil {
			return err
		}
		req.Background, req.BackgroundColor = true, c
	case "font":
		key := layout.FontKey(identOrString(v))
		if !key.Valid() {
			return fmt.Errorf("未知字体 %s", v.Raw())
		}
		req.Font = key
	case "scale":
		if v.Number == nil {
			return fmt.Errorf("应为数字，实际 %s", v.Raw())
		}
		req.FontScale = *v.Number
	case "three":
		mode := layout.ThreeMode(identOrString(v))
		if mode != layout.ThreeRow && mode != layout.ThreeTwoPlusOne {
			return fmt.Errorf("应为 row 或 twoPlusOne，实际 %s", v.Raw())
		}
		req.ThreeMode = mode
	case "stretch":
		// auto 使用自动拉伸率，数字表示手动拉伸率。
		if v.Number != nil {
			req.StretchMode, req.ManualStretch = layout.StretchManual, *v.Number
			return nil
		}
		if identOrString(v) != string(layout.StretchAuto) {
			return fmt.Errorf("应为 auto 或数字，实际 %s", v.Raw())
		}
		req.StretchMode = layout.StretchAuto
	case "out":
		if v.String == nil {
			return fmt.Errorf("应为字符串，实际 %s", v.Raw())
		}
		if err := export.CheckTemplate(string(*v.String)); err != nil {
			return err
		}
		job.Out = string(*v.String)
	default:
		return fmt.Errorf("未知属性")
	}
	return nil
}

// normalizeKey 使 stroke-width、stroke_width 与 strokeWidth 等价。
func normalizeKey(key string) string {
	return strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(key))
}

func intValue(v *Value) (int, error) {
	if v.Number == nil || *v.Number != math.Trunc(*v.Number) {
		return 0, fmt.Errorf("应为整数，实际 %s", v.Raw())
	}
	return int(*v.Number), nil
}

func colorValue(v *Value) (layout.Color, error) {
	var raw string
	switch {
	case v.Color != nil:
		raw = *v.Color
	case v.String != nil:
		raw = string(*v.String)
	default:
		return layout.Color{}, fmt.Errorf("应为颜色，实际 %s", v.Raw())
	}
	return layout.ParseColor(raw)
}

func boolValue(v *Value) (bool, error) {
	switch identOrString(v) {
	case "true", "on", "yes":
		return true, nil
	case "false", "off", "no", "none":
		return false, nil
	}
	return false, fmt.Errorf("应为 on/off，实际 %s", v.Raw())
}

func identOrString(v *Value) string {
	switch {
	case v.Ident != nil:
		return *v.Ident
	case v.String != nil:
		return string(*v.String)
	}
	return ""
}
