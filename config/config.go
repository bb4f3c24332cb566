// Package config 负责加载与保存 emodis 的 TOML 配置：默认渲染参数、输出、字体来源与日志。
package config

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/ByLCY/emodis/atomicfile"
	"github.com/ByLCY/emodis/export"
	"github.com/ByLCY/emodis/fonts"
	"github.com/ByLCY/emodis/layout"
)

// DefaultFileName 是 config init 写出的默认文件名。
const DefaultFileName = "emodis.toml"

// Config 是配置文件的顶层结构。
type Config struct {
	Defaults RequestConfig `toml:"defaults"`
	Output   OutputConfig  `toml:"output"`
	Fonts    FontsConfig   `toml:"fonts"`
	Log      LogConfig     `toml:"log"`
}

// RequestConfig 以字符串形式保存渲染参数，便于手工编辑。
type RequestConfig struct {
	Text            string  `toml:"text"`
	Size            int     `toml:"size"`
	Fill            string  `toml:"fill"`
	Stroke          string  `toml:"stroke"`
	StrokeWidth     int     `toml:"stroke_width"`
	Background      bool    `toml:"background"`
	BackgroundColor string  `toml:"background_color"`
	Font            string  `toml:"font"`
	FontScale       float64 `toml:"font_scale"`
	ThreeMode       string  `toml:"three_mode"`
	StretchMode     string  `toml:"stretch_mode"`
	ManualStretch   float64 `toml:"manual_stretch"`
}

// OutputConfig 控制输出文件。
type OutputConfig struct {
	Dir            string  `toml:"dir"`
	Template       string  `toml:"template"` // 支持 ${text}、${size}、${font} 等占位符
	DPR            float64 `toml:"dpr"`
	Preview        int     `toml:"preview"` // 预览缩略图边长（px），0 表示不生成
	Debug          bool    `toml:"debug"`   // 在 PNG 旁输出布局调试 JSON
	CheckMonotonic bool    `toml:"check_monotonic"`
}

// FontsConfig 控制字体查找。
type FontsConfig struct {
	Dirs      []string          `toml:"dirs"`       // 额外的字体目录，优先于系统目录
	UseSystem bool              `toml:"use_system"` // 是否搜索系统字体目录
	Files     map[string]string `toml:"files,omitempty"`
	Google    map[string]string `toml:"google,omitempty"` // 字体键 -> google:FAMILY:WEIGHT
	Download  bool              `toml:"download"`
	CacheDir  string            `toml:"cache_dir"`
}

// LogConfig 控制日志输出。
type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"` // 为空时输出到终端
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// DefaultConfig 返回与网页版初始状态一致的配置。
func DefaultConfig() *Config {
	return &Config{
		Defaults: FromRequest(layout.DefaultRequest()),
		Output: OutputConfig{
			Dir:      ".",
			Template: "${text}.png",
			DPR:      1,
		},
		Fonts: FontsConfig{
			Dirs:      []string{},
			UseSystem: true,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Load 读取配置文件；文件不存在时返回默认配置。文件中未出现的字段保留默认值。
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置文件 %s 无效: %w", path, err)
	}
	cfg.Fonts.rebase(filepath.Dir(path))
	return cfg, nil
}

// rebase 将字体相关的相对路径改为相对于配置文件所在目录。
func (f *FontsConfig) rebase(dir string) {
	join := func(p string) string {
		if p == "" || filepath.IsAbs(p) || strings.HasPrefix(p, "embed:") {
			return p
		}
		return filepath.Join(dir, p)
	}
	for i, d := range f.Dirs {
		f.Dirs[i] = join(d)
	}
	for k, v := range f.Files {
		f.Files[k] = join(v)
	}
	f.CacheDir = join(f.CacheDir)
}

// Encode 以 TOML 格式输出配置。
func (c *Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("编码配置失败: %w", err)
	}
	return nil
}

// Save 以 TOML 格式原子写入配置。
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := c.Encode(&buf); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建配置目录失败: %w", err)
		}
	}
	return atomicfile.Write(path, buf.Bytes(), 0o644)
}

var validLogLevels = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}

// Validate 检查配置中的枚举值与数值范围。
func (c *Config) Validate() error {
	if _, err := c.Defaults.Request(); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	if !(c.Output.DPR >= 0) || math.IsInf(c.Output.DPR, 0) {
		return fmt.Errorf("output.dpr 必须为非负有限数，实际 %g", c.Output.DPR)
	}
	if c.Output.Preview < 0 {
		return fmt.Errorf("output.preview 不能为负数，实际 %d", c.Output.Preview)
	}
	for key := range c.Fonts.Files {
		if !layout.FontKey(key).Valid() {
			return fmt.Errorf("fonts.files 中的未知字体键 %q", key)
		}
	}
	for key, spec := range c.Fonts.Google {
		if !layout.FontKey(key).Valid() {
			return fmt.Errorf("fonts.google 中的未知字体键 %q", key)
		}
		if _, _, ok := fonts.ParseGoogleSpec(spec); !ok {
			return fmt.Errorf("fonts.google.%s 应为 google:FAMILY:WEIGHT，实际 %q", key, spec)
		}
	}
	if err := export.CheckTemplate(c.Output.Template); err != nil {
		return fmt.Errorf("output.template: %w", err)
	}
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("log.level 无效 %q：可选 trace、debug、info、warn、error", c.Log.Level)
	}
	return nil
}

// FromRequest 将渲染请求转换为可写入配置文件的形式。
func FromRequest(r layout.Request) RequestConfig {
	return RequestConfig{
		Text:            r.Text,
		Size:            r.Size,
		Fill:            r.Fill.Hex(),
		Stroke:          r.Stroke.Hex(),
		StrokeWidth:     r.StrokeWidth,
		Background:      r.Background,
		BackgroundColor: r.BackgroundColor.Hex(),
		Font:            string(r.Font),
		FontScale:       r.FontScale,
		ThreeMode:       string(r.ThreeMode),
		StretchMode:     string(r.StretchMode),
		ManualStretch:   r.ManualStretch,
	}
}

// Request 解析颜色与枚举，得到经过校验的渲染请求。
func (rc RequestConfig) Request() (layout.Request, error) {
	fill, err := layout.ParseColor(rc.Fill)
	if err != nil {
		return layout.Request{}, fmt.Errorf("fill: %w", err)
	}
	stroke, err := layout.ParseColor(rc.Stroke)
	if err != nil {
		return layout.Request{}, fmt.Errorf("stroke: %w", err)
	}
	bg, err := layout.ParseColor(rc.BackgroundColor)
	if err != nil {
		return layout.Request{}, fmt.Errorf("background_color: %w", err)
	}
	req := layout.Request{
		Text:            rc.Text,
		Size:            rc.Size,
		Fill:            fill,
		Stroke:          stroke,
		StrokeWidth:     rc.StrokeWidth,
		Background:      rc.Background,
		BackgroundColor: bg,
		Font:            layout.FontKey(rc.Font),
		FontScale:       rc.FontScale,
		ThreeMode:       layout.ThreeMode(rc.ThreeMode),
		StretchMode:     layout.StretchMode(rc.StretchMode),
		ManualStretch:   rc.ManualStretch,
	}
	if err := req.Validate(); err != nil {
		return layout.Request{}, err
	}
	return req, nil
}

// SearchDirs 返回按优先级排列的字体目录。
func (f FontsConfig) SearchDirs() []string {
	dirs := append([]string(nil), f.Dirs...)
	if f.UseSystem {
		dirs = append(dirs, fonts.DefaultDirs()...)
	}
	return dirs
}

// FontCacheDir 返回 Google Fonts 下载缓存目录。
func (f FontsConfig) FontCacheDir() string {
	if f.CacheDir != "" {
		return f.CacheDir
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "emodis", "fonts")
	}
	return filepath.Join(os.TempDir(), "emodis-fonts")
}

// Resolver 根据字体配置构造字体解析器。download 为 false 时不访问网络。
func (f FontsConfig) Resolver(logger zerolog.Logger) *fonts.Resolver {
	r := &fonts.Resolver{
		Files:   map[layout.FontKey]string{},
		Google:  map[layout.FontKey]string{},
		Locator: fonts.Locator{Dirs: f.SearchDirs()},
		Logger:  logger,
	}
	for k, v := range f.Files {
		r.Files[layout.FontKey(k)] = v
	}
	for k, v := range f.Google {
		r.Google[layout.FontKey(k)] = v
	}
	if f.Download {
		r.Fetcher = &fonts.GoogleFetcher{CacheDir: f.FontCacheDir()}
	}
	return r
}
