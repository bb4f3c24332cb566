package fonts

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ByLCY/emodis/layout"
)

// Resolver 将字体键解析为具体的字体文件，依次尝试：
// 配置中指定的文件、本地字体目录中的回退链、Google Fonts 下载，最后是内置字体。
type Resolver struct {
	Files   map[layout.FontKey]string // 按字体键显式指定的文件
	Locator Locator
	Google  map[layout.FontKey]string // 按字体键配置的 google:FAMILY:WEIGHT
	Fetcher *GoogleFetcher            // 为空时不访问网络
	Logger  zerolog.Logger
}

// Resolve 返回字体键对应的字体资源。只有字体键未知时返回错误；其余情况至少回退到内置字体。
func (r *Resolver) Resolve(ctx context.Context, key layout.FontKey) (layout.FontResource, error) {
	entry, ok := Lookup(key)
	if !ok {
		return layout.FontResource{}, fmt.Errorf("未知字体 %q", key)
	}
	res := layout.FontResource{Key: entry.Key, Label: entry.Label, Families: entry.Families}
	log := r.Logger.With().Str("font", string(key)).Logger()

	if file := r.Files[key]; file != "" {
		if isEmbedded(file) || fileExists(file) {
			res.Family, res.Src = entry.Families[0], file
			log.Debug().Str("src", file).Msg("使用配置指定的字体文件")
			return res, nil
		}
		log.Warn().Str("src", file).Msg("配置指定的字体文件不存在，继续按回退链查找")
	}

	files, err := r.Locator.Files()
	if err != nil {
		log.Warn().Err(err).Msg("搜索本地字体目录失败")
	}
	for _, family := range entry.Families {
		if family == SansSerif {
			break
		}
		if path, err := match(files, family); err == nil {
			res.Family, res.Src = family, path
			log.Debug().Str("family", family).Str("src", path).Msg("命中本地字体")
			return res, nil
		}
	}

	if spec := r.Google[key]; spec != "" && r.Fetcher != nil {
		path, err := r.Fetcher.Download(ctx, spec)
		if err == nil {
			family, _, _ := ParseGoogleSpec(spec)
			res.Family, res.Src = family, path
			log.Debug().Str("spec", spec).Str("src", path).Msg("使用 Google Fonts 字体")
			return res, nil
		}
		log.Warn().Err(err).Str("spec", spec).Msg("下载 Google Fonts 字体失败")
	}

	res.Family, res.Src = SansSerif, FallbackSrc
	log.Info().Msg("未找到字体，使用内置 sans-serif")
	return res, nil
}

// Status 是 fonts 命令展示的一行解析结果。
type Status struct {
	Entry    Entry
	Resource layout.FontResource
	Fallback bool
}

// Statuses 解析全部字体键。
func (r *Resolver) Statuses(ctx context.Context) ([]Status, error) {
	out := make([]Status, 0, len(registry))
	for _, e := range Entries() {
		res, err := r.Resolve(ctx, e.Key)
		if err != nil {
			return nil, err
		}
		out = append(out, Status{Entry: e, Resource: res, Fallback: res.Src == FallbackSrc})
	}
	return out, nil
}

func isEmbedded(src string) bool {
	name, ok := strings.CutPrefix(src, "embed:")
	if !ok {
		return false
	}
	_, err := Load(name)
	return err == nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
