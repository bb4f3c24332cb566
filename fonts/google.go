package fonts

// Google Fonts 下载：规格写作 "google:FAMILY:WEIGHT"（例如 "google:Noto Sans JP:900"），
// 下载结果统一转换为 SFNT 并缓存在本地目录，重复调用不再访问网络。

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/ByLCY/emodis/atomicfile"
)

// DefaultCSSURL 是 Google Fonts CSS2 接口地址。
const DefaultCSSURL = "https://fonts.googleapis.com/css2"

// fontURLRe 从 CSS 响应中提取字体文件地址，例如 url(https://fonts.gstatic.com/s/.../x.woff2)。
var fontURLRe = regexp.MustCompile(`url\((https?://[^)]+)\)`)

var (
	httpClient     *retryablehttp.Client
	httpClientOnce sync.Once
)

func defaultHTTPClient() *retryablehttp.Client {
	httpClientOnce.Do(func() {
		httpClient = retryablehttp.NewClient()
		httpClient.RetryMax = 2
		httpClient.HTTPClient.Timeout = 15 * time.Second
		httpClient.Logger = nil
	})
	return httpClient
}

// ParseGoogleSpec 将 "google:Family:Weight" 拆分为字体族与字重。
func ParseGoogleSpec(spec string) (family, weight string, ok bool) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 || parts[0] != "google" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// GoogleFetcher 下载并缓存 Google Fonts 字体文件。
type GoogleFetcher struct {
	CacheDir string
	CSSURL   string                // 为空时使用 DefaultCSSURL
	Client   *retryablehttp.Client // 为空时使用共享客户端
}

// CachePath 返回规格对应的缓存文件路径。
func (g *GoogleFetcher) CachePath(spec string) (string, error) {
	family, weight, ok := ParseGoogleSpec(spec)
	if !ok {
		return "", fmt.Errorf("无效的 Google 字体规格 %q，应为 google:FAMILY:WEIGHT", spec)
	}
	name := strings.ReplaceAll(family, " ", "_") + "-" + weight + ".ttf"
	return filepath.Join(g.CacheDir, name), nil
}

// Download 确保规格对应的字体已缓存到本地，并返回缓存文件路径。
func (g *GoogleFetcher) Download(ctx context.Context, spec string) (string, error) {
	if g.CacheDir == "" {
		return "", fmt.Errorf("未配置字体缓存目录，无法下载 %s", spec)
	}
	cacheFile, err := g.CachePath(spec)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(cacheFile); err == nil && info.Size() > 0 {
		return cacheFile, nil
	}
	data, err := g.fetch(ctx, spec)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(g.CacheDir, 0o755); err != nil {
		return "", fmt.Errorf("创建字体缓存目录失败: %w", err)
	}
	// 缓存文件存在即视为完整，所以只能以原子方式写入
	if err := atomicfile.Write(cacheFile, data, 0o644); err != nil {
		return "", fmt.Errorf("写入字体缓存失败: %w", err)
	}
	return cacheFile, nil
}

func (g *GoogleFetcher) fetch(ctx context.Context, spec string) ([]byte, error) {
	family, weight, _ := ParseGoogleSpec(spec)
	base := g.CSSURL
	if base == "" {
		base = DefaultCSSURL
	}
	cssURL := fmt.Sprintf("%s?family=%s:wght@%s", base, url.QueryEscape(family), weight)

	cssBody, err := g.get(ctx, cssURL, 1<<20)
	if err != nil {
		return nil, fmt.Errorf("获取 Google Fonts CSS 失败（%s wght@%s）: %w", family, weight, err)
	}
	matches := fontURLRe.FindSubmatch(cssBody)
	if matches == nil {
		return nil, fmt.Errorf("Google Fonts CSS 中没有字体地址（%s wght@%s）", family, weight)
	}
	fontURL := string(matches[1])

	data, err := g.get(ctx, fontURL, 10<<20)
	if err != nil {
		return nil, fmt.Errorf("下载字体文件失败: %w", err)
	}
	return ToSFNT(fontURL, data)
}

func (g *GoogleFetcher) get(ctx context.Context, target string, limit int64) ([]byte, error) {
	client := g.Client
	if client == nil {
		client = defaultHTTPClient()
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	// 现代 UA 才会拿到 WOFF2 地址，下载后再转换为 SFNT。
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s 返回状态码 %d", target, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}
