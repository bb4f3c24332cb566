// Package logging 构造 zerolog 日志：默认输出到终端，配置了文件时写入按大小滚动的日志文件。
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options 描述日志输出。
type Options struct {
	Level      string // trace、debug、info、warn、error，无法识别时为 info
	File       string // 为空时输出到 Console
	MaxSizeMB  int
	MaxBackups int
	Console    io.Writer // 为空时使用 os.Stderr
	NoColor    bool
}

// ParseLevel 解析日志级别，无法识别时返回 info。
func ParseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// New 返回日志器与需要在退出前关闭的 io.Closer。
func New(opts Options) (zerolog.Logger, io.Closer) {
	level := ParseLevel(opts.Level)
	if opts.File != "" {
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 10
		}
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     28,
		}
		return zerolog.New(lj).Level(level).With().Timestamp().Logger(), lj
	}

	out := opts.Console
	if out == nil {
		out = os.Stderr
	}
	cw := zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly, NoColor: opts.NoColor}
	return zerolog.New(cw).Level(level).With().Timestamp().Logger(), nopCloser{}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
