// Package watch 监视配置与配方文件，在文件变化后（合并短时间内的连续写入）通知重新渲染。
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce 是合并连续写入的默认等待时间。
const DefaultDebounce = 150 * time.Millisecond

// Options 配置 Watcher。
type Options struct {
	Debounce time.Duration
	Logger   zerolog.Logger
}

// Watcher 监视一组文件。编辑器常以「写临时文件再重命名」的方式保存，
// 所以监视的是文件所在目录，再按文件名过滤事件。
type Watcher struct {
	files    map[string]bool
	events   chan struct{} // 缓冲为 1，未消费的通知会被合并
	done     chan struct{}
	fsw      *fsnotify.Watcher
	once     sync.Once
	debounce time.Duration
	logger   zerolog.Logger
}

// New 开始监视 files。
func New(files []string, opts Options) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("没有需要监视的文件")
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建文件监视器失败: %w", err)
	}
	w := &Watcher{
		files:    map[string]bool{},
		events:   make(chan struct{}, 1),
		done:     make(chan struct{}),
		fsw:      fsw,
		debounce: debounce,
		logger:   opts.Logger,
	}
	dirs := map[string]bool{}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("解析路径 %s 失败: %w", f, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("监视目录 %s 失败: %w", dir, err)
		}
	}
	go w.watch()
	return w, nil
}

// Events 在被监视的文件变化后收到一次信号。
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Close 停止监视，可重复调用。
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		if closeErr := w.fsw.Close(); closeErr != nil {
			err = fmt.Errorf("关闭文件监视器失败: %w", closeErr)
		}
	})
	return err
}

func (w *Watcher) watch() {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !w.files[filepath.Clean(event.Name)] {
				continue
			}
			w.logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("文件变化")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.notify()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("文件监视出错")
		}
	}
}

func (w *Watcher) notify() {
	select {
	case w.events <- struct{}{}:
	default:
	}
}

// Run 在每次变化后调用 fn，直到 ctx 结束。fn 的错误只记录日志，不中断监视。
func Run(ctx context.Context, w *Watcher, fn func() error) error {
	defer w.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.done:
			return nil
		case <-w.Events():
			if err := fn(); err != nil {
				w.logger.Error().Err(err).Msg("重新渲染失败")
			}
		}
	}
}
