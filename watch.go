package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

const defaultWatchDebounce = 200 * time.Millisecond

func newWatchCommand(a *app) *cobra.Command {
	var flags renderFlags
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "监听 DSL 文件，变更后重新生成 PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, renderKeys); err != nil {
				return err
			}
			job, err := flags.job()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			rebuild := func() {
				start := time.Now()
				if err := run(cmd.Context(), job, a.cfg, a.logger); err != nil {
					a.logger.Error("生成 PDF 失败", "error", err)
					return
				}
				fmt.Fprintf(out, "已生成 PDF：%s（%s）\n", job.output, time.Since(start).Round(time.Millisecond))
			}
			rebuild()
			return watchFile(cmd.Context(), job.input, debounce, a.logger, rebuild)
		},
	}
	flags.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", defaultWatchDebounce, "文件变更后等待的时间")
	return cmd
}

// watchFile 监听 path 所在目录，path 被写入、创建或替换时调用 onChange。
// 短时间内的多次事件合并为一次，直到 ctx 结束。onChange 不会并发执行。
func watchFile(ctx context.Context, path string, debounce time.Duration, logger *slog.Logger, onChange func()) error {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	path = filepath.Clean(path)
	if debounce <= 0 {
		debounce = defaultWatchDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听失败: %w", err)
	}
	defer watcher.Close()
	// 编辑器常以重命名方式保存，监听目录而不是文件本身
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("监听 %s 失败: %w", path, err)
	}
	logger.Info("开始监听", "path", path)

	var (
		mu      sync.Mutex
		timer   *time.Timer
		// 同一时刻只运行一次 onChange，较慢的重建不会与下一次重叠
		running sync.Mutex
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			logger.Debug("文件变更", "path", event.Name, "op", event.Op.String())
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				running.Lock()
				defer running.Unlock()
				if ctx.Err() == nil {
					onChange()
				}
			})
			mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("文件监听出错", "error", err)
		}
	}
}
