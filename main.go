package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ByLCY/papyrus-clamp/config"
	"github.com/ByLCY/papyrus-clamp/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app 保存各子命令共享的配置与日志。
type app struct {
	configPath string
	v          *viper.Viper
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:   "papyrus-clamp",
		Short: "按行数或高度截断文本，并排版输出 PDF",
		Long: `papyrus-clamp 将文本截断到指定行数或高度，在截断处补上省略符或富文本标记。

  papyrus-clamp text --width 20 --lines 2 "The quick brown fox jumps. Over the lazy dog."
  papyrus-clamp render --in examples/demo.papyrus --out output/demo.pdf
  papyrus-clamp watch --in examples/demo.papyrus --out output/demo.pdf`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "配置文件路径（默认查找 ./papyrus-clamp.yaml|toml|json）")
	root.PersistentFlags().String("log-level", "info", "日志级别：debug、info、warn、error")
	root.PersistentFlags().String("log-format", "text", "日志格式：text 或 json")
	_ = a.v.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", root.PersistentFlags().Lookup("log-format"))

	root.AddCommand(newRenderCommand(a))
	root.AddCommand(newWatchCommand(a))
	root.AddCommand(newTextCommand(a))
	return root
}

// load 绑定子命令参数后读取配置。keys 为参数名到配置键的映射，命令行显式给出的值优先于配置文件与环境变量。
func (a *app) load(cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("绑定参数 %s 失败: %w", flag, err)
			}
		}
	}
	if err := config.ReadFile(a.v, a.configPath); err != nil {
		return err
	}
	cfg, err := config.Decode(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cmd.ErrOrStderr()})
	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debug("加载配置文件", "path", used)
	}
	return nil
}
