package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ByLCY/papyrus-clamp/config"
	"github.com/ByLCY/papyrus-clamp/dsl"
	"github.com/ByLCY/papyrus-clamp/layout"
	"github.com/ByLCY/papyrus-clamp/renderer"
	canvasrenderer "github.com/ByLCY/papyrus-clamp/renderer/canvas"
)

// renderJob 描述一次 DSL → PDF 的生成。
type renderJob struct {
	input  string
	output string
	debug  string
	data   any
}

type renderFlags struct {
	input    string
	output   string
	debug    string
	dataJSON string
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.input, "in", "examples/demo.papyrus", "DSL 文件路径")
	cmd.Flags().StringVar(&f.output, "out", "output/demo.pdf", "PDF 输出路径")
	cmd.Flags().StringVar(&f.debug, "debug", "", "布局调试输出路径（.json 或 .yaml）")
	cmd.Flags().StringVar(&f.dataJSON, "data", "", "绑定到 DSL 的 JSON 数据")
	cmd.Flags().Bool("line-clamp", false, "由渲染器按行截断（只绘制前 N 行）")
	cmd.Flags().String("base-dir", "", "字体等资源的查找目录，默认为 DSL 文件所在目录")
}

var renderKeys = map[string]string{
	"line-clamp": "render.line_clamp",
	"base-dir":   "render.base_dir",
}

func (f *renderFlags) job() (renderJob, error) {
	job := renderJob{input: f.input, output: f.output, debug: f.debug}
	if f.dataJSON != "" {
		if err := json.Unmarshal([]byte(f.dataJSON), &job.data); err != nil {
			return job, fmt.Errorf("解析 data JSON 失败: %w", err)
		}
	}
	return job, nil
}

func newRenderCommand(a *app) *cobra.Command {
	var flags renderFlags
	cmd := &cobra.Command{
		Use:   "render",
		Short: "解析 DSL，截断文本框并输出 PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, renderKeys); err != nil {
				return err
			}
			job, err := flags.job()
			if err != nil {
				return err
			}
			if err := run(cmd.Context(), job, a.cfg, a.logger); err != nil {
				return fmt.Errorf("生成 PDF 失败: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已生成 PDF：%s\n", job.output)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// newRenderer 按配置创建渲染器，资源目录默认取 DSL 文件所在目录。
func newRenderer(input string, cfg config.RenderConfig) *canvasrenderer.Renderer {
	baseDir := cfg.BaseDir
	if baseDir == "" {
		baseDir = filepath.Dir(input)
	}
	return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		BaseDir:   baseDir,
		LineClamp: cfg.LineClamp,
		CacheSize: cfg.CacheSize,
	})
}

// run 串联解析、布局与渲染。
func run(ctx context.Context, job renderJob, cfg *config.Config, logger *slog.Logger) error {
	opts, err := cfg.Clamp.ClampOptions()
	if err != nil {
		return fmt.Errorf("截断配置无效: %w", err)
	}
	r := newRenderer(job.input, cfg.Render)
	return render(ctx, job, r, layout.BuildOptions{Typesetter: r, Clamp: opts, Logger: logger})
}

func render(ctx context.Context, job renderJob, r renderer.Renderer, opts layout.BuildOptions) error {
	if r == nil {
		return fmt.Errorf("renderer 不能为空")
	}
	file, err := os.Open(job.input)
	if err != nil {
		return fmt.Errorf("无法打开 DSL 文件 %s: %w", job.input, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return fmt.Errorf("解析 DSL 失败: %w", err)
	}

	result, err := layout.Build(ctx, doc, job.data, opts)
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}

	if job.debug != "" {
		if err := writeDebug(result, job.debug); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(job.output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}

	pdfBytes, err := r.Render(result)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(job.output, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebug(result, debugPath); err != nil {
		return fmt.Errorf("输出调试信息失败: %w", err)
	}
	return nil
}
