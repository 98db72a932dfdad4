package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ByLCY/papyrus-clamp/clamp"
	"github.com/ByLCY/papyrus-clamp/layout"
	"github.com/ByLCY/papyrus-clamp/termhost"
)

var (
	markerColor = color.New(color.FgYellow, color.Bold).SprintFunc()
	stepColor   = color.New(color.FgHiBlack).SprintFunc()
)

type textFlags struct {
	html   bool
	markup bool
	steps  bool
	split  string
}

var textKeys = map[string]string{
	"width":    "terminal.width",
	"lines":    "clamp.lines",
	"native":   "clamp.native",
	"animate":  "clamp.animate",
	"ellipsis": "clamp.ellipsis",
	"marker":   "clamp.marker",
}

func newTextCommand(a *app) *cobra.Command {
	var flags textFlags
	cmd := &cobra.Command{
		Use:   "text [TEXT|-]",
		Short: "按终端宽度截断文本",
		Long: `按终端列宽截断一段文本。TEXT 为 "-" 或省略时从标准输入读取。
--width 为 0 时使用当前终端宽度。`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, textKeys); err != nil {
				return err
			}
			input, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			opts, err := a.cfg.Clamp.ClampOptions()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("split") {
				opts.SplitOnChars = layout.ParseSplit(flags.split)
			}
			opts.Logger = a.logger
			return clampText(cmd, input, terminalWidth(a.cfg.Terminal.Width), opts, flags)
		},
	}
	cmd.Flags().Int("width", 80, "终端列宽，0 表示自动检测")
	cmd.Flags().String("lines", "2", "截断目标：行数、auto 或高度（如 3em）")
	cmd.Flags().Bool("native", true, "允许宿主原生截断")
	cmd.Flags().String("animate", "", "逐步截断的间隔，例如 50ms；on 使用默认间隔")
	cmd.Flags().String("ellipsis", clamp.DefaultTruncationChar, "省略符")
	cmd.Flags().String("marker", "", "截断处追加的富文本标记（HTML）")
	cmd.Flags().StringVar(&flags.split, "split", "", "以空白分隔的切分字符，space 表示空格")
	cmd.Flags().BoolVar(&flags.html, "html", false, "将输入作为 HTML 解析")
	cmd.Flags().BoolVar(&flags.markup, "markup", false, "输出截断后的 HTML 而不是折行文本")
	cmd.Flags().BoolVar(&flags.steps, "steps", false, "打印每一步的中间结果")
	return cmd
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("读取标准输入失败: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// terminalWidth 返回配置的列宽；为 0 时检测标准输出所在终端，检测失败退回 80 列。
func terminalWidth(width int) int {
	if width > 0 {
		return width
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

func clampText(cmd *cobra.Command, input string, width int, opts clamp.Options, flags textFlags) error {
	out := cmd.OutOrStdout()
	el := clamp.NewContainer("p")
	if flags.html {
		parsed, err := clamp.ParseFragment(input)
		if err != nil {
			return fmt.Errorf("解析 HTML 失败: %w", err)
		}
		el = parsed
	} else {
		el.AppendChild(clamp.NewText(input))
	}

	if flags.steps {
		opts.OnStep = func(s clamp.Step) {
			fmt.Fprintln(out, stepColor(fmt.Sprintf("%3d %q %s", s.Index, s.Delimiter, s.Content)))
		}
	}

	host := termhost.New(width)
	res := clamp.Clamp(cmd.Context(), el, host, opts)
	if flags.markup {
		fmt.Fprintln(out, res.ClampedText())
		return nil
	}

	// Lines 返回的切片来自缓存，修改前先复制
	lines := append([]string(nil), host.Lines(clamp.TextContent(el))...)
	if n := len(lines); n > 0 && res.ClampedText() != res.Original {
		lines[n-1] = highlightSuffix(lines[n-1], truncationSuffix(opts))
	}
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	return nil
}

// truncationSuffix 返回截断处出现的文本：富文本标记的文字内容，或省略符。
func truncationSuffix(opts clamp.Options) string {
	if opts.TruncationHTML != "" {
		if frag, err := clamp.ParseFragment(opts.TruncationHTML); err == nil {
			return clamp.TextContent(frag)
		}
	}
	if opts.TruncationChar == "" {
		return clamp.DefaultTruncationChar
	}
	return opts.TruncationChar
}

func highlightSuffix(line, suffix string) string {
	if suffix == "" || !strings.HasSuffix(line, suffix) {
		return line
	}
	return line[:len(line)-len(suffix)] + markerColor(suffix)
}
