package clamp

import (
	"context"

	"golang.org/x/net/html"
)

// Result 是一次 Clamp 的结果。
type Result struct {
	// Original 为截断前的 innerHTML。
	Original string
	// Clamped 为截断后的 innerHTML；走原生截断时为 nil，由宿主负责渲染。
	Clamped *string
	Native  bool

	MaxLines  int
	MaxHeight float64
	Steps     int
}

// ClampedText returns the clamped content, or "" for native results.
func (r Result) ClampedText() string {
	if r.Clamped == nil {
		return ""
	}
	return *r.Clamped
}

// Clamp limits el to the target in opts, adding an ellipsis (or the rich
// marker) at the truncation point. It never fails: degenerate input is
// left as it is.
//
// When host implements NativeClamper and native clamping is enabled the
// engine is bypassed and Result.Clamped is nil.
func Clamp(ctx context.Context, el *html.Node, host Host, opts Options) Result {
	opts = opts.withDefaults()
	res := Result{Original: InnerHTML(el)}
	if el == nil || host == nil {
		res.Clamped = &res.Original
		return res
	}

	m := NewMetrics(host, el)
	lines := m.ResolveLines(opts.Clamp)
	res.MaxLines = lines

	if nc, ok := host.(NativeClamper); ok && nc.SupportsNativeClamp() && opts.NativeEnabled() {
		var height float64
		if opts.Clamp.Kind == TargetHeight {
			// 原生路径使用原始高度，不按整行归一化
			height = m.heightOf(opts.Clamp)
		}
		nc.NativeClamp(el, lines, height)
		res.Native = true
		res.MaxHeight = height
		opts.Logger.Debug("clamp native", "lines", lines, "height", height)
		return res
	}

	maxHeight := m.MaxHeight(lines)
	res.MaxHeight = maxHeight
	current := host.RenderedHeight(el)
	if maxHeight <= 0 || maxHeight >= current {
		opts.Logger.Debug("clamp skipped", "max", maxHeight, "height", current)
		res.Clamped = &res.Original
		return res
	}

	e := NewEngine(el, host, opts)
	clamped := e.Truncate(ctx, maxHeight)
	res.Clamped = &clamped
	res.Steps = e.Steps()
	opts.Logger.Debug("clamp done", "lines", lines, "max", maxHeight, "steps", res.Steps)
	return res
}
