package layout

import (
	"math"

	"golang.org/x/net/html"

	"github.com/ByLCY/papyrus-clamp/clamp"
)

// boxHost 把 Typesetter 适配为 clamp.Host。
// 截断引擎以 CSS 像素（96 dpi）工作；排版后端以毫米工作。
type boxHost struct {
	ts         Typesetter
	font       FontResource
	fontSize   float64 // mm
	lineHeight float64 // mm，已对齐到整数像素
	width      float64 // mm
	wrap       string

	// 原生截断结果
	lineClamp   int
	fixedHeight float64 // mm

	measured int
	err      error
}

func (h *boxHost) ComputedStyle(*html.Node) clamp.Style {
	return clamp.Style{
		LineHeight: h.lineHeightPx(),
		FontSize:   h.fontSize * MmToPx,
	}
}

// lineHeightPx 去掉换算误差，行高本身已对齐到整数像素。
func (h *boxHost) lineHeightPx() float64 {
	return math.Round(h.lineHeight * MmToPx)
}

// RenderedHeight 返回按行高堆叠的高度：行数 × 行高。
func (h *boxHost) RenderedHeight(el *html.Node) float64 {
	n := h.lineCount(clamp.TextContent(el))
	return float64(n) * h.lineHeightPx()
}

func (h *boxHost) lineCount(content string) int {
	if content == "" {
		return 0
	}
	h.measured++
	lines, err := h.ts.LayoutLines(content, h.width, h.font, h.fontSize, h.lineHeight, h.wrap)
	if err != nil {
		if h.err == nil {
			h.err = err
		}
		return 0
	}
	return len(lines)
}

func (h *boxHost) SupportsNativeClamp() bool {
	lc, ok := h.ts.(LineClamper)
	return ok && lc.SupportsLineClamp()
}

func (h *boxHost) NativeClamp(_ *html.Node, lines int, height float64) {
	h.lineClamp = lines
	h.fixedHeight = height * PxToMm
}
