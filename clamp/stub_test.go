package clamp

import (
	"math"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// charHost 是确定性的测试宿主：每行固定 perLine 个字符，行高固定。
type charHost struct {
	perLine    int
	lineHeight float64
	fontSize   float64
	// height 非负时覆盖测量结果
	height   float64
	override bool
	measured int
}

func newCharHost(perLine int) *charHost {
	return &charHost{perLine: perLine, lineHeight: 20, fontSize: 16}
}

func (h *charHost) ComputedStyle(*html.Node) Style {
	return Style{LineHeight: h.lineHeight, FontSize: h.fontSize}
}

func (h *charHost) RenderedHeight(el *html.Node) float64 {
	h.measured++
	if h.override {
		return h.height
	}
	n := utf8.RuneCountInString(TextContent(el))
	if n == 0 {
		return 0
	}
	lines := math.Ceil(float64(n) / float64(h.perLine))
	return lines * h.lineHeight
}

// nativeHost 额外声明支持原生截断。
type nativeHost struct {
	*charHost
	supported bool
	lines     int
	height    float64
	calls     int
}

func (h *nativeHost) SupportsNativeClamp() bool { return h.supported }

func (h *nativeHost) NativeClamp(_ *html.Node, lines int, height float64) {
	h.calls++
	h.lines = lines
	h.height = height
}

func textContainer(parts ...string) *html.Node {
	el := NewContainer("p")
	for _, p := range parts {
		el.AppendChild(NewText(p))
	}
	return el
}
