package clamp

import "golang.org/x/net/html"

// Style 是宿主环境给出的计算样式，单位与 RenderedHeight 一致。
type Style struct {
	// LineHeight <= 0 表示 normal，由字号推算。
	LineHeight float64
	FontSize   float64
}

// Host 提供宿主渲染环境的只读查询：计算样式与渲染高度。
// 截断引擎每次修改文本后都会调用 RenderedHeight 重新测量。
type Host interface {
	ComputedStyle(el *html.Node) Style
	RenderedHeight(el *html.Node) float64
}

// NativeClamper is implemented by hosts that can clamp lines themselves
// (the equivalent of -webkit-line-clamp). When it is used no text is
// mutated.
type NativeClamper interface {
	SupportsNativeClamp() bool
	// NativeClamp limits el to lines lines. height is the requested box
	// height for height targets and 0 otherwise.
	NativeClamp(el *html.Node, lines int, height float64)
}

// HostFuncs adapts plain functions to Host.
type HostFuncs struct {
	Style  func(el *html.Node) Style
	Height func(el *html.Node) float64
}

func (h HostFuncs) ComputedStyle(el *html.Node) Style {
	if h.Style == nil {
		return Style{}
	}
	return h.Style(el)
}

func (h HostFuncs) RenderedHeight(el *html.Node) float64 {
	if h.Height == nil {
		return 0
	}
	return h.Height(el)
}
