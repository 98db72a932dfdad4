package clamp

import (
	"context"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// searchState 是一次截断调用的可变搜索状态，只在 Engine 内部流转。
type searchState struct {
	node       *html.Node
	delimiters []string
	delimiter  string
	// chunks 为 nil 表示当前分隔符的搜索尚未开始或已经结束。
	chunks    []string
	lastChunk string
}

func newSearchState(node *html.Node, delimiters []string) searchState {
	st := searchState{node: node}
	st.reset(delimiters)
	return st
}

func (st *searchState) reset(delimiters []string) {
	st.delimiters = append(st.delimiters[:0:0], delimiters...)
	st.delimiter = ""
	if len(st.delimiters) > 0 {
		st.delimiter = st.delimiters[0]
	}
	st.chunks = nil
	st.lastChunk = ""
}

// nextDelimiter 取出下一个分隔符，序列耗尽后退化为逐字符。
func (st *searchState) nextDelimiter() {
	if len(st.delimiters) > 0 {
		st.delimiter = st.delimiters[0]
		st.delimiters = st.delimiters[1:]
		return
	}
	st.delimiter = ""
}

// Engine shortens the text of a container until its rendered height fits
// a budget. It mutates the container in place and is not safe for
// concurrent use; run at most one Engine per container.
type Engine struct {
	container *html.Node
	host      Host
	opts      Options

	marker  []*html.Node
	spliced []*html.Node
	// rooted 记录容器开始时是否挂在父节点上，用于判断容器是否已被移除。
	rooted bool
	steps  int
}

// NewEngine prepares an engine for container.
func NewEngine(container *html.Node, host Host, opts Options) *Engine {
	opts = opts.withDefaults()
	e := &Engine{
		container: container,
		host:      host,
		opts:      opts,
		rooted:    container != nil && container.Parent != nil,
	}
	if opts.TruncationHTML != "" {
		e.marker = parseMarker(opts.TruncationHTML)
	}
	return e
}

// Steps returns the number of measured edits performed so far.
func (e *Engine) Steps() int { return e.steps }

// Truncate 反复编辑并重新测量，直到内容高度不超过 maxHeight，返回容器最终的 innerHTML。
// maxHeight <= 0 时不做任何修改。
func (e *Engine) Truncate(ctx context.Context, maxHeight float64) string {
	if maxHeight <= 0 || e.container == nil {
		return InnerHTML(e.container)
	}
	st := newSearchState(nextCandidateNode(e.container, e.opts.TruncationChar), e.opts.SplitOnChars)
	for st.node != nil {
		if !e.alive(ctx) {
			break
		}
		if e.step(&st, maxHeight) {
			break
		}
		if e.opts.Animate > 0 && !e.wait(ctx) {
			break
		}
	}
	return InnerHTML(e.container)
}

// step 执行一次编辑；返回 true 表示已经找到最终结果。
func (e *Engine) step(st *searchState, maxHeight float64) bool {
	e.unsplice()
	ellipsis := e.opts.TruncationChar
	text := strings.TrimSuffix(st.node.Data, ellipsis)

	if st.chunks == nil {
		st.nextDelimiter()
		st.chunks = splitChunks(text, st.delimiter)
	}

	if len(st.chunks) > 1 {
		last := len(st.chunks) - 1
		st.lastChunk = st.chunks[last]
		st.chunks = st.chunks[:last]
		st.node.Data = strings.Join(st.chunks, st.delimiter) + ellipsis
	} else {
		st.chunks = nil
	}

	if st.chunks == nil {
		// 逐字符也无法再拆分，清空当前节点并转向前一个文本节点
		if st.delimiter == "" {
			st.node.Data = ellipsis
			st.node = nextCandidateNode(e.container, ellipsis)
			st.reset(e.opts.SplitOnChars)
			e.opts.Logger.Debug("clamp node exhausted", "next", st.node != nil)
		}
		return false
	}

	e.splice(st.node)
	height := e.host.RenderedHeight(e.container)
	fits := height <= maxHeight
	e.steps++
	e.opts.Logger.Debug("clamp step",
		"step", e.steps,
		"delimiter", st.delimiter,
		"chunks", len(st.chunks),
		"height", height,
		"max", maxHeight,
	)
	if e.opts.OnStep != nil {
		e.opts.OnStep(Step{
			Index:     e.steps,
			Delimiter: st.delimiter,
			Content:   InnerHTML(e.container),
			Height:    height,
			Fits:      fits,
		})
	}
	if !fits {
		return false
	}
	if st.delimiter == "" {
		return true
	}
	// 这一刀切得太多：放回最后一块，换更细的分隔符再试
	e.unsplice()
	st.node.Data = strings.Join(st.chunks, st.delimiter) + st.delimiter + st.lastChunk + ellipsis
	st.chunks = nil
	return false
}

// alive 在每一步之前检查；容器的 Parent 只在本 goroutine 上读取。
func (e *Engine) alive(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	if e.rooted && e.container.Parent == nil {
		return false
	}
	return true
}

func (e *Engine) wait(ctx context.Context) bool {
	t := time.NewTimer(e.opts.Animate)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// splice replaces the plain ellipsis after node with the rich marker.
func (e *Engine) splice(node *html.Node) {
	if len(e.marker) == 0 || node.Parent == nil {
		return
	}
	node.Data = strings.TrimSuffix(node.Data, e.opts.TruncationChar)
	next := node.NextSibling
	sep := NewText(" ")
	node.Parent.InsertBefore(sep, next)
	e.spliced = append(e.spliced, sep)
	for _, m := range e.marker {
		cp := Clone(m)
		node.Parent.InsertBefore(cp, next)
		e.spliced = append(e.spliced, cp)
	}
}

func (e *Engine) unsplice() {
	for _, n := range e.spliced {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
	e.spliced = e.spliced[:0]
}

// parseMarker 解析富文本标记；解析失败时按纯文本处理。
func parseMarker(markup string) []*html.Node {
	ctx := &html.Node{Type: html.ElementNode, Data: "span", DataAtom: atom.Span}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil || len(nodes) == 0 {
		return []*html.Node{NewText(markup)}
	}
	return nodes
}
