package clamp

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// 内容树直接复用 x/net/html 的节点：容器是 ElementNode，文本叶子是 TextNode。

// NewContainer 创建一个空的容器元素，tag 为空时使用 div。
func NewContainer(tag string) *html.Node {
	if tag == "" {
		tag = "div"
	}
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
}

// NewText 创建文本节点。
func NewText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// ParseFragment parses markup into a new div container.
func ParseFragment(markup string) (*html.Node, error) {
	container := NewContainer("div")
	nodes, err := html.ParseFragment(strings.NewReader(markup), container)
	if err != nil {
		return nil, fmt.Errorf("clamp: parse fragment: %w", err)
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, nil
}

// InnerHTML 序列化 el 的全部子节点，相当于 DOM 的 innerHTML。
func InnerHTML(el *html.Node) string {
	if el == nil {
		return ""
	}
	var buf bytes.Buffer
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		// 写入 bytes.Buffer 不会失败
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// TextContent concatenates every text node below el.
func TextContent(el *html.Node) string {
	if el == nil {
		return ""
	}
	if el.Type == html.TextNode {
		return el.Data
	}
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
				continue
			}
			walk(c)
		}
	}
	walk(el)
	return b.String()
}

// Clone 深拷贝节点及其子树，返回的副本没有父节点。
func Clone(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	cp := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		cp.Attr = append([]html.Attribute(nil), n.Attr...)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		cp.AppendChild(Clone(c))
	}
	return cp
}

// Detach 将 el 从父节点移除。正在进行的动画截断在下一步发现容器已脱离后停止。
// 节点树不加锁：只能在运行 Clamp 的 goroutine 上调用（例如在 OnStep 中），
// 其他 goroutine 应取消传给 Clamp 的 ctx。
func Detach(el *html.Node) {
	if el == nil || el.Parent == nil {
		return
	}
	el.Parent.RemoveChild(el)
}

// nextCandidateNode 沿最后一个子节点下降到最深的叶子。
// 叶子若是无子节点的元素、空文本或仅剩省略符，就把它删掉并从容器重新开始；
// 容器没有子节点时返回 nil。
func nextCandidateNode(container *html.Node, ellipsis string) *html.Node {
	if container == nil {
		return nil
	}
	for {
		n := container.LastChild
		if n == nil {
			return nil
		}
		for n.LastChild != nil {
			n = n.LastChild
		}
		if n.Type == html.TextNode && n.Data != "" && n.Data != ellipsis {
			return n
		}
		// 叶子不可截断，删除后树严格变小
		n.Parent.RemoveChild(n)
	}
}
