// Package termhost measures text the way a terminal lays it out: fixed
// cell grid, one row per line, wide runes taking two cells.
package termhost

import (
	"strings"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mattn/go-runewidth"
	"golang.org/x/net/html"

	"github.com/ByLCY/papyrus-clamp/clamp"
)

const wrapCacheSize = 512

// Host implements clamp.Host for a terminal of a given column width.
type Host struct {
	width int
	cache *lru.Cache[string, []string]
}

var _ clamp.Host = (*Host)(nil)

// New 创建宽度为 width 列的终端宿主；width <= 0 表示不自动折行。
func New(width int) *Host {
	// 只有 size <= 0 才会返回错误
	cache, _ := lru.New[string, []string](wrapCacheSize)
	return &Host{width: width, cache: cache}
}

// Width returns the column width.
func (h *Host) Width() int { return h.width }

// ComputedStyle 终端中一行占一个单位高度。
func (h *Host) ComputedStyle(*html.Node) clamp.Style {
	return clamp.Style{LineHeight: 1, FontSize: 1}
}

// RenderedHeight returns the number of rows el's text occupies.
func (h *Host) RenderedHeight(el *html.Node) float64 {
	return float64(len(h.Lines(clamp.TextContent(el))))
}

// Lines 按列宽贪心折行，优先在空白处断开，单词超宽时在词内拆分。
func (h *Host) Lines(text string) []string {
	if text == "" {
		return nil
	}
	if lines, ok := h.cache.Get(text); ok {
		return lines
	}
	lines := wrap(text, h.width)
	h.cache.Add(text, lines)
	return lines
}

func wrap(content string, limit int) []string {
	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(content, "\r", ""), "\n") {
		if limit <= 0 {
			lines = append(lines, para)
			continue
		}
		lines = append(lines, wrapParagraph(para, limit)...)
	}
	return lines
}

func wrapParagraph(para string, limit int) []string {
	var lines []string
	var builder strings.Builder
	current := 0
	emit := func() {
		lines = append(lines, strings.TrimRightFunc(builder.String(), unicode.IsSpace))
		builder.Reset()
		current = 0
	}

	for _, token := range tokenize(para) {
		w := runewidth.StringWidth(token)
		space := isSpace(token)
		if current > 0 && current+w > limit {
			emit()
		}
		// 软换行后的行首空白丢弃
		if space && current == 0 && len(lines) > 0 {
			continue
		}
		if w <= limit {
			builder.WriteString(token)
			current += w
			continue
		}
		for _, r := range token {
			rw := runewidth.RuneWidth(r)
			if current > 0 && current+rw > limit {
				emit()
			}
			builder.WriteRune(r)
			current += rw
		}
	}
	if builder.Len() > 0 || len(lines) == 0 {
		emit()
	}
	return lines
}

// tokenize 把文本切成交替的空白与非空白片段。
func tokenize(s string) []string {
	var tokens []string
	var builder strings.Builder
	lastWasSpace := false
	for _, r := range s {
		sp := unicode.IsSpace(r)
		if builder.Len() > 0 && sp != lastWasSpace {
			tokens = append(tokens, builder.String())
			builder.Reset()
		}
		lastWasSpace = sp
		builder.WriteRune(r)
	}
	if builder.Len() > 0 {
		tokens = append(tokens, builder.String())
	}
	return tokens
}

func isSpace(token string) bool {
	return strings.TrimSpace(token) == ""
}
