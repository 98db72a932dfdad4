package canvasrenderer

import (
	"math"
	"strings"
	"unicode"

	"github.com/ByLCY/papyrus-clamp/layout"
)

// widthFunc 返回一段文本的绘制宽度（mm），通常是 canvas.FontFace.TextWidth。
type widthFunc func(string) float64

// greedyWrap 按 wrap 策略贪心折行：
//   - nowrap：仅按显式换行划分
//   - break-word：忽略空白机会，纯按宽度切分
//   - anywhere（默认）：优先在空白处分割，超过限制时在词内拆分
func greedyWrap(content string, width float64, measure widthFunc, wrap string) []layout.TextLine {
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	}
	switch wrap {
	case "nowrap":
		parts := strings.Split(content, "\n")
		lines := make([]layout.TextLine, 0, len(parts))
		for _, p := range parts {
			lines = append(lines, layout.TextLine{Content: p, Width: measure(p)})
		}
		return lines
	case "break-word":
		b := newLineBuilder(limit, measure)
		for _, r := range content {
			switch r {
			case '\r':
				continue
			case '\n':
				b.emit(true)
				continue
			}
			b.add(string(r))
		}
		b.emit(true)
		return b.lines
	}

	b := newLineBuilder(limit, measure)
	for _, token := range tokenize(content) {
		if token == "\n" {
			b.emit(true)
			continue
		}
		if measure(token) <= limit {
			b.add(token)
			continue
		}
		for _, chunk := range splitTokenByWidth(token, limit, measure) {
			b.add(chunk)
		}
	}
	b.emit(true)
	return b.lines
}

type lineBuilder struct {
	limit   float64
	measure widthFunc
	lines   []layout.TextLine
	buf     strings.Builder
	width   float64
}

func newLineBuilder(limit float64, measure widthFunc) *lineBuilder {
	return &lineBuilder{limit: limit, measure: measure}
}

// add 追加一段文本；放不下时先换行。换行处的前导空白被丢弃。
func (b *lineBuilder) add(s string) {
	w := b.measure(s)
	if b.width > 0 && b.width+w > b.limit {
		b.emit(false)
		if strings.TrimSpace(s) == "" {
			return
		}
	}
	b.buf.WriteString(s)
	b.width += w
	if b.width > b.limit {
		b.emit(false)
	}
}

// emit 结束当前行；force 为 true 时即使为空也输出一行（显式换行）。
func (b *lineBuilder) emit(force bool) {
	if b.buf.Len() == 0 {
		if force {
			b.lines = append(b.lines, layout.TextLine{})
		}
		return
	}
	s := strings.TrimRightFunc(b.buf.String(), unicode.IsSpace)
	b.lines = append(b.lines, layout.TextLine{Content: s, Width: b.measure(s)})
	b.buf.Reset()
	b.width = 0
}

func tokenize(s string) []string {
	var tokens []string
	var builder strings.Builder
	lastWasSpace := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		tokens = append(tokens, builder.String())
		builder.Reset()
	}
	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			lastWasSpace = false
			continue
		}
		isSpace := unicode.IsSpace(r)
		if builder.Len() == 0 {
			lastWasSpace = isSpace
		} else if lastWasSpace != isSpace {
			flush()
			lastWasSpace = isSpace
		}
		builder.WriteRune(r)
	}
	flush()
	return tokens
}

func splitTokenByWidth(token string, limit float64, measure widthFunc) []string {
	if limit <= 0 || limit == math.MaxFloat64 {
		return []string{token}
	}
	var parts []string
	var current []rune
	for _, r := range token {
		current = append(current, r)
		if len(current) > 1 && measure(string(current)) > limit {
			parts = append(parts, string(current[:len(current)-1]))
			current = current[len(current)-1:]
		}
	}
	if len(current) > 0 {
		parts = append(parts, string(current))
	}
	return parts
}

// ellipsize 让 line 加上省略符后不超过 width：从末尾逐字删除，并去掉省略符前的空白。
func ellipsize(line string, width float64, ellipsis string, measure widthFunc) string {
	if ellipsis == "" {
		ellipsis = "…"
	}
	runes := []rune(strings.TrimRightFunc(line, unicode.IsSpace))
	for len(runes) > 0 {
		s := strings.TrimRightFunc(string(runes), unicode.IsSpace)
		if width <= 0 || measure(s+ellipsis) <= width {
			return s + ellipsis
		}
		runes = runes[:len(runes)-1]
	}
	return ellipsis
}
