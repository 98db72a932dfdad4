package clamp

import (
	"math"

	"golang.org/x/net/html"
)

// normalLineHeightFactor 近似 CSS line-height: normal。
const normalLineHeightFactor = 1.2

// Metrics 根据元素行高在行数与高度之间换算。
type Metrics struct {
	host Host
	el   *html.Node
}

// NewMetrics binds line metrics to an element.
func NewMetrics(host Host, el *html.Node) Metrics {
	return Metrics{host: host, el: el}
}

// LineHeight 返回取整后的行高；未设置时取 floor(floor(字号)*1.2)。
func (m Metrics) LineHeight() float64 {
	st := m.host.ComputedStyle(m.el)
	lh := st.LineHeight
	if lh <= 0 {
		lh = math.Floor(st.FontSize) * normalLineHeightFactor
	}
	return math.Floor(lh)
}

// MaxLines returns how many whole lines fit in avail.
func (m Metrics) MaxLines(avail float64) int {
	lh := m.LineHeight()
	if avail <= 0 || lh <= 0 {
		return 0
	}
	return int(math.Max(math.Floor(avail/lh), 0))
}

// MaxHeight returns the pixel budget for lines lines.
func (m Metrics) MaxHeight(lines int) float64 {
	return m.LineHeight() * float64(lines)
}

// ResolveLines 把截断目标换算为整行数。高度目标向下取整到行边界。
func (m Metrics) ResolveLines(t Target) int {
	switch t.Kind {
	case TargetAuto:
		return m.MaxLines(m.host.RenderedHeight(m.el))
	case TargetHeight:
		return m.MaxLines(m.heightOf(t))
	default:
		if t.Lines < 0 {
			return 0
		}
		return t.Lines
	}
}

// heightOf returns a height target in host units.
func (m Metrics) heightOf(t Target) float64 {
	if t.Unit == UnitEM {
		return t.Height * m.host.ComputedStyle(m.el).FontSize
	}
	return t.Height
}
