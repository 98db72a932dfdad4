package layout

import (
	"math"
	"strconv"
	"strings"
)

// 布局内部统一使用毫米；截断宿主使用 CSS 像素（96 dpi）。

// Unit is the unit a length was written in.
type Unit int

const (
	UnitNone Unit = iota
	UnitMM
	UnitCM
	UnitIN
	UnitPT
	UnitPX
)

// Conversion constants.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
	PxToMm = 25.4 / 96
	MmToPx = 1.0 / PxToMm
)

var unitSuffixes = []struct {
	suffix string
	unit   Unit
	mm     float64
}{
	{"mm", UnitMM, 1},
	{"cm", UnitCM, 10},
	{"in", UnitIN, 25.4},
	{"pt", UnitPT, PtToMm},
	{"px", UnitPX, PxToMm},
}

func (u Unit) String() string {
	for _, s := range unitSuffixes {
		if s.unit == u {
			return s.suffix
		}
	}
	return ""
}

// Length 保留数值与原始单位。
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// ToMM converts to millimeters; unit-less values are taken as millimeters.
func (l Length) ToMM() float64 {
	for _, s := range unitSuffixes {
		if s.unit == l.Unit {
			return l.Value * s.mm
		}
	}
	return l.Value
}

func (l Length) ToPT() float64 { return l.ToMM() * MmToPt }
func (l Length) ToPX() float64 { return l.ToMM() * MmToPx }

// ParseLength 解析带单位的长度；ok 为 false 表示数值部分无法解析。
func ParseLength(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := UnitNone
	for _, s := range unitSuffixes {
		if strings.HasSuffix(v, s.suffix) {
			unit = s.unit
			v = strings.TrimSpace(strings.TrimSuffix(v, s.suffix))
			break
		}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}

// parseMM 解析长度并换算为毫米，失败时返回 0。
func parseMM(value string) float64 {
	l, ok := ParseLength(value)
	if !ok {
		return 0
	}
	return l.ToMM()
}

// parseDimension 支持百分比（相对 reference）与绝对长度。
func parseDimension(value string, reference float64) float64 {
	v := strings.TrimSpace(value)
	if strings.HasSuffix(v, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
		if err != nil {
			return 0
		}
		return reference * f / 100
	}
	return parseMM(v)
}

// LineHeightKind distinguishes how a line height was written.
type LineHeightKind int

const (
	LineHeightNormal LineHeightKind = iota
	LineHeightFactor
	LineHeightAbsolute
)

// normalLineHeight 与浏览器 normal 的近似保持一致。
const normalLineHeight = 1.2

// LineHeightSpec 保留作者写法：normal、倍数（1.4x）或绝对长度（18pt）。
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// ParseLineHeight reads "normal", "1.4x", a bare factor or a length.
func ParseLineHeight(value string) LineHeightSpec {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" || v == "normal" {
		return LineHeightSpec{Kind: LineHeightNormal}
	}
	if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "x"), 64); err == nil && f > 0 {
		return LineHeightSpec{Kind: LineHeightFactor, Factor: f}
	}
	if l, ok := ParseLength(v); ok && l.Value > 0 {
		return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}
	}
	return LineHeightSpec{Kind: LineHeightNormal}
}

// ResolveMM 返回以毫米计的行高。
func (s LineHeightSpec) ResolveMM(fontSizeMM float64) float64 {
	switch s.Kind {
	case LineHeightFactor:
		return fontSizeMM * s.Factor
	case LineHeightAbsolute:
		return s.Len.ToMM()
	default:
		return fontSizeMM * normalLineHeight
	}
}

// snapToPixels 把毫米长度向下对齐到整数像素，使按行计算的预算与实际排版一致。
// 容差吸收 pt→mm 换算常数的截断误差。
func snapToPixels(mm float64) float64 {
	px := math.Floor(mm*MmToPx + 1e-3)
	if px < 1 {
		px = 1
	}
	return px * PxToMm
}
