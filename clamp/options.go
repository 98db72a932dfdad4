package clamp

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Defaults mirror the behaviour of the classic clamp helpers.
const (
	DefaultLines          = 2
	DefaultTruncationChar = "…"
	// DefaultAnimateDelay is used when animation is requested without an
	// explicit interval.
	DefaultAnimateDelay = 10 * time.Millisecond
)

// DefaultSplitOnChars 依次为句号、连字符、短破折号、长破折号与空格。
var DefaultSplitOnChars = []string{".", "-", "–", "—", " "}

// ErrInvalidTarget is returned by ParseTarget for values it cannot read.
var ErrInvalidTarget = errors.New("clamp: invalid clamp target")

// TargetKind 区分行数、自动与高度三种截断目标。
type TargetKind int

const (
	TargetLines TargetKind = iota
	TargetAuto
	TargetHeight
)

// HeightUnit is the unit of a height target.
type HeightUnit int

const (
	UnitPX HeightUnit = iota // 宿主单位
	UnitEM                   // 乘以计算字号
)

// Target 描述截断目标。零值表示默认的 2 行。
type Target struct {
	Kind   TargetKind
	Lines  int
	Height float64
	Unit   HeightUnit
}

// Lines returns a line-count target.
func Lines(n int) Target { return Target{Kind: TargetLines, Lines: n} }

// Auto returns a target that keeps as many whole lines as fit the
// element's current rendered height.
func Auto() Target { return Target{Kind: TargetAuto} }

// Height returns a height target in host units.
func Height(h float64) Target { return Target{Kind: TargetHeight, Height: h, Unit: UnitPX} }

// EM returns a height target expressed in multiples of the font size.
func EM(h float64) Target { return Target{Kind: TargetHeight, Height: h, Unit: UnitEM} }

func (t Target) String() string {
	switch t.Kind {
	case TargetAuto:
		return "auto"
	case TargetHeight:
		unit := "px"
		if t.Unit == UnitEM {
			unit = "em"
		}
		return strconv.FormatFloat(t.Height, 'f', -1, 64) + unit
	default:
		return strconv.Itoa(t.Lines)
	}
}

// ParseTarget 解析 "3"、"auto"、"120px"、"2.5em" 形式的目标。
func ParseTarget(value string) (Target, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case v == "":
		return Lines(DefaultLines), nil
	case v == "auto":
		return Auto(), nil
	case strings.HasSuffix(v, "px"), strings.HasSuffix(v, "em"):
		num := strings.TrimSpace(v[:len(v)-2])
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return Target{}, fmt.Errorf("%w: %q", ErrInvalidTarget, value)
		}
		if strings.HasSuffix(v, "em") {
			return EM(f), nil
		}
		return Height(f), nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return Target{}, fmt.Errorf("%w: %q", ErrInvalidTarget, value)
	}
	return Lines(n), nil
}

// Options 控制一次截断。零值字段取默认值。
type Options struct {
	Clamp Target
	// UseNativeClamp 为 nil 时视为 true。
	UseNativeClamp *bool
	// Animate > 0 时每一步之间等待该时长。等待期间可取消 ctx 中止；
	// 容器是否已 Detach 只在 Clamp 自身的 goroutine 上检查，见 Detach。
	Animate        time.Duration
	SplitOnChars   []string
	TruncationChar string
	// TruncationHTML 为富文本标记，替代纯省略符出现在截断处。
	TruncationHTML string

	Logger *slog.Logger
	// OnStep is called after every measured edit.
	OnStep func(Step)
}

// Step 是一次编辑后的快照。
type Step struct {
	Index     int
	Delimiter string
	Content   string
	Height    float64
	Fits      bool
}

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// NativeEnabled reports whether the native fast path may be used.
func (o Options) NativeEnabled() bool {
	return o.UseNativeClamp == nil || *o.UseNativeClamp
}

func (o Options) withDefaults() Options {
	if o.Clamp.Kind == TargetLines && o.Clamp.Lines == 0 {
		o.Clamp.Lines = DefaultLines
	}
	if o.SplitOnChars == nil {
		o.SplitOnChars = DefaultSplitOnChars
	}
	if o.TruncationChar == "" {
		o.TruncationChar = DefaultTruncationChar
	}
	if o.Animate < 0 {
		o.Animate = 0
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}
