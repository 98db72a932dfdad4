package clamp

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const foxText = "The quick brown fox jumps. Over the lazy dog."

func TestClampSentenceThenWordThenCharacter(t *testing.T) {
	host := newCharHost(20)
	el := textContainer(foxText)

	var steps []Step
	res := Clamp(context.Background(), el, host, Options{
		Clamp:          Lines(1),
		UseNativeClamp: Bool(false),
		OnStep:         func(s Step) { steps = append(steps, s) },
	})

	require.NotNil(t, res.Clamped)
	assert.Equal(t, foxText, res.Original)
	assert.Equal(t, "The quick brown fox…", *res.Clamped)
	assert.Equal(t, 1, res.MaxLines)
	assert.Equal(t, 20.0, res.MaxHeight)
	assert.LessOrEqual(t, host.RenderedHeight(el), res.MaxHeight)

	require.NotEmpty(t, steps)
	assert.Equal(t, ".", steps[0].Delimiter)
	assert.Equal(t, res.Steps, len(steps))
}

func TestClampCascadeReachesCharactersOnlyAfterWords(t *testing.T) {
	host := newCharHost(20)
	el := textContainer(foxText)

	var steps []Step
	Clamp(context.Background(), el, host, Options{
		Clamp:          Lines(1),
		UseNativeClamp: Bool(false),
		OnStep:         func(s Step) { steps = append(steps, s) },
	})

	var firstFit *Step
	for i := range steps {
		if steps[i].Fits {
			firstFit = &steps[i]
			break
		}
	}
	require.NotNil(t, firstFit)
	assert.Equal(t, " ", firstFit.Delimiter)

	seenChars := false
	for _, s := range steps {
		if s.Delimiter == "" {
			seenChars = true
			continue
		}
		assert.False(t, seenChars, "coarser delimiter %q used after character mode", s.Delimiter)
	}
	assert.True(t, seenChars)
}

func TestClampCandidatesShrink(t *testing.T) {
	host := newCharHost(12)
	el := textContainer(foxText)

	var steps []Step
	Clamp(context.Background(), el, host, Options{
		Clamp:          Lines(2),
		UseNativeClamp: Bool(false),
		OnStep:         func(s Step) { steps = append(steps, s) },
	})

	last := utf8.RuneCountInString(foxText) + 1
	for _, s := range steps {
		body := strings.TrimSuffix(s.Content, DefaultTruncationChar)
		assert.True(t, strings.HasPrefix(foxText, body), "step %d is not a prefix: %q", s.Index, s.Content)
		if s.Fits {
			continue
		}
		n := utf8.RuneCountInString(s.Content)
		assert.Less(t, n, last)
		last = n
	}
}

func TestClampAlreadyFittingIsUnchanged(t *testing.T) {
	host := newCharHost(80)
	el := textContainer(foxText)

	res := Clamp(context.Background(), el, host, Options{Clamp: Lines(2), UseNativeClamp: Bool(false)})
	require.NotNil(t, res.Clamped)
	assert.Equal(t, foxText, *res.Clamped)
	assert.Zero(t, res.Steps)
	assert.Zero(t, host.measured-1)
}

func TestClampIsIdempotent(t *testing.T) {
	host := newCharHost(20)
	el := textContainer(foxText)
	opts := Options{Clamp: Lines(1), UseNativeClamp: Bool(false)}

	first := Clamp(context.Background(), el, host, opts)
	second := Clamp(context.Background(), el, host, opts)

	assert.Equal(t, first.ClampedText(), second.Original)
	assert.Equal(t, second.Original, second.ClampedText())
	assert.Zero(t, second.Steps)
}

func TestClampWalksBackThroughNodes(t *testing.T) {
	host := newCharHost(10)
	el := NewContainer("div")
	el.AppendChild(NewText("Alpha beta. "))
	span := NewContainer("span")
	span.AppendChild(NewText("gamma delta epsilon"))
	el.AppendChild(span)

	res := Clamp(context.Background(), el, host, Options{Clamp: Lines(1), UseNativeClamp: Bool(false)})

	assert.Equal(t, "Alpha bet…", res.ClampedText())
	assert.Nil(t, span.Parent, "exhausted span should be removed")
	assert.LessOrEqual(t, host.RenderedHeight(el), res.MaxHeight)
}

func TestClampRichMarker(t *testing.T) {
	host := newCharHost(20)
	el := textContainer(foxText)

	res := Clamp(context.Background(), el, host, Options{
		Clamp:          Lines(1),
		UseNativeClamp: Bool(false),
		TruncationHTML: `<a href="#">more</a>`,
	})

	out := res.ClampedText()
	assert.Equal(t, `The quick brown <a href="#">more</a>`, out)
	assert.NotContains(t, out, DefaultTruncationChar)
	assert.LessOrEqual(t, host.RenderedHeight(el), res.MaxHeight)
}

func TestClampCustomTruncationChar(t *testing.T) {
	host := newCharHost(20)
	el := textContainer(foxText)

	res := Clamp(context.Background(), el, host, Options{
		Clamp:          Lines(1),
		UseNativeClamp: Bool(false),
		TruncationChar: "...",
		SplitOnChars:   []string{" "},
	})
	assert.Equal(t, "The quick brown f...", res.ClampedText())
}

func TestClampAutoWithZeroHeightIsNoop(t *testing.T) {
	host := newCharHost(20)
	host.override = true
	host.height = 0
	el := textContainer(foxText)

	res := Clamp(context.Background(), el, host, Options{Clamp: Auto(), UseNativeClamp: Bool(false)})
	assert.Zero(t, res.MaxLines)
	assert.Equal(t, foxText, res.ClampedText())
	assert.Equal(t, foxText, TextContent(el))
}

func TestClampHeightTargetSnapsToLines(t *testing.T) {
	host := newCharHost(20)
	el := textContainer(foxText)

	res := Clamp(context.Background(), el, host, Options{Clamp: Height(50), UseNativeClamp: Bool(false)})
	assert.Equal(t, 2, res.MaxLines)
	assert.Equal(t, 40.0, res.MaxHeight)
	assert.LessOrEqual(t, host.RenderedHeight(el), 40.0)
	assert.True(t, strings.HasSuffix(res.ClampedText(), DefaultTruncationChar))
}

func TestClampNativePath(t *testing.T) {
	host := &nativeHost{charHost: newCharHost(20), supported: true}
	el := textContainer(foxText)

	res := Clamp(context.Background(), el, host, Options{Clamp: Height(50)})
	assert.True(t, res.Native)
	assert.Nil(t, res.Clamped)
	assert.Equal(t, "", res.ClampedText())
	assert.Equal(t, foxText, TextContent(el), "native path must not mutate text")
	assert.Equal(t, 1, host.calls)
	assert.Equal(t, 2, host.lines)
	assert.Equal(t, 50.0, host.height)
}

func TestClampNativeDisabledOrUnsupported(t *testing.T) {
	el := textContainer(foxText)
	host := &nativeHost{charHost: newCharHost(20), supported: true}
	res := Clamp(context.Background(), el, host, Options{Clamp: Lines(1), UseNativeClamp: Bool(false)})
	assert.False(t, res.Native)
	assert.Zero(t, host.calls)
	assert.NotNil(t, res.Clamped)

	el = textContainer(foxText)
	host = &nativeHost{charHost: newCharHost(20), supported: false}
	res = Clamp(context.Background(), el, host, Options{Clamp: Lines(1)})
	assert.False(t, res.Native)
	assert.Equal(t, "The quick brown fox…", res.ClampedText())
}

func TestClampKeepsEllipsisInsideText(t *testing.T) {
	el := textContainer("Wait… then the quick brown fox jumps over")
	res := Clamp(context.Background(), el, newCharHost(20), Options{Clamp: Lines(1), UseNativeClamp: Bool(false)})
	assert.Equal(t, "Wait… then the quic…", res.ClampedText())
}

func TestClampAnimatedConvergesToSynchronousResult(t *testing.T) {
	sync := Clamp(context.Background(), textContainer(foxText), newCharHost(20), Options{
		Clamp: Lines(1), UseNativeClamp: Bool(false),
	})
	animated := Clamp(context.Background(), textContainer(foxText), newCharHost(20), Options{
		Clamp: Lines(1), UseNativeClamp: Bool(false), Animate: time.Millisecond,
	})
	assert.Equal(t, sync.ClampedText(), animated.ClampedText())
	assert.Equal(t, sync.Steps, animated.Steps)
}

func TestClampAnimatedStopsWhenContainerRemoved(t *testing.T) {
	root := NewContainer("body")
	el := textContainer(foxText)
	root.AppendChild(el)

	res := Clamp(context.Background(), el, newCharHost(20), Options{
		Clamp:          Lines(1),
		UseNativeClamp: Bool(false),
		Animate:        time.Millisecond,
		OnStep:         func(Step) { Detach(el) },
	})
	assert.Equal(t, 1, res.Steps)
	assert.Nil(t, el.Parent)
}

func TestClampAnimatedStopsWhenCanceledElsewhere(t *testing.T) {
	full := Clamp(context.Background(), textContainer(foxText), newCharHost(20), Options{
		Clamp: Lines(1), UseNativeClamp: Bool(false),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	root := NewContainer("body")
	el := textContainer(foxText)
	root.AppendChild(el)

	first := make(chan struct{}, 1)
	go func() {
		<-first
		cancel()
	}()
	res := Clamp(ctx, el, newCharHost(20), Options{
		Clamp:          Lines(1),
		UseNativeClamp: Bool(false),
		Animate:        time.Second,
		OnStep: func(Step) {
			select {
			case first <- struct{}{}:
			default:
			}
		},
	})
	assert.Less(t, res.Steps, full.Steps)
	assert.Same(t, root, el.Parent)
}

func TestClampCanceledContextLeavesContent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	el := textContainer(foxText)

	res := Clamp(ctx, el, newCharHost(20), Options{Clamp: Lines(1), UseNativeClamp: Bool(false)})
	assert.Equal(t, foxText, res.ClampedText())
	assert.Zero(t, res.Steps)
}

func TestClampDegenerateInput(t *testing.T) {
	res := Clamp(context.Background(), nil, newCharHost(20), Options{})
	assert.Equal(t, "", res.ClampedText())

	empty := NewContainer("p")
	res = Clamp(context.Background(), empty, newCharHost(20), Options{})
	assert.Equal(t, "", res.ClampedText())

	// 预算小于一行：所有节点耗尽后停在空内容上
	host := newCharHost(20)
	host.lineHeight = 20
	el := textContainer("abc def")
	e := NewEngine(el, host, Options{})
	out := e.Truncate(context.Background(), 5)
	assert.Equal(t, "", out)
	assert.Nil(t, el.FirstChild)
}

func TestEngineZeroBudgetIsNoop(t *testing.T) {
	el := textContainer(foxText)
	e := NewEngine(el, newCharHost(5), Options{})
	assert.Equal(t, foxText, e.Truncate(context.Background(), 0))
	assert.Zero(t, e.Steps())
}

func TestClampKeepsMarkupOfEarlierNodes(t *testing.T) {
	el, err := ParseFragment(`<b>Bold</b> and plain words that keep going`)
	require.NoError(t, err)

	res := Clamp(context.Background(), el, newCharHost(14), Options{Clamp: Lines(1), UseNativeClamp: Bool(false)})
	out := res.ClampedText()
	assert.True(t, strings.HasPrefix(out, "<b>Bold</b>"), out)
	assert.True(t, strings.HasSuffix(out, DefaultTruncationChar), out)
	assert.LessOrEqual(t, utf8.RuneCountInString(TextContent(el)), 14)
}
