package clamp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineHeightFloorsExplicitValue(t *testing.T) {
	host := newCharHost(10)
	host.lineHeight = 19.8
	m := NewMetrics(host, NewContainer("p"))
	assert.Equal(t, 19.0, m.LineHeight())
}

func TestLineHeightNormalUsesFontSize(t *testing.T) {
	host := newCharHost(10)
	host.lineHeight = 0
	host.fontSize = 16.7
	m := NewMetrics(host, NewContainer("p"))
	// floor(floor(16.7) * 1.2) = floor(19.2)
	assert.Equal(t, 19.0, m.LineHeight())
}

func TestMaxLines(t *testing.T) {
	m := NewMetrics(newCharHost(10), NewContainer("p"))
	assert.Equal(t, 2, m.MaxLines(59))
	assert.Equal(t, 3, m.MaxLines(60))
	assert.Equal(t, 0, m.MaxLines(0))
	assert.Equal(t, 0, m.MaxLines(-40))

	host := newCharHost(10)
	host.lineHeight = 0
	host.fontSize = 0
	assert.Equal(t, 0, NewMetrics(host, NewContainer("p")).MaxLines(100))
}

func TestResolveLines(t *testing.T) {
	host := newCharHost(10)
	host.override = true
	host.height = 85
	m := NewMetrics(host, NewContainer("p"))

	assert.Equal(t, 3, m.ResolveLines(Lines(3)))
	assert.Equal(t, 4, m.ResolveLines(Auto()))
	assert.Equal(t, 2, m.ResolveLines(Height(59)))
	// 2.5em * 16 = 40
	assert.Equal(t, 2, m.ResolveLines(EM(2.5)))
	assert.Equal(t, 0, m.ResolveLines(Lines(-1)))
	assert.Equal(t, 60.0, m.MaxHeight(3))
}

func TestParseTarget(t *testing.T) {
	cases := map[string]Target{
		"":      Lines(DefaultLines),
		"3":     Lines(3),
		"auto":  Auto(),
		" AUTO": Auto(),
		"120px": Height(120),
		"2.5em": EM(2.5),
	}
	for in, want := range cases {
		got, err := ParseTarget(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"abc", "-1", "px", "1.5"} {
		_, err := ParseTarget(bad)
		assert.True(t, errors.Is(err, ErrInvalidTarget), bad)
	}
}

func TestTargetString(t *testing.T) {
	assert.Equal(t, "2", Lines(2).String())
	assert.Equal(t, "auto", Auto().String())
	assert.Equal(t, "40px", Height(40).String())
	assert.Equal(t, "1.5em", EM(1.5).String())
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	assert.Equal(t, Lines(DefaultLines), o.Clamp)
	assert.Equal(t, DefaultSplitOnChars, o.SplitOnChars)
	assert.Equal(t, DefaultTruncationChar, o.TruncationChar)
	assert.True(t, o.NativeEnabled())
	assert.NotNil(t, o.Logger)

	assert.False(t, Options{UseNativeClamp: Bool(false)}.NativeEnabled())
}
