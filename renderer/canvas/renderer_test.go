package canvasrenderer

import (
	"math"
	"strings"
	"testing"

	"github.com/ByLCY/papyrus-clamp/layout"
)

func TestLayoutLinesGreedyWrapsText(t *testing.T) {
	r := NewRenderer(".")
	font := layout.FontResource{
		Name: "Body",
		Src:  "embed:lmroman10-regular",
	}

	// 这里的宽度/字号/行高均为 mm
	fontSizeMM := 12 * layout.PtToMm
	lineHeightMM := fontSizeMM * 1.2

	lines, err := r.LayoutLines("hello world again", 10, font, fontSizeMM, lineHeightMM, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected wrapping into multiple lines, got %d", len(lines))
	}
}

func TestGreedyWrapHonorsNewlines(t *testing.T) {
	r := NewRenderer(".")
	font := layout.FontResource{
		Name: "Body",
		Src:  "embed:lmroman10-regular",
	}

	fontSizeMM := 12 * layout.PtToMm
	lineHeightMM := fontSizeMM * 1.2

	lines, err := r.LayoutLines("foo\n\nbar", 100, font, fontSizeMM, lineHeightMM, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines including blank, got %d", len(lines))
	}
	if lines[1].Content != "" {
		t.Fatalf("expected middle line to be blank, got %q", lines[1].Content)
	}
}

// TestLineHeightsInvariant 验证：
// 1) 首行 GapBefore == 0；
// 2) 其余行 GapBefore ≈ max(lineHeight - textHeight, 0)；
// 3) 各行的 Height 与 textHeight 一致（渲染器会用字体度量回填）。
func TestLineHeightsInvariant(t *testing.T) {
	r := NewRenderer(".")
	font := layout.FontResource{
		Name: "Body",
		Src:  "embed:lmroman10-regular",
	}
	fontSizeMM := 12 * layout.PtToMm
	lineHeightMM := fontSizeMM * 1.3

	content := "longlonglong longlonglong longlonglong longlonglong longlonglong"
	lines, err := r.LayoutLines(content, 40, font, fontSizeMM, lineHeightMM, "")
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected multiple lines for invariant test, got %d", len(lines))
	}

	// textHeight 以第一行 Height 为准
	textHeight := lines[0].Height
	if textHeight <= 0 {
		t.Fatalf("invalid text height: %g", textHeight)
	}
	wantLeading := math.Max(lineHeightMM-textHeight, 0)

	if lines[0].GapBefore != 0 {
		t.Fatalf("first line GapBefore must be 0, got %g", lines[0].GapBefore)
	}
	const eps = 1e-6
	for i := 1; i < len(lines); i++ {
		if diff := math.Abs(lines[i].GapBefore - wantLeading); diff > eps {
			t.Fatalf("line %d GapBefore mismatch: got=%g want=%g diff=%g", i, lines[i].GapBefore, wantLeading, diff)
		}
		if diff := math.Abs(lines[i].Height - textHeight); diff > eps {
			t.Fatalf("line %d Height mismatch: got=%g want=%g diff=%g", i, lines[i].Height, textHeight, diff)
		}
	}
}

// TestGreedyWrapWidthLimit 验证每行宽度不超过限制（mm）。
func TestGreedyWrapWidthLimit(t *testing.T) {
	r := NewRenderer(".")
	font := layout.FontResource{Src: "embed:lmroman10-regular"}
	fontSizeMM := 12 * layout.PtToMm
	lineHeightMM := fontSizeMM * 1.2

	limit := 30.0 // mm
	content := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	lines, err := r.LayoutLines(content, limit, font, fontSizeMM, lineHeightMM, "")
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	if len(lines) == 0 {
		t.Fatalf("expected at least one line")
	}
	for i, ln := range lines {
		if ln.Width-limit > 1e-6 { // 允许极小的数值误差
			t.Fatalf("line %d width exceeds limit: width=%g limit=%g", i, ln.Width, limit)
		}
	}
}

// 缓存命中时返回的切片必须是副本，布局会就地修改行坐标。
func TestLayoutLinesCacheReturnsCopy(t *testing.T) {
	r := NewRendererWithOptions(Options{BaseDir: ".", CacheSize: 8})
	font := layout.FontResource{Src: "embed:lmroman10-regular"}
	fontSizeMM := 12 * layout.PtToMm

	first, err := r.LayoutLines("hello world", 100, font, fontSizeMM, fontSizeMM*1.2, "")
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	first[0].Content = "mutated"
	second, err := r.LayoutLines("hello world", 100, font, fontSizeMM, fontSizeMM*1.2, "")
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	if second[0].Content != "hello world" {
		t.Fatalf("cached lines were mutated: %q", second[0].Content)
	}
	if r.lines.Len() != 1 {
		t.Fatalf("expected one cache entry, got %d", r.lines.Len())
	}
}

func TestSupportsLineClamp(t *testing.T) {
	if NewRenderer(".").SupportsLineClamp() {
		t.Fatalf("line clamp must be opt-in")
	}
	if !NewRendererWithOptions(Options{LineClamp: true}).SupportsLineClamp() {
		t.Fatalf("expected line clamp support when enabled")
	}
}

func TestMissingFontFallsBackToDefault(t *testing.T) {
	r := NewRenderer(".")
	font := layout.FontResource{Name: "Missing", Src: "embed:no-such-font"}
	lines, err := r.LayoutLines("fallback", 100, font, 4, 5, "")
	if err != nil {
		t.Fatalf("expected fallback font, got %v", err)
	}
	if len(lines) != 1 || lines[0].Width <= 0 {
		t.Fatalf("unexpected lines: %+v", lines)
	}
}

func TestRenderProducesPDF(t *testing.T) {
	r := NewRendererWithOptions(Options{LineClamp: true})
	fontSizeMM := 12 * layout.PtToMm
	res := &layout.Result{
		Meta: layout.DocumentMeta{Title: "clamp", Creator: "Papyrus Clamp"},
		Resources: layout.ResourceSet{
			Fonts: map[string]layout.FontResource{"Body": {Name: "Body", Src: "embed:lmroman10-regular"}},
		},
		Pages: []layout.Page{{
			Width:  105,
			Height: 148,
			Texts: []layout.TextBox{{
				Content:    "The quick brown fox jumps over the lazy dog",
				X:          10,
				Y:          10,
				Width:      40,
				Font:       "Body",
				FontSize:   fontSizeMM,
				LineHeight: fontSizeMM * 1.2,
				Lines: []layout.TextLine{
					{Content: "The quick brown", Height: fontSizeMM},
					{Content: "fox jumps over the", Height: fontSizeMM},
					{Content: "lazy dog", Height: fontSizeMM},
				},
				Clamp: &layout.ClampInfo{Native: true, LineClamp: 2},
			}},
			Rects: []layout.Rect{{X: 8, Y: 8, Width: 44, Height: 20}},
		}},
	}
	data, err := r.Render(res)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Fatalf("expected PDF output, got %q", string(data[:min(len(data), 8)]))
	}
}

func TestRenderRejectsEmptyResult(t *testing.T) {
	r := NewRenderer(".")
	if _, err := r.Render(nil); err == nil {
		t.Fatalf("expected error for nil result")
	}
	if _, err := r.Render(&layout.Result{}); err == nil {
		t.Fatalf("expected error for result without pages")
	}
}
