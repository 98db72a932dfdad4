package layout

// 该文件定义布局结果与资源描述，供布局计算、渲染与调试输出共用。

// Result 保存布局后的页面与资源信息。
type Result struct {
	Pages     []Page       `json:"pages" yaml:"pages"`
	Resources ResourceSet  `json:"resources" yaml:"resources"`
	Meta      DocumentMeta `json:"meta" yaml:"meta"`
}

// ResourceSet 记录解析出的字体、颜色与样式定义。
type ResourceSet struct {
	Fonts  map[string]FontResource `json:"fonts" yaml:"fonts"`
	Colors map[string]Color        `json:"colors" yaml:"colors"`
	Styles map[string]Style        `json:"styles" yaml:"styles"`
}

// FontResource 描述字体资源，src 可以是文件路径或 embed:* 内置字体。
type FontResource struct {
	Name     string `json:"name" yaml:"name"`
	Src      string `json:"src" yaml:"src"`
	Style    string `json:"style,omitempty" yaml:"style,omitempty"`
	Family   string `json:"family" yaml:"family"` // 渲染器使用的 Family 名称
	Fallback string `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r" yaml:"r"`
	G int `json:"g" yaml:"g"`
	B int `json:"b" yaml:"b"`
}

// Page 记录页面尺寸、边距与最终可以直接渲染的元素（单位：mm）。
type Page struct {
	Width  float64   `json:"width" yaml:"width"`
	Height float64   `json:"height" yaml:"height"`
	Margin Margin    `json:"margin" yaml:"margin"`
	Texts  []TextBox `json:"texts" yaml:"texts"`
	Rects  []Rect    `json:"rects,omitempty" yaml:"rects,omitempty"`
}

// Margin 以毫米为单位。
type Margin struct {
	Top    float64 `json:"top" yaml:"top"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Left   float64 `json:"left" yaml:"left"`
}

// TextBox 表示一个已经排好坐标、完成截断的文本块。
type TextBox struct {
	Content    string     `json:"content" yaml:"content"`
	X          float64    `json:"x" yaml:"x"`
	Y          float64    `json:"y" yaml:"y"`
	Width      float64    `json:"width" yaml:"width"`
	LineHeight float64    `json:"lineHeight" yaml:"lineHeight"`
	Font       string     `json:"font" yaml:"font"`
	FontSize   float64    `json:"fontSize" yaml:"fontSize"`
	Color      Color      `json:"color" yaml:"color"`
	Lines      []TextLine `json:"lines" yaml:"lines"`
	Height     float64    `json:"height" yaml:"height"`
	Align      string     `json:"align,omitempty" yaml:"align,omitempty"` // left/center/right，默认 left
	Wrap       string     `json:"wrap,omitempty" yaml:"wrap,omitempty"`   // anywhere(默认)/break-word/nowrap
	Clamp      *ClampInfo `json:"clamp,omitempty" yaml:"clamp,omitempty"`
}

// ClampInfo 记录文本框的截断结果。
// LineClamp > 0 表示由渲染器原生截断：只绘制前 LineClamp 行，最后一行补省略符。
type ClampInfo struct {
	Target      string  `json:"target" yaml:"target"`
	Original    string  `json:"original" yaml:"original"`
	Clamped     string  `json:"clamped,omitempty" yaml:"clamped,omitempty"`
	MaxLines    int     `json:"maxLines" yaml:"maxLines"`
	MaxHeight   float64 `json:"maxHeight" yaml:"maxHeight"` // mm
	Steps       int     `json:"steps,omitempty" yaml:"steps,omitempty"`
	Native      bool    `json:"native,omitempty" yaml:"native,omitempty"`
	LineClamp   int     `json:"lineClamp,omitempty" yaml:"lineClamp,omitempty"`
	FixedHeight float64 `json:"fixedHeight,omitempty" yaml:"fixedHeight,omitempty"` // mm
	Ellipsis    string  `json:"ellipsis,omitempty" yaml:"ellipsis,omitempty"`
}

// Truncated reports whether the engine changed the content.
func (c *ClampInfo) Truncated() bool {
	return c != nil && !c.Native && c.Clamped != c.Original
}

// TextLine 表示排版后的一行文本内容及其宽高。
type TextLine struct {
	Content   string  `json:"content" yaml:"content"`
	Width     float64 `json:"width" yaml:"width"`
	Height    float64 `json:"height" yaml:"height"`
	GapBefore float64 `json:"gapBefore,omitempty" yaml:"gapBefore,omitempty"`
}

// Rect 表示文本框外框（不包含圆角）。
type Rect struct {
	X           float64 `json:"x" yaml:"x"`
	Y           float64 `json:"y" yaml:"y"`
	Width       float64 `json:"width" yaml:"width"`
	Height      float64 `json:"height" yaml:"height"`
	StrokeColor Color   `json:"strokeColor" yaml:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth" yaml:"strokeWidth"`                 // mm
	FillColor   *Color  `json:"fillColor,omitempty" yaml:"fillColor,omitempty"` // 为空表示不填充
}

// Style 用于描述可继承的文本样式。
type Style struct {
	Name    string            `json:"name" yaml:"name"`
	Extends string            `json:"extends,omitempty" yaml:"extends,omitempty"`
	Props   map[string]string `json:"props" yaml:"props"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title" yaml:"title"`
	Author   string   `json:"author" yaml:"author"`
	Subject  string   `json:"subject" yaml:"subject"`
	Creator  string   `json:"creator" yaml:"creator"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}
