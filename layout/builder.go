package layout

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ByLCY/papyrus-clamp/binding"
	"github.com/ByLCY/papyrus-clamp/clamp"
	"github.com/ByLCY/papyrus-clamp/dsl"
)

const (
	blockSpacing      = 3.0
	defaultFontSize   = 12 * PtToMm
	defaultFrameWidth = 0.2
)

// Build 根据 DSL AST 生成页面与文本框。每个 box 在排版前先按其截断选项完成截断，
// 动画截断会在 ctx 上阻塞等待。
func Build(ctx context.Context, doc *dsl.Document, data any, opts BuildOptions) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	if opts.Typesetter == nil {
		return nil, fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}

	res, err := collectResources(doc)
	if err != nil {
		return nil, err
	}
	meta := collectMeta(doc)
	pageSection := firstPage(doc)
	if pageSection == nil {
		return nil, fmt.Errorf("文档中缺少 page 段落")
	}

	pages, err := buildPages(ctx, pageSection, res, data, opts)
	if err != nil {
		return nil, err
	}

	return &Result{
		Pages:     pages,
		Resources: res,
		Meta:      meta,
	}, nil
}

func buildPages(ctx context.Context, section *dsl.PageSection, res ResourceSet, data any, opts BuildOptions) ([]Page, error) {
	width, height, err := resolvePageSize(section)
	if err != nil {
		return nil, err
	}
	if section.Block == nil {
		return nil, fmt.Errorf("page 段落缺少内容")
	}

	margin := resolveMargin(section.Params)
	collector := newPageCollector(width, height, margin)
	root := &flowContext{
		ctx:       ctx,
		baseX:     margin.Left,
		width:     width - margin.Left - margin.Right,
		cursorY:   margin.Top,
		data:      data,
		opts:      opts,
		res:       res,
		collector: collector,
		textWrap:  "anywhere",
	}
	if err := processBlock(section.Block, root); err != nil {
		return nil, err
	}
	return collector.pages(), nil
}

// processBlock 依次处理 block 内的 flow、box 与 text 命令。
func processBlock(block *dsl.Block, fc *flowContext) error {
	for _, stmt := range block.Statements {
		if stmt.Command == nil {
			continue
		}
		cmd := stmt.Command
		switch cmd.Name {
		case "flow":
			if err := handleFlow(cmd, fc); err != nil {
				return err
			}
		case "box", "text":
			if err := handleBox(cmd, fc); err != nil {
				return err
			}
		default:
			// 其余命令暂未实现，忽略即可
			continue
		}
	}
	return nil
}

func normalizeWrap(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "break-word", "word-break:break-word":
		return "break-word"
	case "nowrap", "no-wrap":
		return "nowrap"
	default:
		return "anywhere"
	}
}

func normalizeAlign(v string) string {
	switch v = strings.ToLower(strings.TrimSpace(v)); v {
	case "start":
		return "left"
	case "end":
		return "right"
	case "left", "center", "right":
		return v
	default:
		return ""
	}
}

func handleFlow(cmd *dsl.Command, parent *flowContext) error {
	if cmd.Block == nil {
		return fmt.Errorf("flow 语句缺少子内容")
	}
	styleName, attrs := parseArgs(cmd.Args, false)
	attrs = mergeStyleAttributes(styleName, attrs, parent.res.Styles)
	width := parent.width
	if v := attrs["width"]; v != "" {
		if w := parseDimension(v, parent.width); w > 0 && w <= parent.width {
			width = w
		}
	}

	child := *parent
	child.baseX = parent.baseX + alignOffset(parent.width, width, attrs["align"])
	child.width = width
	if a := normalizeAlign(attrs["align"]); a != "" {
		child.textAlign = a
	}
	if v := strings.TrimSpace(attrs["wrap"]); v != "" {
		child.textWrap = normalizeWrap(v)
	}

	if err := processBlock(cmd.Block, &child); err != nil {
		return err
	}
	parent.cursorY = child.cursorY
	return nil
}

// handleBox 把 box/text 的内容构造成 html 容器，按截断选项截断后再排版。
// text 默认不截断，box 默认截断到 BuildOptions.Clamp 的目标。
func handleBox(cmd *dsl.Command, fc *flowContext) error {
	if cmd.Block == nil {
		return fmt.Errorf("%s 语句缺少文本块", cmd.Name)
	}
	styleName, attrs := parseArgs(cmd.Args, true)
	attrs = mergeStyleAttributes(styleName, attrs, fc.res.Styles)

	container := clamp.NewContainer("div")
	marker, err := buildContent(cmd.Block, container, fc.data)
	if err != nil {
		return fmt.Errorf("%s 第 %d 行: %w", cmd.Name, cmd.Pos.Line, err)
	}
	if clamp.TextContent(container) == "" {
		return fmt.Errorf("%s 语句缺少文本内容", cmd.Name)
	}

	width := fc.width
	if v := attrs["width"]; v != "" {
		if w := parseDimension(v, fc.width); w > 0 && w <= fc.width {
			width = w
		}
	}
	fontName := attrs["font"]
	if fontName == "" {
		fontName = "Body"
	}
	fontRes, err := resolveFontResource(fontName, fc.res)
	if err != nil {
		return err
	}
	fontSize := parseMM(attrs["size"])
	if fontSize <= 0 {
		fontSize = defaultFontSize
	}
	lineHeight := snapToPixels(ParseLineHeight(attrs["line-height"]).ResolveMM(fontSize))
	wrap := fc.textWrap
	if v := strings.TrimSpace(attrs["wrap"]); v != "" {
		wrap = normalizeWrap(v)
	}

	if cmd.Name == "text" {
		if _, ok := attrs["clamp"]; !ok {
			attrs["clamp"] = "none"
		}
	}
	copts, enabled, err := clampOptions(attrs, marker, fc.opts.Clamp)
	if err != nil {
		return fmt.Errorf("%s 第 %d 行截断参数错误: %w", cmd.Name, cmd.Pos.Line, err)
	}

	fc.collector.boxes++
	box := fc.collector.boxes
	var info *ClampInfo
	if enabled {
		if copts.Logger == nil {
			copts.Logger = fc.opts.logger().With("box", box)
		}
		host := &boxHost{
			ts:         fc.opts.Typesetter,
			font:       fontRes,
			fontSize:   fontSize,
			lineHeight: lineHeight,
			width:      width,
			wrap:       wrap,
		}
		r := clamp.Clamp(fc.ctx, container, host, copts)
		if host.err != nil {
			return fmt.Errorf("box 测量失败: %w", host.err)
		}
		info = &ClampInfo{
			Target:      copts.Clamp.String(),
			Original:    r.Original,
			Clamped:     r.ClampedText(),
			MaxLines:    r.MaxLines,
			MaxHeight:   r.MaxHeight * PxToMm,
			Steps:       r.Steps,
			Native:      r.Native,
			LineClamp:   host.lineClamp,
			FixedHeight: host.fixedHeight,
			Ellipsis:    copts.TruncationChar,
		}
		fc.opts.logger().Debug("box clamped",
			"box", box, "target", info.Target, "lines", r.MaxLines,
			"native", r.Native, "steps", r.Steps, "measured", host.measured)
	}

	content := clamp.TextContent(container)
	lines, err := layoutLines(content, width, fontRes, fontSize, lineHeight, fc.opts.Typesetter, wrap)
	if err != nil {
		return err
	}
	visible := len(lines)
	if info != nil && info.LineClamp > 0 && info.LineClamp < visible {
		visible = info.LineClamp
	}
	height := stackLines(lines, fontSize, lineHeight, visible)

	boxHeight := height
	if info != nil && info.FixedHeight > 0 {
		boxHeight = info.FixedHeight
	} else if h := parseMM(attrs["height"]); h > boxHeight {
		boxHeight = h
	}

	fc.ensureSpace(boxHeight)
	tb := TextBox{
		Content:    content,
		X:          fc.baseX,
		Y:          fc.cursorY,
		Width:      width,
		LineHeight: lineHeight,
		Font:       fontName,
		FontSize:   fontSize,
		Color:      resolveColor(attrs["color"], fc.res),
		Lines:      lines,
		Height:     height,
		Align:      normalizeAlign(attrs["align"]),
		Wrap:       wrap,
		Clamp:      info,
	}
	if tb.Align == "" {
		tb.Align = fc.textAlign
	}
	acc := fc.collector.curr()
	acc.texts = append(acc.texts, tb)
	if rc, ok := frameRect(attrs, tb, boxHeight, fc.res); ok {
		acc.rects = append(acc.rects, rc)
	}
	fc.cursorY += boxHeight + blockSpacing
	return nil
}

// inlineTags 是 box 内允许出现的行内元素。
var inlineTags = map[atom.Atom]bool{
	atom.Span:   true,
	atom.Em:     true,
	atom.Strong: true,
	atom.B:      true,
	atom.I:      true,
	atom.A:      true,
	atom.Code:   true,
	atom.Small:  true,
}

// buildContent 把 DSL 块转换为 html 子树，返回 marker 块序列化后的 HTML。
func buildContent(block *dsl.Block, parent *html.Node, data any) (string, error) {
	marker := ""
	for _, stmt := range block.Statements {
		switch {
		case stmt.Text != nil:
			parent.AppendChild(clamp.NewText(binding.Interpolate(string(stmt.Text.Value), data)))
		case stmt.Command != nil:
			cmd := stmt.Command
			name := strings.ToLower(cmd.Name)
			switch name {
			case "marker":
				m := clamp.NewContainer("span")
				if cmd.Block != nil {
					if _, err := buildContent(cmd.Block, m, data); err != nil {
						return "", err
					}
				}
				marker = clamp.InnerHTML(m)
				continue
			case "br":
				parent.AppendChild(clamp.NewText("\n"))
				continue
			}
			if !inlineTags[atom.Lookup([]byte(name))] {
				return "", fmt.Errorf("不支持的行内元素：%s", cmd.Name)
			}
			el := clamp.NewContainer(name)
			_, attrs := parseArgs(cmd.Args, false)
			for _, key := range []string{"href", "class", "title"} {
				if v, ok := attrs[key]; ok {
					el.Attr = append(el.Attr, html.Attribute{Key: key, Val: v})
				}
			}
			if cmd.Block != nil {
				inner, err := buildContent(cmd.Block, el, data)
				if err != nil {
					return "", err
				}
				if inner != "" {
					marker = inner
				}
			}
			parent.AppendChild(el)
		}
	}
	return marker, nil
}

// clampOptions 合并默认值与 box 属性：clamp、native、animate、split、ellipsis、marker。
// 返回的 bool 为 false 表示 clamp none，不做截断。
func clampOptions(attrs map[string]string, marker string, base clamp.Options) (clamp.Options, bool, error) {
	o := base
	if v := strings.TrimSpace(attrs["clamp"]); v != "" {
		if strings.EqualFold(v, "none") {
			return o, false, nil
		}
		t, err := ParseClampTarget(v)
		if err != nil {
			return o, false, err
		}
		o.Clamp = t
	}
	// auto 且声明了固定高度时，按该高度截断
	if o.Clamp.Kind == clamp.TargetAuto {
		if h := parseMM(attrs["height"]); h > 0 {
			o.Clamp = clamp.Height(h * MmToPx)
		}
	}
	if v := strings.TrimSpace(attrs["native"]); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return o, false, fmt.Errorf("native 取值无效：%s", v)
		}
		o.UseNativeClamp = clamp.Bool(b)
	}
	if v := strings.TrimSpace(attrs["animate"]); v != "" {
		d, err := ParseAnimate(v)
		if err != nil {
			return o, false, err
		}
		o.Animate = d
	}
	if v, ok := attrs["split"]; ok {
		o.SplitOnChars = ParseSplit(v)
	}
	if v := attrs["ellipsis"]; v != "" {
		o.TruncationChar = v
	}
	if marker != "" {
		o.TruncationHTML = marker
	} else if v := attrs["marker"]; v != "" {
		o.TruncationHTML = v
	}
	return o, true, nil
}

// ParseClampTarget 在 clamp.ParseTarget 的基础上接受 mm/cm/in/pt 高度。
func ParseClampTarget(v string) (clamp.Target, error) {
	if l, ok := ParseLength(v); ok && l.Unit != UnitNone && l.Unit != UnitPX {
		return clamp.Height(l.ToPX()), nil
	}
	return clamp.ParseTarget(v)
}

// ParseAnimate 解析动画间隔：true/on 使用默认间隔，空值、false/off 关闭，其余按 time.Duration 解析。
func ParseAnimate(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	switch strings.ToLower(v) {
	case "true", "on":
		return clamp.DefaultAnimateDelay, nil
	case "", "false", "off":
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("animate 取值无效：%s", v)
	}
	return d, nil
}

// ParseSplit 解析以空白分隔的分隔符列表，space 表示空格本身，顺序即优先级。
func ParseSplit(v string) []string {
	fields := strings.Fields(v)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if strings.EqualFold(f, "space") {
			f = " "
		}
		out = append(out, f)
	}
	return out
}

// stackLines 回填行间距并返回前 visible 行的总高度。
func stackLines(lines []TextLine, fontSize, lineHeight float64, visible int) float64 {
	leading := math.Max(lineHeight-fontSize, 0)
	total := 0.0
	for i := range lines {
		if lines[i].Height <= 0 {
			lines[i].Height = fontSize
		}
		if i == 0 {
			lines[i].GapBefore = 0
		} else if lines[i].GapBefore <= 0 {
			lines[i].GapBefore = leading
		}
		if i < visible {
			total += lines[i].GapBefore + lines[i].Height
		}
	}
	return total
}

func frameRect(attrs map[string]string, tb TextBox, height float64, res ResourceSet) (Rect, bool) {
	v := strings.TrimSpace(attrs["frame"])
	if v == "" || strings.EqualFold(v, "false") || strings.EqualFold(v, "none") {
		return Rect{}, false
	}
	rc := Rect{
		X:           tb.X,
		Y:           tb.Y,
		Width:       tb.Width,
		Height:      height,
		StrokeColor: Color{R: 200, G: 200, B: 200},
		StrokeWidth: defaultFrameWidth,
	}
	if !strings.EqualFold(v, "true") {
		rc.StrokeColor = resolveColor(v, res)
	}
	if w := parseMM(attrs["frame-width"]); w > 0 {
		rc.StrokeWidth = w
	}
	if f := attrs["fill"]; f != "" {
		c := resolveColor(f, res)
		rc.FillColor = &c
	}
	return rc, true
}

type pageAccumulator struct {
	texts []TextBox
	rects []Rect
}

func (p *pageAccumulator) empty() bool {
	return len(p.texts) == 0 && len(p.rects) == 0
}

type pageCollector struct {
	width   float64
	height  float64
	margin  Margin
	accs    []*pageAccumulator
	current int
	boxes   int
}

func newPageCollector(width, height float64, margin Margin) *pageCollector {
	pc := &pageCollector{
		width:  width,
		height: height,
		margin: margin,
	}
	pc.newPage()
	return pc
}

func (pc *pageCollector) newPage() *pageAccumulator {
	acc := &pageAccumulator{}
	pc.accs = append(pc.accs, acc)
	pc.current = len(pc.accs) - 1
	return acc
}

func (pc *pageCollector) curr() *pageAccumulator {
	if len(pc.accs) == 0 {
		return pc.newPage()
	}
	return pc.accs[pc.current]
}

func (pc *pageCollector) contentBottom() float64 {
	return pc.height - pc.margin.Bottom
}

func (pc *pageCollector) pages() []Page {
	out := make([]Page, len(pc.accs))
	for i, acc := range pc.accs {
		out[i] = Page{
			Width:  pc.width,
			Height: pc.height,
			Margin: pc.margin,
			Texts:  acc.texts,
			Rects:  acc.rects,
		}
	}
	return out
}

type flowContext struct {
	ctx       context.Context
	baseX     float64
	width     float64
	cursorY   float64
	data      any
	opts      BuildOptions
	res       ResourceSet
	collector *pageCollector
	// textAlign 继承自父 flow 的对齐方式（left/center/right）。
	textAlign string
	// textWrap 继承自父 flow 的折行方式（anywhere(默认)/break-word/nowrap）。
	textWrap string
}

// ensureSpace 在剩余空间不足时换页；空白页上放不下的元素直接溢出。
func (fc *flowContext) ensureSpace(height float64) {
	if fc.cursorY+height <= fc.collector.contentBottom() {
		return
	}
	if fc.collector.curr().empty() {
		return
	}
	fc.collector.newPage()
	fc.cursorY = fc.collector.margin.Top
}

func collectResources(doc *dsl.Document) (ResourceSet, error) {
	res := ResourceSet{
		Fonts:  map[string]FontResource{},
		Colors: map[string]Color{},
		Styles: map[string]Style{},
	}
	rawStyles := map[string]Style{}

	for _, section := range doc.Sections {
		if section.Resources == nil || section.Resources.Block == nil {
			continue
		}
		for _, stmt := range section.Resources.Block.Statements {
			if stmt.Command == nil {
				continue
			}
			switch stmt.Command.Name {
			case "font":
				font := parseFontResource(stmt.Command)
				if font.Name != "" {
					res.Fonts[font.Name] = font
				}
			case "color":
				name, value := parseColorResource(stmt.Command)
				if name == "" || value == "" {
					continue
				}
				c, err := parseColor(value)
				if err != nil {
					return res, err
				}
				res.Colors[name] = c
			case "style":
				style := parseStyleResource(stmt.Command)
				if style.Name != "" {
					rawStyles[style.Name] = style
				}
			}
		}
	}

	if len(res.Fonts) == 0 {
		res.Fonts["Body"] = FontResource{
			Name:   "Body",
			Src:    "embed:lmroman10-regular",
			Family: "Body",
		}
	}

	resolvedStyles, err := resolveStyles(rawStyles)
	if err != nil {
		return res, err
	}
	res.Styles = resolvedStyles
	return res, nil
}

func collectMeta(doc *dsl.Document) DocumentMeta {
	meta := DocumentMeta{
		Creator: "Papyrus Clamp",
	}
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			switch strings.ToLower(stmt.Assignment.Key) {
			case "title":
				meta.Title = valueToString(stmt.Assignment.Value)
			case "author":
				meta.Author = valueToString(stmt.Assignment.Value)
			case "subject":
				meta.Subject = valueToString(stmt.Assignment.Value)
			case "creator":
				meta.Creator = valueToString(stmt.Assignment.Value)
			case "keywords":
				meta.Keywords = valueToStringSlice(stmt.Assignment.Value)
			}
		}
	}
	return meta
}

func parseFontResource(cmd *dsl.Command) FontResource {
	if len(cmd.Args) == 0 {
		return FontResource{}
	}
	font := FontResource{
		Name:   cmd.Args[0].Value,
		Family: cmd.Args[0].Value,
	}
	if cmd.Block == nil {
		return font
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		val := valueToString(stmt.Assignment.Value)
		switch stmt.Assignment.Key {
		case "src":
			font.Src = val
		case "style":
			font.Style = val
		case "fallback":
			font.Fallback = val
		}
	}
	return font
}

func parseStyleResource(cmd *dsl.Command) Style {
	if len(cmd.Args) == 0 {
		return Style{}
	}
	style := Style{
		Name:  cmd.Args[0].Value,
		Props: map[string]string{},
	}
	if len(cmd.Args) >= 3 && strings.EqualFold(cmd.Args[1].Value, "extends") {
		style.Extends = cmd.Args[2].Value
	}
	if cmd.Block == nil {
		return style
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		val := valueToString(stmt.Assignment.Value)
		if val == "" {
			continue
		}
		style.Props[stmt.Assignment.Key] = val
	}
	return style
}

func resolveStyles(styles map[string]Style) (map[string]Style, error) {
	resolved := map[string]Style{}
	visiting := map[string]bool{}

	var dfs func(name string) (Style, error)
	dfs = func(name string) (Style, error) {
		if style, ok := resolved[name]; ok {
			return style, nil
		}
		style, ok := styles[name]
		if !ok {
			return Style{}, fmt.Errorf("style %s 未定义", name)
		}
		if visiting[name] {
			return Style{}, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true

		props := map[string]string{}
		if style.Extends != "" {
			parent, err := dfs(style.Extends)
			if err != nil {
				return Style{}, err
			}
			for k, v := range parent.Props {
				props[k] = v
			}
		}
		for k, v := range style.Props {
			props[k] = v
		}
		style.Props = props
		resolved[name] = style
		delete(visiting, name)
		return style, nil
	}

	for name := range styles {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

func parseColorResource(cmd *dsl.Command) (string, string) {
	if len(cmd.Args) == 0 {
		return "", ""
	}
	name := cmd.Args[0].Value
	value := ""
	if len(cmd.Args) > 1 {
		value = cmd.Args[len(cmd.Args)-1].Value
	}
	return name, value
}

var pagePresets = map[string][2]float64{
	"A4":     {210, 297},
	"A5":     {148, 210},
	"A6":     {105, 148},
	"LETTER": {215.9, 279.4},
}

func resolvePageSize(section *dsl.PageSection) (float64, float64, error) {
	base, ok := pagePresets[strings.ToUpper(section.Size)]
	if !ok {
		return 0, 0, fmt.Errorf("暂不支持的纸张尺寸：%s", section.Size)
	}
	width, height := base[0], base[1]
	for _, arg := range section.Params {
		if arg.Value == "landscape" {
			width, height = height, width
		}
	}
	return width, height, nil
}

// resolveMargin 读取 margin 之后的 1–4 个长度，语义同 CSS；默认四边 20mm。
func resolveMargin(params []*dsl.Arg) Margin {
	margin := Margin{Top: 20, Right: 20, Bottom: 20, Left: 20}
	for i := 0; i < len(params); i++ {
		if params[i].Value != "margin" {
			continue
		}
		vals := []float64{}
		for j := i + 1; j < len(params) && len(vals) < 4; j++ {
			l, ok := ParseLength(params[j].Value)
			if !ok {
				break
			}
			vals = append(vals, l.ToMM())
		}
		switch len(vals) {
		case 1:
			v := vals[0]
			margin = Margin{Top: v, Right: v, Bottom: v, Left: v}
		case 2:
			margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}
		case 3:
			margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}
		case 4:
			margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}
		}
	}
	return margin
}

func firstPage(doc *dsl.Document) *dsl.PageSection {
	for _, section := range doc.Sections {
		if section.Page != nil {
			return section.Page
		}
	}
	return nil
}

// parseArgs 把参数解析为键值对。allowStyle 时，奇数个参数且首个为标识符则视为样式名。
func parseArgs(args []*dsl.Arg, allowStyle bool) (string, map[string]string) {
	result := map[string]string{}
	if len(args) == 0 {
		return "", result
	}

	cursor := 0
	var style string
	if allowStyle && args[0].Type == "Ident" && len(args)%2 == 1 {
		style = args[0].Value
		cursor = 1
	}
	for cursor < len(args)-1 {
		result[args[cursor].Value] = args[cursor+1].Value
		cursor += 2
	}
	return style, result
}

func mergeStyleAttributes(style string, inline map[string]string, styles map[string]Style) map[string]string {
	out := make(map[string]string)
	if style != "" {
		if s, ok := styles[style]; ok {
			for k, v := range s.Props {
				out[k] = v
			}
		}
	}
	for k, v := range inline {
		out[k] = v
	}
	return out
}

func resolveFontResource(name string, res ResourceSet) (FontResource, error) {
	if font, ok := res.Fonts[name]; ok {
		return font, nil
	}
	if font, ok := res.Fonts["Body"]; ok {
		return font, nil
	}
	for _, font := range res.Fonts {
		return font, nil
	}
	return FontResource{}, fmt.Errorf("字体 %s 未定义，且没有可用的默认字体", name)
}

func layoutLines(content string, width float64, font FontResource, fontSize, lineHeight float64, ts Typesetter, wrap string) ([]TextLine, error) {
	lines, err := ts.LayoutLines(content, width, font, fontSize, lineHeight, wrap)
	if err != nil {
		return nil, fmt.Errorf("排版失败: %w", err)
	}
	if len(lines) == 0 {
		lines = []TextLine{{Content: "", Width: width, Height: fontSize}}
	}
	return lines, nil
}

func resolveColor(value string, res ResourceSet) Color {
	if value == "" {
		return Color{R: 30, G: 30, B: 30}
	}
	if c, ok := res.Colors[value]; ok {
		return c
	}
	if strings.HasPrefix(value, "#") {
		if c, err := parseColor(value); err == nil {
			return c
		}
	}
	return Color{R: 30, G: 30, B: 30}
}

func parseColor(value string) (Color, error) {
	hex := strings.TrimPrefix(value, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	v, err := strconv.ParseUint(hex[:6], 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
	}
	return Color{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}, nil
}

func alignOffset(container, width float64, align string) float64 {
	if container <= width {
		return 0
	}
	switch normalizeAlign(align) {
	case "center":
		return (container - width) / 2
	case "right":
		return container - width
	default:
		return 0
	}
}

func valueToString(val *dsl.Value) string {
	if val == nil {
		return ""
	}
	switch {
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		return *val.Number
	case val.Color != nil:
		return *val.Color
	case val.Ident != nil:
		return *val.Ident
	default:
		return ""
	}
}

func valueToStringSlice(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := valueToString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := valueToString(val); s != "" {
		return []string{s}
	}
	return nil
}
