package layout

import (
	"log/slog"

	"github.com/ByLCY/papyrus-clamp/clamp"
)

// BuildOptions 配置布局阶段所需的依赖，例如排版后端与截断默认值。
type BuildOptions struct {
	Typesetter Typesetter
	// Clamp 提供文档未声明时使用的截断默认值（行数、省略符、分隔符等）。
	Clamp  clamp.Options
	Logger *slog.Logger
}

// Typesetter 负责根据字体与宽度约束将文本拆成可绘制的行（单位：mm）。
type Typesetter interface {
	LayoutLines(content string, width float64, font FontResource, fontSize float64, lineHeight float64, wrap string) ([]TextLine, error)
}

// LineClamper is an optional Typesetter capability: the backend can draw
// only the first N lines of a box and ellipsize the last one itself.
type LineClamper interface {
	SupportsLineClamp() bool
}

func (o BuildOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}
