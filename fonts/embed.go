package fonts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-fonts/latin-modern/lmmono10regular"
	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10bolditalic"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"github.com/go-fonts/latin-modern/lmsans10regular"
)

// Default 是文档未声明字体时使用的内置字体。
const Default = "embed:lmroman10-regular"

var embedded = map[string][]byte{
	"lmroman10-regular":    lmroman10regular.TTF,
	"lmroman10-bold":       lmroman10bold.TTF,
	"lmroman10-italic":     lmroman10italic.TTF,
	"lmroman10-bolditalic": lmroman10bolditalic.TTF,
	"lmsans10-regular":     lmsans10regular.TTF,
	"lmmono10-regular":     lmmono10regular.TTF,
}

// Load 返回内置字体的字节数据，path 可写为 "embed:lmroman10-regular" 或直接 "lmroman10-regular"。
func Load(path string) ([]byte, error) {
	name := strings.ToLower(strings.TrimPrefix(path, "embed:"))
	data, ok := embedded[name]
	if !ok {
		return nil, fmt.Errorf("内置字体 %s 不存在，可选：%s", name, strings.Join(Names(), ", "))
	}
	return data, nil
}

// Names lists the embedded font names in sorted order.
func Names() []string {
	out := make([]string, 0, len(embedded))
	for name := range embedded {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
