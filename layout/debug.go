package layout

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// WriteDebug 将布局结果（含每个文本框的截断信息）输出为 JSON 或 YAML，
// 格式由扩展名决定：.yaml/.yml 为 YAML，其余为 JSON。
func WriteDebug(res *Result, path string) error {
	if res == nil {
		return nil
	}
	data, err := MarshalDebug(res, filepath.Ext(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// MarshalDebug encodes res for the given extension.
func MarshalDebug(res *Result, ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		data, err := yaml.Marshal(res)
		if err != nil {
			return nil, fmt.Errorf("序列化 YAML 失败: %w", err)
		}
		return data, nil
	default:
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("序列化 JSON 失败: %w", err)
		}
		return data, nil
	}
}
