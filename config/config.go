// Package config loads papyrus-clamp settings from an optional config file,
// PAPYRUS_CLAMP_* environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/ByLCY/papyrus-clamp/clamp"
	"github.com/ByLCY/papyrus-clamp/layout"
)

// EnvPrefix 环境变量前缀，例如 PAPYRUS_CLAMP_CLAMP_LINES。
const EnvPrefix = "PAPYRUS_CLAMP"

// Config 应用配置
type Config struct {
	Clamp    ClampConfig    `mapstructure:"clamp"`
	Terminal TerminalConfig `mapstructure:"terminal"`
	Log      LogConfig      `mapstructure:"log"`
	Render   RenderConfig   `mapstructure:"render"`
}

// ClampConfig 截断默认值
type ClampConfig struct {
	// Lines 接受行数、"auto" 或带 px/em 的高度。
	Lines    string   `mapstructure:"lines"`
	Native   bool     `mapstructure:"native"`
	Animate  string   `mapstructure:"animate"`
	Split    []string `mapstructure:"split"`
	Ellipsis string   `mapstructure:"ellipsis"`
	Marker   string   `mapstructure:"marker"`
}

// TerminalConfig 终端配置
type TerminalConfig struct {
	Width int `mapstructure:"width"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RenderConfig PDF 渲染配置。BaseDir 为空时使用 DSL 文件所在目录。
type RenderConfig struct {
	BaseDir   string `mapstructure:"base_dir"`
	LineClamp bool   `mapstructure:"line_clamp"`
	CacheSize int    `mapstructure:"cache_size"`
}

// New 返回已设置默认值与环境变量绑定的 viper 实例，命令行参数可在其上继续绑定。
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile 读取配置文件。path 为空时在当前目录查找 papyrus-clamp.(yaml|toml|json)，找不到不算错误。
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("papyrus-clamp")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("读取配置文件失败: %w", err)
	}
	return nil
}

// Load 加载配置文件并解析
func Load(path string) (*Config, error) {
	v := New()
	if err := ReadFile(v, path); err != nil {
		return nil, err
	}
	return Decode(v)
}

// Decode 将 viper 中的当前值解析为 Config。
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	// 环境变量中的 split 是单个字符串，与 --split 同样解析；YAML 里的 [" "] 保持原样
	if len(cfg.Clamp.Split) == 1 && strings.TrimSpace(cfg.Clamp.Split[0]) != "" {
		cfg.Clamp.Split = layout.ParseSplit(cfg.Clamp.Split[0])
	}
	return &cfg, nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("clamp.lines", fmt.Sprint(clamp.DefaultLines))
	v.SetDefault("clamp.native", true)
	v.SetDefault("clamp.animate", "")
	v.SetDefault("clamp.split", clamp.DefaultSplitOnChars)
	v.SetDefault("clamp.ellipsis", clamp.DefaultTruncationChar)
	v.SetDefault("clamp.marker", "")

	v.SetDefault("terminal.width", 80)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("render.base_dir", "")
	v.SetDefault("render.line_clamp", false)
	v.SetDefault("render.cache_size", 4096)
}

// ClampOptions 将配置转换为 clamp.Options。
func (c ClampConfig) ClampOptions() (clamp.Options, error) {
	target, err := layout.ParseClampTarget(c.Lines)
	if err != nil {
		return clamp.Options{}, err
	}
	delay, err := layout.ParseAnimate(c.Animate)
	if err != nil {
		return clamp.Options{}, err
	}
	opts := clamp.Options{
		Clamp:          target,
		UseNativeClamp: clamp.Bool(c.Native),
		Animate:        delay,
		TruncationChar: c.Ellipsis,
		TruncationHTML: c.Marker,
	}
	if len(c.Split) > 0 {
		opts.SplitOnChars = append([]string(nil), c.Split...)
	}
	return opts, nil
}
