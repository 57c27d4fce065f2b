package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultBaseURL 阿里云百炼 OpenAI 兼容地址
const DefaultBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"

// Config 项目配置结构体
type Config struct {
	Trend       TrendConfig       `yaml:"trend" json:"trend"`
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	Log         LogConfig         `yaml:"log" json:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
}

// TrendConfig 热点抓取相关配置
type TrendConfig struct {
	// Sources 按优先级排列，为空时使用 weibo、baidu
	Sources    []SourceConfig `yaml:"sources" json:"sources"`
	TTL        string         `yaml:"ttl" json:"ttl"`
	ServeStale bool           `yaml:"serve_stale" json:"serve_stale"`
	WarmSpec   string         `yaml:"warm_spec" json:"warm_spec"`
}

// SourceConfig 单个热点来源
type SourceConfig struct {
	Provider string `yaml:"provider" json:"provider"`
	URL      string `yaml:"url" json:"url"`
	Timeout  string `yaml:"timeout" json:"timeout"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	BaseURL string `yaml:"base_url" json:"base_url"`
	APIKey  string `yaml:"api_key" json:"api_key"`
	Timeout string `yaml:"timeout" json:"timeout"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// ConcurrencyConfig LLM 调用限流配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps" json:"qps"`
	RPM int `yaml:"rpm" json:"rpm"`
}

// LoadConfig 从指定路径加载配置，并应用环境变量覆盖
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.ApplyEnv()
	return &cfg, nil
}

// ApplyEnv 加载 .env（不存在时忽略）并用环境变量覆盖敏感配置
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("DASHSCOPE_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = DefaultBaseURL
	}
}

// ParseDuration 解析可选的时长配置，空字符串返回 def
func ParseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}
