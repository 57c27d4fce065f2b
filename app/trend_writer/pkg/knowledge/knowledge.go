package knowledge

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/trend"
)

//go:embed knowledge.yaml
var defaultData []byte

// NoSample 风格没有配置范文时的占位
const NoSample = "无特定参考范文"

// Model 可选模型，Name 用于前端展示
type Model struct {
	Name string `yaml:"name"`
	ID   string `yaml:"id"`
}

// Style 写作风格
type Style struct {
	Key    string `yaml:"key"`
	Guide  string `yaml:"guide"`
	Sample string `yaml:"sample"`
}

// Base 风格知识库
type Base struct {
	Models         []Model   `yaml:"models"`
	DefaultModel   string    `yaml:"default_model"`
	Styles         []Style   `yaml:"styles"`
	FallbackTrends trend.Set `yaml:"fallback_trends"`
	TitlePrompt    string    `yaml:"title_prompt"`
	ContentPrompt  string    `yaml:"content_prompt"`
}

// Default 加载内置知识库
func Default() (*Base, error) {
	return Parse(defaultData)
}

// Parse 解析知识库 YAML
func Parse(data []byte) (*Base, error) {
	var b Base
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse knowledge base: %w", err)
	}
	if b.TitlePrompt == "" || b.ContentPrompt == "" {
		return nil, fmt.Errorf("knowledge base is missing prompts")
	}
	if len(b.Models) == 0 {
		return nil, fmt.Errorf("knowledge base has no models")
	}
	if b.DefaultModel == "" {
		b.DefaultModel = b.Models[0].ID
	}
	return &b, nil
}

// StyleKeys 风格名称列表，保持配置顺序
func (b *Base) StyleKeys() []string {
	keys := make([]string, 0, len(b.Styles))
	for _, s := range b.Styles {
		keys = append(keys, s.Key)
	}
	return keys
}

// ModelNames 模型展示名称列表
func (b *Base) ModelNames() []string {
	names := make([]string, 0, len(b.Models))
	for _, m := range b.Models {
		names = append(names, m.Name)
	}
	return names
}

// ModelID 展示名称对应的模型，未知时返回默认模型
func (b *Base) ModelID(name string) string {
	for _, m := range b.Models {
		if m.Name == name {
			return m.ID
		}
	}
	return b.DefaultModel
}

// Guide 风格说明，未知风格返回空字符串
func (b *Base) Guide(key string) string {
	for _, s := range b.Styles {
		if s.Key == key {
			return s.Guide
		}
	}
	return ""
}

// Sample 风格范文
func (b *Base) Sample(key string) string {
	for _, s := range b.Styles {
		if s.Key == key && s.Sample != "" {
			return s.Sample
		}
	}
	return NoSample
}
