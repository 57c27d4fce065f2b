package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/config"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/knowledge"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/logger"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/trend"
)

// NoReference 没有上传参考资料时注入的提示
const NoReference = "无参考资料，请基于通用知识创作。"

// ErrMissingAPIKey 请求和配置中都没有 API Key
var ErrMissingAPIKey = errors.New("api key is required")

// ModelConfig 单次调用的模型参数
type ModelConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// ModelFactory 按请求参数创建模型，API Key 由前端逐次传入
type ModelFactory func(ctx context.Context, cfg ModelConfig) (model.BaseChatModel, error)

// NewOpenAIModel 使用 OpenAI 兼容协议创建模型
func NewOpenAIModel(ctx context.Context, cfg ModelConfig) (model.BaseChatModel, error) {
	temperature := cfg.Temperature
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: &temperature,
		Timeout:     cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return cm, nil
}

// TitleRequest 标题生成参数
type TitleRequest struct {
	APIKey           string
	Subject          string
	StyleKey         string
	ModelKey         string
	Creativity       float32
	Trends           trend.Set
	ReferenceSummary string
}

// ContentRequest 正文生成参数
type ContentRequest struct {
	APIKey            string
	Title             string
	ContentType       string
	StyleKey          string
	ModelKey          string
	VideoLength       float64
	Creativity        float32
	ReferenceMaterial string
}

// Engine 负责提示词组装与模型调用
type Engine struct {
	kb         *knowledge.Base
	llm        config.LLMConfig
	timeout    time.Duration
	newModel   ModelFactory
	limiter    *rate.Limiter
	retryDelay time.Duration
	titleTpl   prompt.ChatTemplate
	contentTpl prompt.ChatTemplate
}

// Option 引擎选项
type Option func(*Engine)

// WithModelFactory 替换模型创建方式
func WithModelFactory(f ModelFactory) Option {
	return func(e *Engine) { e.newModel = f }
}

// WithRetryDelay 设置 429 重试的基础间隔
func WithRetryDelay(d time.Duration) Option {
	return func(e *Engine) { e.retryDelay = d }
}

// NewEngine 创建引擎实例
func NewEngine(cfg *config.Config, kb *knowledge.Base, opts ...Option) (*Engine, error) {
	timeout, err := config.ParseDuration(cfg.LLM.Timeout, 2*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("llm timeout: %w", err)
	}

	// 初始化限流器
	limit := rate.Inf
	if cfg.Concurrency.RPM > 0 {
		limit = rate.Limit(float64(cfg.Concurrency.RPM) / 60.0)
	}
	burst := cfg.Concurrency.QPS
	if burst <= 0 {
		burst = 1
	}

	e := &Engine{
		kb:         kb,
		llm:        cfg.LLM,
		timeout:    timeout,
		newModel:   NewOpenAIModel,
		limiter:    rate.NewLimiter(limit, burst),
		retryDelay: 2 * time.Second,
		titleTpl:   prompt.FromMessages(schema.FString, schema.UserMessage(kb.TitlePrompt)),
		contentTpl: prompt.FromMessages(schema.FString, schema.UserMessage(kb.ContentPrompt)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// GenerateTitles 结合热点、风格与参考摘要生成标题
func (e *Engine) GenerateTitles(ctx context.Context, req TitleRequest) (string, error) {
	vars := map[string]any{
		"trends":            req.Trends.Lines(),
		"style":             e.kb.Guide(req.StyleKey),
		"subject":           req.Subject,
		"reference_summary": req.ReferenceSummary,
		"examples":          e.kb.Sample(req.StyleKey),
	}
	return e.generate(ctx, "titles", e.titleTpl, vars, req.APIKey, req.ModelKey, req.Creativity)
}

// GenerateContent 按标题生成正文或视频脚本
func (e *Engine) GenerateContent(ctx context.Context, req ContentRequest) (string, error) {
	reference := req.ReferenceMaterial
	if reference == "" {
		reference = NoReference
	}
	vars := map[string]any{
		"type":               req.ContentType,
		"title":              req.Title,
		"style":              e.kb.Guide(req.StyleKey),
		"duration":           formatMinutes(req.VideoLength),
		"reference_material": reference,
		"examples":           e.kb.Sample(req.StyleKey),
	}
	return e.generate(ctx, "content", e.contentTpl, vars, req.APIKey, req.ModelKey, req.Creativity)
}

func (e *Engine) generate(ctx context.Context, task string, tpl prompt.ChatTemplate, vars map[string]any,
	apiKey, modelKey string, temperature float32) (string, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		apiKey = e.llm.APIKey
	}
	if apiKey == "" {
		return "", ErrMissingAPIKey
	}

	modelID := e.kb.ModelID(modelKey)
	log := logger.Log.WithFields(logrus.Fields{
		"request_id": uuid.NewString(),
		"task":       task,
		"model":      modelID,
	})
	log.Infof("LLM Init: %s, Temp=%.2f", modelID, temperature)

	messages, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("format prompt: %w", err)
	}

	cm, err := e.newModel(ctx, ModelConfig{
		BaseURL:     e.llm.BaseURL,
		APIKey:      apiKey,
		Model:       modelID,
		Temperature: temperature,
		Timeout:     e.timeout,
	})
	if err != nil {
		return "", err
	}

	out, err := e.callWithRetry(ctx, cm, messages, log)
	if err != nil {
		log.Errorf("生成失败: %v", err)
		return "", err
	}
	log.Infof("生成完成，长度 %d", len([]rune(out)))
	return out, nil
}

// callWithRetry 限流后调用模型，遇到 429 指数退避重试
func (e *Engine) callWithRetry(ctx context.Context, cm model.BaseChatModel, messages []*schema.Message, log *logrus.Entry) (string, error) {
	const maxRetries = 3
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return "", err
		}

		resp, err := cm.Generate(ctx, messages)
		if err == nil {
			return strings.TrimSpace(resp.Content), nil
		}
		if !isRateLimited(err) {
			return "", fmt.Errorf("llm generate: %w", err)
		}

		lastErr = err
		if i == maxRetries {
			break
		}
		delay := e.retryDelay * time.Duration(1<<i)
		log.Warnf("触发限流，%s 后重试 (%d/%d)", delay, i+1, maxRetries)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("failed after retries: %w", lastErr)
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}

// formatMinutes 视频时长，1 -> "1.0"、1.5 -> "1.5"
func formatMinutes(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
