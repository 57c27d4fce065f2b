package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/config"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/knowledge"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/trend"
)

// mockChatModel 记录收到的消息并按顺序返回预设结果
type mockChatModel struct {
	mu       sync.Mutex
	replies  []string
	errs     []error
	received [][]*schema.Message
}

func (m *mockChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := len(m.received)
	m.received = append(m.received, input)
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	reply := ""
	if i < len(m.replies) {
		reply = m.replies[i]
	}
	return schema.AssistantMessage(reply, nil), nil
}

func (m *mockChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func newTestEngine(t *testing.T, cm *mockChatModel, cfg *config.Config) (*Engine, *[]ModelConfig) {
	t.Helper()
	kb, err := knowledge.Default()
	require.NoError(t, err)
	if cfg == nil {
		cfg = &config.Config{LLM: config.LLMConfig{BaseURL: "http://llm.local/v1"}}
	}

	var seen []ModelConfig
	factory := func(ctx context.Context, mc ModelConfig) (model.BaseChatModel, error) {
		seen = append(seen, mc)
		return cm, nil
	}
	e, err := NewEngine(cfg, kb, WithModelFactory(factory), WithRetryDelay(time.Millisecond))
	require.NoError(t, err)
	return e, &seen
}

func TestEngine_GenerateTitles(t *testing.T) {
	cm := &mockChatModel{replies: []string{"  1. 标题一\n2. 标题二  "}}
	e, seen := newTestEngine(t, cm, nil)

	out, err := e.GenerateTitles(context.Background(), TitleRequest{
		APIKey:           " sk-test ",
		Subject:          "城市夜经济",
		StyleKey:         "犀利吐槽",
		ModelKey:         "Qwen Max (创意写作)",
		Creativity:       0.8,
		Trends:           trend.Set{"【微博】夜市回暖", "【百度】地摊经济"},
		ReferenceSummary: "摘要内容",
	})
	require.NoError(t, err)
	assert.Equal(t, "1. 标题一\n2. 标题二", out)

	require.Len(t, *seen, 1)
	mc := (*seen)[0]
	assert.Equal(t, "sk-test", mc.APIKey)
	assert.Equal(t, "qwen-max", mc.Model)
	assert.Equal(t, "http://llm.local/v1", mc.BaseURL)
	assert.InDelta(t, 0.8, mc.Temperature, 1e-6)

	require.Len(t, cm.received, 1)
	require.Len(t, cm.received[0], 1)
	msg := cm.received[0][0]
	assert.Equal(t, schema.User, msg.Role)
	assert.Contains(t, msg.Content, "- 【微博】夜市回暖\n- 【百度】地摊经济")
	assert.Contains(t, msg.Content, "城市夜经济")
	assert.Contains(t, msg.Content, "摘要内容")
	assert.Contains(t, msg.Content, "打工人")
	assert.NotContains(t, msg.Content, "{trends}")
}

func TestEngine_GenerateContent(t *testing.T) {
	cm := &mockChatModel{replies: []string{"正文"}}
	e, seen := newTestEngine(t, cm, nil)

	out, err := e.GenerateContent(context.Background(), ContentRequest{
		APIKey:      "sk-test",
		Title:       "夜市里的烟火气",
		ContentType: "视频脚本",
		StyleKey:    "未知风格",
		ModelKey:    "unknown",
		VideoLength: 1,
		Creativity:  0.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "正文", out)
	assert.Equal(t, "deepseek-v3", (*seen)[0].Model)

	content := cm.received[0][0].Content
	assert.Contains(t, content, "《夜市里的烟火气》")
	assert.Contains(t, content, "视频脚本")
	assert.Contains(t, content, "约 1.0 分钟")
	assert.Contains(t, content, NoReference)
	assert.Contains(t, content, knowledge.NoSample)
}

func TestEngine_APIKeyFallback(t *testing.T) {
	t.Run("uses configured key", func(t *testing.T) {
		cm := &mockChatModel{replies: []string{"ok"}}
		e, seen := newTestEngine(t, cm, &config.Config{LLM: config.LLMConfig{APIKey: "sk-config"}})

		_, err := e.GenerateTitles(context.Background(), TitleRequest{Subject: "s"})
		require.NoError(t, err)
		assert.Equal(t, "sk-config", (*seen)[0].APIKey)
	})

	t.Run("fails without any key", func(t *testing.T) {
		e, seen := newTestEngine(t, &mockChatModel{}, nil)

		_, err := e.GenerateTitles(context.Background(), TitleRequest{APIKey: "   ", Subject: "s"})
		assert.ErrorIs(t, err, ErrMissingAPIKey)
		assert.Empty(t, *seen)
	})
}

func TestEngine_RetriesOnRateLimit(t *testing.T) {
	cm := &mockChatModel{
		errs:    []error{errors.New("status 429: Too Many Requests"), errors.New("429")},
		replies: []string{"", "", "最终结果"},
	}
	e, _ := newTestEngine(t, cm, nil)

	out, err := e.GenerateContent(context.Background(), ContentRequest{APIKey: "k", Title: "t"})
	require.NoError(t, err)
	assert.Equal(t, "最终结果", out)
	assert.Len(t, cm.received, 3)
}

func TestEngine_GivesUpAfterRetries(t *testing.T) {
	limited := errors.New("429 too many requests")
	cm := &mockChatModel{errs: []error{limited, limited, limited, limited, limited}}
	e, _ := newTestEngine(t, cm, nil)

	_, err := e.GenerateContent(context.Background(), ContentRequest{APIKey: "k", Title: "t"})
	require.Error(t, err)
	assert.ErrorIs(t, err, limited)
	assert.Len(t, cm.received, 4)
}

func TestEngine_NoRetryOnOtherErrors(t *testing.T) {
	cm := &mockChatModel{errs: []error{errors.New("invalid api key")}}
	e, _ := newTestEngine(t, cm, nil)

	_, err := e.GenerateTitles(context.Background(), TitleRequest{APIKey: "k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
	assert.Len(t, cm.received, 1)
}

func TestEngine_ModelFactoryError(t *testing.T) {
	kb, err := knowledge.Default()
	require.NoError(t, err)
	e, err := NewEngine(&config.Config{}, kb, WithModelFactory(func(ctx context.Context, mc ModelConfig) (model.BaseChatModel, error) {
		return nil, errors.New("bad base url")
	}))
	require.NoError(t, err)

	_, err = e.GenerateTitles(context.Background(), TitleRequest{APIKey: "k"})
	assert.EqualError(t, err, "bad base url")
}

func TestNewEngine_InvalidTimeout(t *testing.T) {
	kb, err := knowledge.Default()
	require.NoError(t, err)
	_, err = NewEngine(&config.Config{LLM: config.LLMConfig{Timeout: "forever"}}, kb)
	assert.Error(t, err)
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "1.0", formatMinutes(1))
	assert.Equal(t, "1.5", formatMinutes(1.5))
	assert.Equal(t, "0.0", formatMinutes(0))
}
