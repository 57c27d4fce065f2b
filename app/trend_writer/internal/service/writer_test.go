package service

import (
	"context"
	"errors"
	"testing"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/engine"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/knowledge"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/metrics"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/trend"
)

// mockTrends 模拟热点解析器
type mockTrends struct {
	live   trend.Set
	cached trend.Set
	calls  int
}

func (m *mockTrends) GetTrends(ctx context.Context) trend.Set {
	m.calls++
	return m.live
}

func (m *mockTrends) Cached() trend.Set {
	return m.cached
}

// mockGenerator 记录最后一次请求
type mockGenerator struct {
	titleReq   engine.TitleRequest
	contentReq engine.ContentRequest
	out        string
	err        error
}

func (m *mockGenerator) GenerateTitles(ctx context.Context, req engine.TitleRequest) (string, error) {
	m.titleReq = req
	return m.out, m.err
}

func (m *mockGenerator) GenerateContent(ctx context.Context, req engine.ContentRequest) (string, error) {
	m.contentReq = req
	return m.out, m.err
}

func newTestService(t *testing.T, trends *mockTrends, gen *mockGenerator) (*WriterService, *metrics.Metrics) {
	t.Helper()
	kb, err := knowledge.Default()
	require.NoError(t, err)
	m := metrics.New(nil)
	return NewWriterService(trends, gen, kb, m, log.DefaultLogger), m
}

func TestWriterService_Config(t *testing.T) {
	t.Run("returns live trends", func(t *testing.T) {
		trends := &mockTrends{live: trend.Set{"【微博】甲"}}
		s, m := newTestService(t, trends, &mockGenerator{})

		reply := s.Config(context.Background())
		assert.Equal(t, []string{"【微博】甲"}, reply.Trends)
		assert.Equal(t, s.kb.StyleKeys(), reply.Styles)
		assert.Len(t, reply.Models, 3)
		assert.Equal(t, 0.0, testutil.ToFloat64(m.FallbackTotal))
	})

	t.Run("falls back to static trends", func(t *testing.T) {
		s, m := newTestService(t, &mockTrends{}, &mockGenerator{})

		reply := s.Config(context.Background())
		assert.Equal(t, []string(s.kb.FallbackTrends), reply.Trends)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbackTotal))
	})
}

func TestWriterService_Titles(t *testing.T) {
	t.Run("uses cached trends and document summary", func(t *testing.T) {
		gen := &mockGenerator{out: "1. 标题"}
		trends := &mockTrends{cached: trend.Set{"【百度】缓存"}}
		s, _ := newTestService(t, trends, gen)

		long := make([]rune, 1500)
		for i := range long {
			long[i] = '文'
		}
		reply, err := s.Titles(context.Background(), &TitlesForm{
			APIKey:     "sk",
			Subject:    "主题",
			StyleKey:   "硬核科普",
			ModelKey:   "Qwen Plus (逻辑梳理)",
			Creativity: 0.9,
			File:       &Upload{Filename: "ref.txt", Data: []byte(string(long))},
		})
		require.NoError(t, err)
		assert.Equal(t, "1. 标题", reply.Titles)
		assert.Equal(t, trend.Set{"【百度】缓存"}, gen.titleReq.Trends)
		assert.Equal(t, 1000, len([]rune(gen.titleReq.ReferenceSummary)))
		assert.Equal(t, "主题", gen.titleReq.Subject)
		assert.InDelta(t, 0.9, gen.titleReq.Creativity, 1e-6)
		// 生成标题不触发实时抓取
		assert.Equal(t, 0, trends.calls)
	})

	t.Run("falls back to static trends", func(t *testing.T) {
		gen := &mockGenerator{out: "ok"}
		s, _ := newTestService(t, &mockTrends{}, gen)

		_, err := s.Titles(context.Background(), &TitlesForm{Subject: "s"})
		require.NoError(t, err)
		assert.Equal(t, s.kb.FallbackTrends, gen.titleReq.Trends)
		assert.Empty(t, gen.titleReq.ReferenceSummary)
	})

	t.Run("rejects unsupported document", func(t *testing.T) {
		s, _ := newTestService(t, &mockTrends{}, &mockGenerator{})

		_, err := s.Titles(context.Background(), &TitlesForm{Subject: "s", File: &Upload{Filename: "a.exe", Data: []byte("x")}})
		require.Error(t, err)
		assert.True(t, kerrors.IsBadRequest(err))
		assert.Equal(t, "INVALID_DOCUMENT", kerrors.Reason(err))
	})

	t.Run("maps generation failure to 500", func(t *testing.T) {
		s, _ := newTestService(t, &mockTrends{}, &mockGenerator{err: errors.New("upstream down")})

		_, err := s.Titles(context.Background(), &TitlesForm{Subject: "s"})
		require.Error(t, err)
		assert.True(t, kerrors.IsInternalServer(err))
		assert.Equal(t, "GENERATION_FAILED", kerrors.Reason(err))
		assert.Contains(t, kerrors.FromError(err).Message, "upstream down")
	})

	t.Run("maps missing api key to 400", func(t *testing.T) {
		s, _ := newTestService(t, &mockTrends{}, &mockGenerator{err: engine.ErrMissingAPIKey})

		_, err := s.Titles(context.Background(), &TitlesForm{Subject: "s"})
		assert.Equal(t, "MISSING_API_KEY", kerrors.Reason(err))
	})
}

func TestWriterService_Content(t *testing.T) {
	t.Run("passes full reference material", func(t *testing.T) {
		gen := &mockGenerator{out: "正文"}
		s, _ := newTestService(t, &mockTrends{}, gen)

		reply, err := s.Content(context.Background(), &ContentForm{
			Title:       "标题",
			ContentType: "图文",
			StyleKey:    "温情叙事",
			ModelKey:    "DeepSeek V3 (科研分析)",
			VideoLength: 2.5,
			Creativity:  0.4,
			File:        &Upload{Filename: "ref.md", Data: []byte("# 资料\n内容")},
		})
		require.NoError(t, err)
		assert.Equal(t, "正文", reply.Content)
		assert.Equal(t, "# 资料\n内容", gen.contentReq.ReferenceMaterial)
		assert.Equal(t, 2.5, gen.contentReq.VideoLength)
		assert.Equal(t, "图文", gen.contentReq.ContentType)
	})

	t.Run("no file leaves reference empty", func(t *testing.T) {
		gen := &mockGenerator{out: "正文"}
		s, _ := newTestService(t, &mockTrends{}, gen)

		_, err := s.Content(context.Background(), &ContentForm{Title: "t"})
		require.NoError(t, err)
		assert.Empty(t, gen.contentReq.ReferenceMaterial)
	})
}

func TestRequired(t *testing.T) {
	assert.NoError(t, required(map[string]string{"a": "x"}))

	err := required(map[string]string{"b": " ", "a": "", "c": "ok"})
	require.Error(t, err)
	assert.Equal(t, "missing required fields: a, b", kerrors.FromError(err).Message)
}
