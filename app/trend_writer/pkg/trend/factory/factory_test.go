package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/config"
)

func TestNewScrapers_Default(t *testing.T) {
	scrapers, err := NewScrapers(config.TrendConfig{})
	require.NoError(t, err)
	require.Len(t, scrapers, 2)
	assert.Equal(t, "weibo", scrapers[0].Name())
	assert.Equal(t, "baidu", scrapers[1].Name())
}

func TestNewScrapers_Ordered(t *testing.T) {
	scrapers, err := NewScrapers(config.TrendConfig{Sources: []config.SourceConfig{
		{Provider: "baidu", Timeout: "3s"},
		{Provider: "weibo", URL: "http://mirror.local"},
	}})
	require.NoError(t, err)
	require.Len(t, scrapers, 2)
	assert.Equal(t, "baidu", scrapers[0].Name())
	assert.Equal(t, "weibo", scrapers[1].Name())
}

func TestNewScrapers_Errors(t *testing.T) {
	_, err := NewScrapers(config.TrendConfig{Sources: []config.SourceConfig{{Provider: "douyin"}}})
	assert.EqualError(t, err, "unknown trend provider: douyin")

	_, err = NewScrapers(config.TrendConfig{Sources: []config.SourceConfig{{Provider: "weibo", Timeout: "fast"}}})
	assert.Error(t, err)
}
