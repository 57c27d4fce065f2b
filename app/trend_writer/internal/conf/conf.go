package conf

import "github.com/iWorld-y/trend_writer/app/trend_writer/pkg/config"

// Bootstrap 服务启动配置，由 kratos config 扫描得到
type Bootstrap struct {
	Server      *Server                  `json:"server"`
	Trend       config.TrendConfig       `json:"trend"`
	LLM         config.LLMConfig         `json:"llm"`
	Log         config.LogConfig         `json:"log"`
	Concurrency config.ConcurrencyConfig `json:"concurrency"`
}

type Server struct {
	Http *HTTP `json:"http"`
}

type HTTP struct {
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"`
	// MaxUploadMB 上传参考文件的大小上限
	MaxUploadMB int64 `json:"max_upload_mb"`
}

// AppConfig 转换为 pkg/config.Config，供核心模块使用
func (b *Bootstrap) AppConfig() *config.Config {
	return &config.Config{
		Trend:       b.Trend,
		LLM:         b.LLM,
		Log:         b.Log,
		Concurrency: b.Concurrency,
	}
}
