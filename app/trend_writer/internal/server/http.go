package server

import (
	nethttp "net/http"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/trend_writer/app/trend_writer/internal/conf"
	"github.com/iWorld-y/trend_writer/app/trend_writer/internal/service"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/metrics"
)

func NewHTTPServer(c *conf.Bootstrap, s *service.WriterService, m *metrics.Metrics, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
		http.Filter(corsFilter),
	}
	if c.Server != nil && c.Server.Http != nil {
		hc := c.Server.Http
		if hc.Addr != "" {
			opts = append(opts, http.Address(hc.Addr))
		}
		if hc.Timeout != "" {
			if d, err := time.ParseDuration(hc.Timeout); err == nil {
				opts = append(opts, http.Timeout(d))
			}
		}
		if hc.MaxUploadMB > 0 {
			s.SetMaxUpload(hc.MaxUploadMB << 20)
		}
	}

	srv := http.NewServer(opts...)

	r := srv.Route("/")
	r.GET("/config", s.GetConfig)
	r.POST("/generate_titles", s.GenerateTitles)
	r.POST("/generate_content", s.GenerateContent)

	srv.Handle("/metrics", m.Handler())

	return srv
}

// corsFilter 允许任意来源访问，前端与后端分开部署
func corsFilter(next nethttp.Handler) nethttp.Handler {
	return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "*")
		h.Set("Access-Control-Allow-Headers", "*")
		if r.Method == nethttp.MethodOptions {
			w.WriteHeader(nethttp.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
