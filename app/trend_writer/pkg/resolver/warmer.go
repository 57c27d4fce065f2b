package resolver

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/logger"
)

// Warmer 按计划主动刷新缓存，实现 kratos transport.Server
type Warmer struct {
	cron     *cron.Cron
	resolver *Resolver
}

// NewWarmer 按 cron 表达式（如 "@every 4m"）创建预热任务
func NewWarmer(r *Resolver, spec string) (*Warmer, error) {
	w := &Warmer{cron: cron.New(), resolver: r}
	if _, err := w.cron.AddFunc(spec, w.run); err != nil {
		return nil, fmt.Errorf("invalid warm spec %q: %w", spec, err)
	}
	return w, nil
}

func (w *Warmer) run() {
	set := w.resolver.Refresh(context.Background())
	logger.Log.Debugf("缓存预热完成，%d 条热点", len(set))
}

// Start 启动定时任务
func (w *Warmer) Start(ctx context.Context) error {
	logger.Log.Info("热点缓存预热已启动")
	w.cron.Start()
	return nil
}

// Stop 停止定时任务并等待正在执行的刷新结束
func (w *Warmer) Stop(ctx context.Context) error {
	done := w.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
