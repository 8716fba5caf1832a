package app

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"market-sim/internal/config"
	"market-sim/internal/generate"
	"market-sim/internal/pacer"
	"market-sim/internal/stats"
	"market-sim/internal/submit"
)

// App 聚合核心依赖并驱动模拟器生命周期。
type App struct {
	cfg    *config.Config
	logger *zap.Logger
}

// New 创建 App 实例。
func New(cfg *config.Config, logger *zap.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
	}
}

// Run 构建订单生成与提交管线并阻塞运行，直至 ctx 被取消。
func (a *App) Run(ctx context.Context) error {
	seed := a.cfg.App.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	gen, err := generate.New(a.cfg.Market, a.cfg.Accounts.Count, rng)
	if err != nil {
		return err
	}

	a.logger.Info("市场模拟器已初始化",
		zap.String("environment", a.cfg.App.Environment),
		zap.String("target", a.cfg.Target.BaseURL+a.cfg.Target.OrderPath),
		zap.Int("accounts", a.cfg.Accounts.Count),
		zap.Int("instruments", len(a.cfg.Market.Instruments)),
		zap.Int64("seed", seed),
	)

	collector := stats.NewCollector()
	if a.cfg.Monitor.Enabled {
		startStatsServer(ctx, collector, a.cfg.Monitor.Port, a.logger)
	}

	submitter := submit.NewHTTPSubmitter(a.cfg.Target)

	return pacer.New(a.cfg.Pacer, gen, submitter, collector, rng, a.logger).Run(ctx)
}
