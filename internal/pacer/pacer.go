package pacer

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"market-sim/internal/config"
	"market-sim/internal/generate"
	"market-sim/internal/order"
	"market-sim/internal/stats"
	"market-sim/internal/submit"
)

// Pacer 以固定节奏驱动订单批量提交：每个 tick 抽取批量大小、
// 合成订单、并发提交并等待整批落定，再按剩余时间补足休眠，
// 使相邻 tick 的起点间隔保持在 TickInterval 附近。
type Pacer struct {
	gen       *generate.Generator
	submitter submit.Submitter
	collector *stats.Collector
	logger    *zap.Logger

	interval time.Duration
	minOps   float64
	maxOps   float64

	rng *rand.Rand
}

// New 创建调度器。
func New(cfg config.PacerConfig, gen *generate.Generator, submitter submit.Submitter, collector *stats.Collector, rng *rand.Rand, logger *zap.Logger) *Pacer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pacer{
		gen:       gen,
		submitter: submitter,
		collector: collector,
		logger:    logger,
		interval:  cfg.TickInterval,
		minOps:    cfg.MinOpsPerTick,
		maxOps:    cfg.MaxOpsPerTick,
		rng:       rng,
	}
}

// Run 持续运行直至 ctx 被取消。取消只在 tick 边界生效，
// 在途批次总是先完整落定；tick 超时时不休眠，立即开始下一轮。
func (p *Pacer) Run(ctx context.Context) error {
	p.logger.Info("调度器已启动",
		zap.Duration("tick_interval", p.interval),
		zap.Float64("min_ops_per_tick", p.minOps),
		zap.Float64("max_ops_per_tick", p.maxOps),
	)

	for {
		start := time.Now()
		p.runTick(ctx)

		sleep := p.interval - time.Since(start)
		if sleep < 0 {
			sleep = 0
		}

		if ctx.Err() != nil {
			p.logger.Info("调度器收到退出信号，已停止")
			return nil
		}

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.logger.Info("调度器收到退出信号，已停止")
			return nil
		case <-timer.C:
		}
	}
}

// runTick 执行单个 tick：批量内订单并发提交、互不等待启动，
// 单笔失败不影响兄弟提交，整批落定后 tick 才算结束。
func (p *Pacer) runTick(ctx context.Context) []submit.Outcome {
	batch := p.batchSize()

	orders := make([]order.Order, batch)
	for i := range orders {
		orders[i] = p.gen.Next()
	}

	// 退出信号不打断在途请求，由单笔提交超时负责兜底。
	submitCtx := context.WithoutCancel(ctx)

	outcomes := make([]submit.Outcome, batch)
	var group errgroup.Group
	for i, o := range orders {
		i, o := i, o
		group.Go(func() error {
			outcomes[i] = p.submitter.Submit(submitCtx, o)
			p.report(outcomes[i])
			return nil
		})
	}
	_ = group.Wait()

	p.collector.RecordTick()
	return outcomes
}

// batchSize 从 [minOps, maxOps) 均匀抽取速率并截断，下限为1，
// 保证低速率下每个 tick 依然有进度。
func (p *Pacer) batchSize() int {
	rate := p.minOps + p.rng.Float64()*(p.maxOps-p.minOps)
	n := int(rate)
	if n < 1 {
		n = 1
	}
	return n
}

func (p *Pacer) report(out submit.Outcome) {
	p.collector.Record(out)

	fields := []zap.Field{
		zap.Int64("account_id", out.Order.AccountID),
		zap.String("pair_id", out.Order.PairID),
		zap.Stringer("side", out.Order.Side),
		zap.Float64("price", out.Order.Price),
		zap.Float64("amount", out.Order.Amount),
		zap.Duration("elapsed", out.Elapsed),
	}

	if out.Delivered() {
		p.logger.Info("订单已提交", fields...)
		return
	}

	p.logger.Warn("订单提交失败", append(fields, zap.String("reason", out.Reason))...)
}
