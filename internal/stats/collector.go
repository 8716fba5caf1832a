package stats

import (
	"sync"
	"time"

	"market-sim/internal/submit"
)

// PairCounters 按交易对累计提交结果。
type PairCounters struct {
	Delivered uint64 `json:"delivered"`
	Failed    uint64 `json:"failed"`
}

// Summary 是一次运行的统计快照。
type Summary struct {
	StartedAt     time.Time               `json:"started_at"`
	UptimeSeconds float64                 `json:"uptime_seconds"`
	Ticks         uint64                  `json:"ticks"`
	Orders        uint64                  `json:"orders"`
	Delivered     uint64                  `json:"delivered"`
	Failed        uint64                  `json:"failed"`
	Pairs         map[string]PairCounters `json:"pairs"`
	LastFailure   string                  `json:"last_failure,omitempty"`
	LastFailureAt time.Time               `json:"last_failure_at"`
}

// Collector 在内存中累计运行计数，可被同一批次的并发提交安全更新。
// 进程退出即丢弃，不做任何持久化。
type Collector struct {
	mu            sync.Mutex
	startedAt     time.Time
	ticks         uint64
	delivered     uint64
	failed        uint64
	pairs         map[string]*PairCounters
	lastFailure   string
	lastFailureAt time.Time
}

// NewCollector 创建空的统计收集器。
func NewCollector() *Collector {
	return &Collector{
		startedAt: time.Now().UTC(),
		pairs:     make(map[string]*PairCounters),
	}
}

// RecordTick 记录一次完整落定的 tick。
func (c *Collector) RecordTick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks++
}

// Record 记录单笔提交结果。
func (c *Collector) Record(out submit.Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pc := c.pairs[out.Order.PairID]
	if pc == nil {
		pc = &PairCounters{}
		c.pairs[out.Order.PairID] = pc
	}

	if out.Delivered() {
		c.delivered++
		pc.Delivered++
		return
	}

	c.failed++
	pc.Failed++
	c.lastFailure = out.Reason
	c.lastFailureAt = time.Now().UTC()
}

// Snapshot 返回当前统计的副本。
func (c *Collector) Snapshot() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	pairs := make(map[string]PairCounters, len(c.pairs))
	for pair, pc := range c.pairs {
		pairs[pair] = *pc
	}

	return Summary{
		StartedAt:     c.startedAt,
		UptimeSeconds: time.Since(c.startedAt).Seconds(),
		Ticks:         c.ticks,
		Orders:        c.delivered + c.failed,
		Delivered:     c.delivered,
		Failed:        c.failed,
		Pairs:         pairs,
		LastFailure:   c.lastFailure,
		LastFailureAt: c.lastFailureAt,
	}
}
