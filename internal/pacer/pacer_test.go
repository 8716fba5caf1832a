package pacer

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"market-sim/internal/config"
	"market-sim/internal/generate"
	"market-sim/internal/order"
	"market-sim/internal/stats"
	"market-sim/internal/submit"
)

type stubSubmitter struct {
	mu      sync.Mutex
	times   []time.Time
	delay   time.Duration
	outcome func(o order.Order) submit.Outcome
}

func (s *stubSubmitter) Submit(ctx context.Context, o order.Order) submit.Outcome {
	s.mu.Lock()
	s.times = append(s.times, time.Now())
	s.mu.Unlock()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.outcome != nil {
		return s.outcome(o)
	}
	return submit.Outcome{Order: o, Status: submit.StatusDelivered}
}

func (s *stubSubmitter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.times)
}

func (s *stubSubmitter) callTimes() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Time(nil), s.times...)
}

func newTestPacer(t *testing.T, pcfg config.PacerConfig, sub submit.Submitter) (*Pacer, *stats.Collector) {
	t.Helper()

	mcfg := config.MarketConfig{
		Instruments:  []config.InstrumentConfig{{PairID: "btcusdt", PriceMean: 65000, PriceStddev: 1200}},
		AmountMean:   2,
		AmountStddev: 1.2,
		AmountMin:    0.01,
		PriceFloor:   0.0001,
		BuyBias:      0.52,
	}

	rng := rand.New(rand.NewSource(5))
	gen, err := generate.New(mcfg, 10, rng)
	if err != nil {
		t.Fatalf("generate.New returned error: %v", err)
	}

	collector := stats.NewCollector()
	return New(pcfg, gen, sub, collector, rng, nil), collector
}

func TestRunTickBatchFloor(t *testing.T) {
	sub := &stubSubmitter{}
	p, _ := newTestPacer(t, config.PacerConfig{
		TickInterval:  time.Second,
		MinOpsPerTick: 0.1,
		MaxOpsPerTick: 0.2,
	}, sub)

	for i := 0; i < 20; i++ {
		outcomes := p.runTick(context.Background())
		if len(outcomes) != 1 {
			t.Fatalf("tick %d: expected batch floored at 1, got %d", i, len(outcomes))
		}
	}
	if sub.callCount() != 20 {
		t.Fatalf("expected one submission per tick, got %d", sub.callCount())
	}
}

func TestRunTickFailureIsolation(t *testing.T) {
	var mu sync.Mutex
	seen := 0
	sub := &stubSubmitter{outcome: func(o order.Order) submit.Outcome {
		mu.Lock()
		seen++
		n := seen
		mu.Unlock()
		if n%2 == 0 {
			return submit.Outcome{Order: o, Status: submit.StatusFailed, Reason: "timeout"}
		}
		return submit.Outcome{Order: o, Status: submit.StatusDelivered}
	}}

	p, collector := newTestPacer(t, config.PacerConfig{
		TickInterval:  time.Second,
		MinOpsPerTick: 6,
		MaxOpsPerTick: 7,
	}, sub)

	outcomes := p.runTick(context.Background())
	if len(outcomes) != 6 {
		t.Fatalf("expected 6 orders in tick, got %d", len(outcomes))
	}
	for i, out := range outcomes {
		if out.Status != submit.StatusDelivered && out.Status != submit.StatusFailed {
			t.Fatalf("order %d has no terminal outcome: %+v", i, out)
		}
	}

	summary := collector.Snapshot()
	if summary.Orders != 6 {
		t.Fatalf("expected 6 recorded orders, got %d", summary.Orders)
	}
	if summary.Delivered != 3 || summary.Failed != 3 {
		t.Fatalf("expected mixed outcomes 3/3, got delivered=%d failed=%d", summary.Delivered, summary.Failed)
	}
}

func TestRunKeepsGoingWhenEverySubmitFails(t *testing.T) {
	sub := &stubSubmitter{outcome: func(o order.Order) submit.Outcome {
		return submit.Outcome{Order: o, Status: submit.StatusFailed, Reason: "timeout"}
	}}

	p, collector := newTestPacer(t, config.PacerConfig{
		TickInterval:  10 * time.Millisecond,
		MinOpsPerTick: 2,
		MaxOpsPerTick: 4,
	}, sub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Run did not stop after cancellation")
	}

	summary := collector.Snapshot()
	if summary.Ticks < 2 {
		t.Fatalf("expected multiple completed ticks, got %d", summary.Ticks)
	}
	if summary.Delivered != 0 || summary.Failed != summary.Orders || summary.Orders == 0 {
		t.Fatalf("expected one failed report per order, got %+v", summary)
	}
}

func TestRunCadenceUnderFastSubmits(t *testing.T) {
	interval := 50 * time.Millisecond
	sub := &stubSubmitter{}
	p, collector := newTestPacer(t, config.PacerConfig{
		TickInterval:  interval,
		MinOpsPerTick: 1,
		MaxOpsPerTick: 2,
	}, sub)

	ctx, cancel := context.WithTimeout(context.Background(), 275*time.Millisecond)
	defer cancel()
	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	ticks := collector.Snapshot().Ticks
	if ticks < 3 || ticks > 8 {
		t.Fatalf("expected ~5 ticks over 275ms at 50ms cadence, got %d", ticks)
	}
}

func TestRunNoResidualSleepWhenTickOverruns(t *testing.T) {
	interval := 40 * time.Millisecond
	delay := 100 * time.Millisecond
	sub := &stubSubmitter{delay: delay}
	p, _ := newTestPacer(t, config.PacerConfig{
		TickInterval:  interval,
		// 批量恒为1，stub 的每次调用即一个 tick 的起点。
		MinOpsPerTick: 1,
		MaxOpsPerTick: 1.5,
	}, sub)

	ctx, cancel := context.WithTimeout(context.Background(), 520*time.Millisecond)
	defer cancel()
	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	times := sub.callTimes()
	if len(times) < 3 {
		t.Fatalf("expected at least 3 ticks, got %d", len(times))
	}
	for i := 1; i < len(times); i++ {
		gap := times[i].Sub(times[i-1])
		if gap > delay+interval/2 {
			t.Fatalf("gap %v between ticks %d and %d; residual sleep must be zero when a tick overruns", gap, i-1, i)
		}
	}
}

func TestRunStopsPromptlyDuringSleep(t *testing.T) {
	sub := &stubSubmitter{}
	p, _ := newTestPacer(t, config.PacerConfig{
		TickInterval:  time.Hour,
		MinOpsPerTick: 1,
		MaxOpsPerTick: 2,
	}, sub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Run did not observe cancellation at the sleep boundary")
	}
}
