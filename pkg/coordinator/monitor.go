package coordinator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/keibalab/racefeed/pkg/config"
	"github.com/keibalab/racefeed/pkg/feed"
	"github.com/keibalab/racefeed/pkg/session"
	"github.com/keibalab/racefeed/pkg/stats"
	"github.com/keibalab/racefeed/pkg/writer"
)

// Monitor polls the vendor's real-time surface for the given data specs
// and streams progress events until the context is cancelled. Each cycle
// opens a real-time session per spec with no from-time — the vendor
// returns only data newer than the previous call — drains it to the
// real-time table family and closes.
//
// The returned channel closes when the monitor stops. A /trigger request
// on the control surface (or TriggerRealtime) forces an immediate cycle.
func (c *Coordinator) Monitor(ctx context.Context, specs []string) (<-chan stats.ProgressEvent, error) {
	if len(specs) == 0 {
		specs = feed.RealTimeSpecs()
	}
	if err := writer.EnsureTables(ctx, c.drv, c.feed); err != nil {
		return nil, err
	}

	events := make(chan stats.ProgressEvent, 16)

	prev := c.progress
	c.progress = func(e stats.ProgressEvent) {
		if prev != nil {
			prev(e)
		}
		select {
		case events <- e:
		default:
			// A slow consumer drops events, never blocks the pipeline.
		}
	}

	go func() {
		defer close(events)
		c.log.Info("live monitor started",
			zap.Strings("specs", specs),
			zap.Duration("interval", c.cfg.Monitor.Interval))

		for {
			c.runMonitorCycle(ctx, specs)

			timer := time.NewTimer(c.interval())
			select {
			case <-ctx.Done():
				timer.Stop()
				c.log.Info("live monitor stopped")
				return
			case kind := <-c.trigger:
				timer.Stop()
				if kind == "historical" {
					c.runHistoricalCatchup(ctx)
				}
				// Either trigger starts the next cycle immediately.
			case <-timer.C:
			}
		}
	}()

	return events, nil
}

// TriggerRealtime forces an immediate monitor cycle.
func (c *Coordinator) TriggerRealtime() {
	select {
	case c.trigger <- "realtime":
	default:
	}
}

// TriggerHistorical runs a one-day historical catch-up before the next
// cycle.
func (c *Coordinator) TriggerHistorical() {
	select {
	case c.trigger <- "historical":
	default:
	}
}

// interval picks the polling cadence: tighter around post time on race
// days (weekends and holidays are approximated by weekday).
func (c *Coordinator) interval() time.Duration {
	iv := c.cfg.Monitor.Interval
	if iv <= 0 {
		iv = 60 * time.Second
	}
	raceDay := c.cfg.Monitor.RaceDayInterval
	if raceDay <= 0 {
		raceDay = 30 * time.Second
	}
	now := time.Now()
	if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
		if h := now.Hour(); h >= 9 && h <= 17 {
			return raceDay
		}
	}
	return iv
}

// runMonitorCycle drains every real-time spec once.
func (c *Coordinator) runMonitorCycle(ctx context.Context, specs []string) {
	w := writer.New(c.drv, config.PipelineConfig{BatchSize: c.cfg.Pipeline.BatchSize}, c.cfg.Database, c.counters)

	for _, spec := range specs {
		if ctx.Err() != nil {
			return
		}
		mgr := session.NewManager(c.feed, c.cfg.Session, c.factory, c.counters)
		params := session.Params{Spec: spec, RealTime: true}

		if _, err := mgr.Run(ctx, params, c.makeEmit(ctx, w, feed.RealTime, "")); err != nil {
			if ctx.Err() != nil {
				break
			}
			c.log.Warn("real-time cycle failed",
				zap.String("spec", spec), zap.Error(err))
		}
	}

	if err := w.Flush(ctx); err != nil && ctx.Err() == nil {
		c.log.Error("real-time flush failed", zap.Error(err))
	}
	c.emit(stats.PhaseFlush, "")
}

// runHistoricalCatchup backfills today's accumulated data on demand.
func (c *Coordinator) runHistoricalCatchup(ctx context.Context) {
	today := time.Now()
	_, err := c.RunBackfill(ctx, BackfillParams{
		Spec: feed.SpecRace,
		From: today,
		To:   today,
	})
	if err != nil && ctx.Err() == nil {
		c.log.Warn("historical catch-up failed", zap.Error(err))
	}
}
