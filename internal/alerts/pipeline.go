package alerts

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/aeroshieldgt/enviro-api/internal/envdata"
)

// SnapshotProvider hands the pipeline its input for one cycle.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (*envdata.Snapshot, error)
}

// CycleMetrics receives pipeline counters. Implemented by the
// prometheus collector; a nil value disables recording.
type CycleMetrics interface {
	ObserveCycleDuration(d time.Duration)
	IncDetected(hazard string)
	IncSent(hazard string)
	IncSuppressed(hazard string)
	IncDispatchFailed(hazard string)
}

// AlertSink receives every dispatched alert for live fan-out to
// connected clients. A nil value disables fan-out.
type AlertSink interface {
	Publish(a *Alert)
}

// namedEvaluator keeps the domain label next to its rule function so
// panics and counters can be attributed.
type namedEvaluator struct {
	name string
	fn   Evaluator
}

// Pipeline runs the full detect/dedup/dispatch cycle. One cycle at a
// time; domain evaluators run concurrently within a cycle, dispatch is
// sequential so the persistence and push ordering stays deterministic.
type Pipeline struct {
	provider   SnapshotProvider
	dispatcher *Dispatcher
	window     *Window
	evaluators []namedEvaluator
	thresholds func() Thresholds
	metrics    CycleMetrics
	sink       AlertSink

	cycleMu sync.Mutex
}

// NewPipeline wires the standard evaluator set in fixed order:
// air quality, earthquakes, volcanoes, weather. thresholds is read
// once per cycle so hot-reload lands on a cycle boundary.
func NewPipeline(provider SnapshotProvider, dispatcher *Dispatcher, window *Window, thresholds func() Thresholds, metrics CycleMetrics, sink AlertSink) *Pipeline {
	return &Pipeline{
		provider:   provider,
		dispatcher: dispatcher,
		window:     window,
		thresholds: thresholds,
		metrics:    metrics,
		sink:       sink,
		evaluators: []namedEvaluator{
			{string(HazardAirQuality), EvaluateAirQuality},
			{string(HazardEarthquake), EvaluateEarthquakes},
			{string(HazardVolcano), EvaluateVolcanoes},
			{string(HazardWeather), EvaluateWeather},
		},
	}
}

// RunCycle executes one full cycle. Returns an error only when the
// snapshot itself cannot be fetched; evaluator panics and per-alert
// dispatch failures are absorbed into the result counts.
func (p *Pipeline) RunCycle(ctx context.Context) (*CycleResult, error) {
	p.cycleMu.Lock()
	defer p.cycleMu.Unlock()

	started := time.Now()
	defer func() {
		if p.metrics != nil {
			p.metrics.ObserveCycleDuration(time.Since(started))
		}
	}()

	snap, err := p.provider.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}

	t := p.thresholds()

	// Evaluators are pure, so they can run in parallel. Results are
	// collected by index to keep the domain order stable for dispatch.
	results := make([][]Alert, len(p.evaluators))
	var wg sync.WaitGroup
	for i, ev := range p.evaluators {
		wg.Add(1)
		go func(i int, ev namedEvaluator) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					// One bad domain must not take down the cycle.
					log.Printf("pipeline: %s evaluator panicked: %v", ev.name, r)
					results[i] = nil
				}
			}()
			results[i] = ev.fn(t, snap)
		}(i, ev)
	}
	wg.Wait()

	res := &CycleResult{RanAt: started.UTC()}
	for _, batch := range results {
		for i := range batch {
			a := &batch[i]
			res.AlertsDetected++
			if p.metrics != nil {
				p.metrics.IncDetected(string(a.HazardType))
			}

			if !p.window.ShouldEmit(a) {
				res.AlertsSuppressed++
				if p.metrics != nil {
					p.metrics.IncSuppressed(string(a.HazardType))
				}
				continue
			}

			outcome, err := p.dispatcher.Dispatch(ctx, a)
			if err != nil || !outcome.Delivered {
				res.AlertsFailed++
				if p.metrics != nil {
					p.metrics.IncDispatchFailed(string(a.HazardType))
				}
				// Not marked: the next cycle in this hour retries it.
				continue
			}

			p.window.MarkEmitted(a)
			res.AlertsSent++
			if p.metrics != nil {
				p.metrics.IncSent(string(a.HazardType))
			}
			if p.sink != nil {
				p.sink.Publish(a)
			}
		}
	}

	log.Printf("pipeline: cycle done in %s: detected=%d sent=%d suppressed=%d failed=%d",
		time.Since(started).Round(time.Millisecond),
		res.AlertsDetected, res.AlertsSent, res.AlertsSuppressed, res.AlertsFailed)
	return res, nil
}

// Evaluate runs the evaluator set against a snapshot without
// dispatching anything. Used by the read-only check endpoint.
func (p *Pipeline) Evaluate(snap *envdata.Snapshot) []Alert {
	t := p.thresholds()
	var out []Alert
	for _, ev := range p.evaluators {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("pipeline: %s evaluator panicked: %v", ev.name, r)
				}
			}()
			out = append(out, ev.fn(t, snap)...)
		}()
	}
	return out
}
