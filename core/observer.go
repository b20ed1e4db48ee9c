package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/drwave-www/waveengine/internal/logging"
	"github.com/drwave-www/waveengine/internal/observability"
	"github.com/drwave-www/waveengine/model"
	"github.com/drwave-www/waveengine/timectrl"
)

// gapRecomposeFactor decides when an observation gap invalidates the
// incremental split: if more than this many expected intervals passed
// since the last tick, the next recomputation starts from scratch.
const gapRecomposeFactor = 4

// Update is one observation tick's output, republished to listeners
// (typically a map-rendering layer and a notification layer).
type Update struct {
	EventID string
	// Snapshot is the current area partition, nil while the wave has not
	// produced a split yet (not started, or no area polygons).
	Snapshot *model.WavePolygons
	// Cleared is set when Snapshot was fully recomposed rather than grown
	// incrementally; consumers drop previously drawn polygons first.
	Cleared bool
	Hit     bool
	// Progression is the crossing fraction, 0..1 and beyond once done.
	Progression float64
}

// Observer drives one event's wave-state recomputation: a sequential,
// cancellable loop of poll, compute, emit, delay. Recomputations for the
// same event never overlap, and the snapshot passed into each computation
// is exactly the previous one, which the ADD update mode depends on.
type Observer struct {
	event     *model.EventDefinition
	wave      *Wave
	clock     timectrl.Clock
	positions PositionProvider
	policy    SchedulePolicy
	log       logging.Logger
	metrics   *observability.WaveCollector

	mu        sync.Mutex
	listeners []func(Update)
	cancel    context.CancelFunc
	done      chan struct{}
}

// ObserverOption configures optional observer collaborators.
type ObserverOption func(*Observer)

// WithLogger attaches a structured logger to the loop.
func WithLogger(l logging.Logger) ObserverOption {
	return func(o *Observer) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMetrics attaches the Prometheus collector.
func WithMetrics(c *observability.WaveCollector) ObserverOption {
	return func(o *Observer) { o.metrics = c }
}

// WithPolicy overrides the scheduling policy; zero fields are filled from
// the defaults.
func WithPolicy(p SchedulePolicy) ObserverOption {
	return func(o *Observer) { o.policy = p.ApplyDefaults() }
}

// NewObserver builds the observation pipeline for one event. The position
// provider is the single shared GPS source; the clock may be scaled for
// demos. Construction fails on the same configuration errors as NewWave.
func NewObserver(event *model.EventDefinition, clock timectrl.Clock, positions PositionProvider, opts ...ObserverOption) (*Observer, error) {
	if positions == nil {
		positions = NoPosition{}
	}
	wave, err := NewWave(event, clock, positions)
	if err != nil {
		return nil, err
	}

	o := &Observer{
		event:     event,
		wave:      wave,
		clock:     clock,
		positions: positions,
		policy:    DefaultSchedulePolicy(),
		log:       logging.Noop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Wave returns the underlying wave model.
func (o *Observer) Wave() *Wave { return o.wave }

// AddListener registers a callback invoked on every tick. Listeners run
// on the loop goroutine and must return promptly.
func (o *Observer) AddListener(fn func(Update)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, fn)
}

// Start launches the observation loop on its own goroutine. It returns an
// error if the observer is already running. The loop always begins from a
// clean state: restarts never resume a previous run's snapshot.
func (o *Observer) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		return fmt.Errorf("observer for event %q already running", o.event.ID)
	}

	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	done := make(chan struct{})
	o.done = done

	go func() {
		defer close(done)
		o.Run(ctx)
	}()
	return nil
}

// Stop cancels the loop and waits for it to exit, so an in-flight
// recomputation cannot complete late and overwrite a later restart.
func (o *Observer) Stop() {
	o.mu.Lock()
	cancel := o.cancel
	done := o.done
	o.cancel = nil
	o.done = nil
	o.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Run executes the observation loop until ctx is cancelled or the event
// is done and fully swept. Most callers use Start/Stop; Run is exposed
// for callers that want to own the goroutine.
func (o *Observer) Run(ctx context.Context) {
	ctx, log := logging.WithObservationLogger(ctx, o.log)
	log = log.With(logging.String("event_id", o.event.ID))

	o.metrics.ObservationStarted()
	defer o.metrics.ObservationStopped()

	log.Info(ctx, "observation started",
		logging.Time("wave_start", o.event.WaveStart),
	)

	var last *model.WavePolygons
	var lastTick time.Time
	var lastInterval time.Duration
	wasHit := false

	for {
		if ctx.Err() != nil {
			log.Info(ctx, "observation cancelled")
			return
		}

		now := o.clock.Now()

		mode := model.UpdateAdd
		if last == nil {
			mode = model.UpdateRecompose
		} else if !lastTick.IsZero() && lastInterval > 0 &&
			now.Sub(lastTick) > gapRecomposeFactor*lastInterval {
			// The loop fell far behind its own cadence (backgrounded or
			// suspended); the incremental state can no longer be trusted.
			mode = model.UpdateRecompose
			log.Warn(ctx, "observation gap detected, recomposing",
				logging.Duration("gap", now.Sub(lastTick)),
			)
		}
		if mode == model.UpdateRecompose {
			last = nil
		}

		_, span := observability.StartObservationSpan(ctx, o.event.ID, mode.String())
		computeStart := time.Now()
		snapshot := o.wave.WavePolygons(last, mode)
		o.metrics.ObserveRecompute(o.event.ID, mode.String(), time.Since(computeStart))
		span.End()

		hit := o.wave.UserHit()
		progression := o.wave.Progression()
		o.metrics.SetProgression(o.event.ID, progression)
		if hit && !wasHit {
			o.metrics.IncHit(o.event.ID)
			log.Info(ctx, "user hit by wavefront",
				logging.Float("progression", progression),
			)
		}
		wasHit = hit

		o.emit(Update{
			EventID:     o.event.ID,
			Snapshot:    snapshot,
			Cleared:     snapshot != nil && mode == model.UpdateRecompose,
			Hit:         hit,
			Progression: progression,
		})
		if snapshot != nil {
			last = snapshot
		}

		if o.event.IsDone(now) && (snapshot == nil || len(snapshot.Remaining) == 0) {
			log.Info(ctx, "observation complete",
				logging.Float("progression", progression),
			)
			return
		}

		timeToHit, known := o.wave.TimeUntilHit()
		interval := o.policy.Interval(ProximitySignal{
			EventRunning:   o.event.IsRunning(now),
			TimeToHit:      timeToHit,
			TimeToHitKnown: known && !hit,
		})
		o.metrics.ObserveInterval(interval)
		log.Debug(ctx, "observation tick",
			logging.String("mode", mode.String()),
			logging.Duration("interval", interval),
			logging.Float("progression", progression),
		)

		lastTick = now
		lastInterval = interval
		if err := o.clock.Delay(ctx, interval); err != nil {
			log.Info(ctx, "observation cancelled")
			return
		}
	}
}

func (o *Observer) emit(u Update) {
	o.mu.Lock()
	listeners := o.listeners
	o.mu.Unlock()
	for _, fn := range listeners {
		fn(u)
	}
}
