package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/drwave-www/waveengine/core"
	"github.com/drwave-www/waveengine/internal/logging"
	"github.com/drwave-www/waveengine/internal/observability"
	"github.com/drwave-www/waveengine/kb"
	"github.com/drwave-www/waveengine/model"
	"github.com/drwave-www/waveengine/timectrl"
)

func main() {
	manifestPath := flag.String("events", "configs/events.json", "path to the JSON event manifest")
	eventID := flag.String("event", "", "observe only this event ID (default: all)")
	lat := flag.Float64("lat", 12.5, "simulated user latitude")
	lon := flag.Float64("lon", 25.0, "simulated user longitude")
	speedMultiplier := flag.Float64("speed-multiplier", 60, "simulation clock speed factor (1 = real time)")
	maxDuration := flag.Duration("duration", 2*time.Minute, "maximum wall-clock run time")
	metricsAddr := flag.String("metrics-addr", "", "HTTP address for Prometheus /metrics (empty = disabled)")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	collector, err := observability.NewWaveCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.Err(err))
		os.Exit(1)
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	var metricsSrv *http.Server
	if *metricsAddr != "" {
		metricsSrv = serveMetrics(*metricsAddr, collector, log)
	}

	store := kb.NewEventStore()
	f, err := os.Open(*manifestPath)
	if err != nil {
		log.Error(ctx, "failed to open event manifest", logging.String("path", *manifestPath), logging.Err(err))
		os.Exit(1)
	}
	manifest, err := core.LoadEventManifest(store, f)
	f.Close()
	if err != nil {
		log.Error(ctx, "failed to load event manifest", logging.Err(err))
		os.Exit(1)
	}
	log.Info(ctx, "loaded event manifest",
		logging.String("path", *manifestPath),
		logging.Int("events", len(manifest.EventIDs)),
	)

	events := store.ListEvents()
	if *eventID != "" {
		ev := store.GetEvent(*eventID)
		if ev == nil {
			log.Error(ctx, "event not found in manifest", logging.String("event_id", *eventID))
			os.Exit(1)
		}
		events = []*model.EventDefinition{ev}
	}

	if len(events) == 0 {
		log.Error(ctx, "manifest contains no events")
		os.Exit(1)
	}

	// The single shared position source, fanned out to every observer.
	tracker := core.NewPositionTracker()
	tracker.Set(model.Position{Lat: *lat, Lon: *lon})

	// Run against a scaled clock anchored at the earliest wave start, so
	// the demo does not wait for the real event date.
	clockStart := events[0].WaveStart
	for _, ev := range events[1:] {
		if ev.WaveStart.Before(clockStart) {
			clockStart = ev.WaveStart
		}
	}
	clock := timectrl.NewSimClock(clockStart, timectrl.Config{SpeedMultiplier: *speedMultiplier})

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	runCtx, cancel := context.WithTimeout(runCtx, *maxDuration)
	defer cancel()

	var wg sync.WaitGroup
	for _, ev := range events {
		observer, err := core.NewObserver(ev, clock, tracker,
			core.WithLogger(log),
			core.WithMetrics(collector),
		)
		if err != nil {
			log.Error(ctx, "failed to build observer",
				logging.String("event_id", ev.ID),
				logging.Err(err),
			)
			os.Exit(1)
		}
		observer.AddListener(printUpdate)

		wg.Add(1)
		go func() {
			defer wg.Done()
			observer.Run(runCtx)
		}()
	}

	wg.Wait()
	log.Info(ctx, "simulation complete")

	if metricsSrv != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

// printUpdate is the demo's stand-in for the map-rendering layer.
func printUpdate(u core.Update) {
	traversed, remaining := 0, 0
	if u.Snapshot != nil {
		traversed = len(u.Snapshot.Traversed)
		remaining = len(u.Snapshot.Remaining)
	}
	hitMark := " "
	if u.Hit {
		hitMark = "*"
	}
	fmt.Printf("[%s]%s progression=%5.1f%% traversed=%d remaining=%d cleared=%v\n",
		u.EventID, hitMark, u.Progression*100, traversed, remaining, u.Cleared)
}

func serveMetrics(addr string, collector *observability.WaveCollector, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()
	log.Info(context.Background(), "serving metrics", logging.String("addr", addr))
	return srv
}
