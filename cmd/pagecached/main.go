// Command pagecached runs the page-caching engine as a standalone
// process: it loads a YAML configuration, opens the cache file and its
// backend Store, wires them into a Device, and serves metrics over
// HTTP while an idle-eviction ticker opportunistically writes back
// dirty pages. The kernel block-device transport that would actually
// drive Device.Read/Write/Flush/Control is outside the core's scope;
// this binary exists to exercise and operate the engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nblockd/pagecached/internal/cache"
	"github.com/nblockd/pagecached/internal/config"
	"github.com/nblockd/pagecached/internal/device"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	flagConfig  = flag.String("config", "pagecached.yaml", "path to the YAML configuration file")
	flagVerbose = flag.Bool("v", false, "verbose logging")
)

func main() {
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *flagVerbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := run(log); err != nil {
		log.WithError(err).Fatal("pagecached exited with error")
	}
}

func run(log *logrus.Logger) error {
	cfg, err := config.Load(*flagConfig)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	backend, err := buildBackend(cfg.Backend, cfg.PageSizeBytes())
	if err != nil {
		return fmt.Errorf("build backend: %w", err)
	}

	c, err := cache.Open(cfg.CachePath, cfg.CacheSizeBytes(), cfg.PageSizeBytes(), backend)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.WithError(err).Error("closing cache")
		}
	}()

	dev := device.New(c)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	collector := newStatsCollector(dev)
	prometheus.MustRegister(collector)

	var srv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			log.WithField("addr", cfg.MetricsAddr).Info("serving metrics")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("metrics server stopped")
			}
		}()
	}

	log.WithFields(logrus.Fields{
		"cache_path": cfg.CachePath,
		"cache_size": cfg.CacheSizeBytes(),
		"page_size":  cfg.PageSizeBytes(),
	}).Info("pagecached started")

	runIdleEviction(ctx, log, dev, cfg.IdleEvictionPeriod, cfg.IdleThreshold)

	if err := dev.Control(context.Background(), device.Control{Kind: device.ControlShutdown}); err != nil {
		log.WithError(err).Error("control shutdown")
	}
	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}

	log.Info("pagecached stopped")
	return nil
}

// runIdleEviction periodically drives the Device's idle-eviction
// control message until ctx is canceled. It runs on the caller's
// goroutine, so Control is never called concurrently with another
// Device operation; the metrics handler reads only the Device's atomic
// counters from its own goroutine.
func runIdleEviction(ctx context.Context, log *logrus.Logger, dev *device.Device, period, idle time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := dev.Control(ctx, device.Control{Kind: device.ControlEvict, Idle: idle}); err != nil {
				log.WithError(err).Warn("idle eviction control failed")
			}
		}
	}
}
