package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/oklog/run"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"muxer/host/mcu"
)

// runWatch polls the firmware state until interrupted, serving metrics
// meanwhile.
func runWatch(m *mcu.MCU, interval time.Duration, metricsAddress string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	var g run.Group

	{
		logger := kitlog.With(logger, "component", "metrics")
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		server := &http.Server{Addr: metricsAddress, Handler: mux}

		g.Add(
			func() error {
				logger.Log("event", "metrics.listen", "address", metricsAddress)
				if err := server.ListenAndServe(); err != http.ErrServerClosed {
					return err
				}
				return nil
			},
			func(error) {
				server.Close()
			},
		)
	}

	{
		logger := kitlog.With(logger, "component", "watch")
		ctx, cancel := context.WithCancel(ctx)

		g.Add(
			func() error {
				return pollStatus(ctx, logger, m, interval)
			},
			func(error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// pollStatus queries the firmware state every interval and logs changes.
// It returns nil once ctx is done.
func pollStatus(ctx context.Context, logger kitlog.Logger, m *mcu.MCU, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last *mcu.Config
	for {
		cfg, err := m.GetConfig()
		if err != nil {
			return errors.Wrap(err, "failed to poll firmware state")
		}
		if last == nil || *last != cfg {
			logger.Log("event", "firmware.state", "configured", cfg.IsConfig, "crc", cfg.CRC, "shutdown", cfg.IsShutdown)
			last = &cfg
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// setupSignalHandler returns a context cancelled by the first interrupt; a
// second one exits immediately.
func setupSignalHandler() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

	go func() {
		<-sigc
		cancel()
		<-sigc
		panic("received second signal, exiting immediately")
	}()

	return ctx, cancel
}
