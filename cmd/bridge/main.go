// cmd/bridge/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tamzrod/modbus-pointbridge/internal/changelog"
	"github.com/tamzrod/modbus-pointbridge/internal/config"
	"github.com/tamzrod/modbus-pointbridge/internal/logging"
	"github.com/tamzrod/modbus-pointbridge/internal/mqtt"
	"github.com/tamzrod/modbus-pointbridge/internal/point"
	"github.com/tamzrod/modbus-pointbridge/internal/poller"
	"github.com/tamzrod/modbus-pointbridge/internal/writer"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: bridge <config.yaml>")
	}

	cfgPath := os.Args[1]

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}

	config.Normalize(cfg)

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("logging setup failed: %v", err)
	}

	// --------------------
	// Points (bad entries are skipped, not fatal)
	// --------------------

	reg, skipped := point.Build(cfg.Points, logger)
	if len(skipped) > 0 {
		logger.WithField("skipped", len(skipped)).Warn("some points were not usable")
	}
	logger.WithField("points", reg.Len()).Info("registry built")

	// --------------------
	// Sinks
	// --------------------

	var changes poller.ChangeSink
	if cfg.ChangeLog.Path != "" {
		cl, err := changelog.Open(cfg.ChangeLog.Path)
		if err != nil {
			log.Fatalf("change log open failed: %v", err)
		}
		defer func() {
			if err := cl.Close(); err != nil {
				logger.WithError(err).Error("change log close failed")
			}
		}()
		changes = cl
	}

	var bridge *mqtt.Bridge
	var statusSink poller.StatusSink
	if cfg.MQTT.Enabled() {
		bridge = mqtt.New(cfg.MQTT, logger)
		statusSink = bridge
	}

	// --------------------
	// Session + write path
	// --------------------

	sess, dispatcher, err := poller.Build(cfg, reg, changes, statusSink, logger)
	if err != nil {
		log.Fatalf("poller build failed: %v", err)
	}

	w := writer.New(reg, sess, logger)

	if bridge != nil {
		dispatcher.Subscribe(bridge)
		if err := bridge.Connect(w); err != nil {
			log.Fatalf("mqtt connect failed: %v", err)
		}
		defer bridge.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithField("endpoint", cfg.Source.Endpoint()).Info("bridge started")

	// blocks until a signal arrives
	sess.Run(ctx)
}
