package daemon

import (
	"context"
	"time"

	"github.com/matheus3301/wamirror/internal/bus"
	"github.com/matheus3301/wamirror/internal/config"
	"github.com/matheus3301/wamirror/internal/lock"
	"github.com/matheus3301/wamirror/internal/logging"
	"github.com/matheus3301/wamirror/internal/session"
	"github.com/matheus3301/wamirror/internal/snapshot"
	"github.com/matheus3301/wamirror/internal/status"
	"github.com/matheus3301/wamirror/internal/store"
	intsync "github.com/matheus3301/wamirror/internal/sync"
	"github.com/matheus3301/wamirror/internal/wa"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved session configuration passed to the fx module.
type Params struct {
	SessionName string
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideConfig,
			provideBus,
			provideStateMachine,
			provideLock,
			provideMirror,
			provideAdapter,
			provideEngine,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(session.LogPath(p.SessionName), p.SessionName)
}

func provideConfig(logger *zap.Logger) *config.Config {
	cfg, err := config.Load(session.ConfigPath())
	if err != nil {
		logger.Info("no config file, using defaults")
		return &config.Config{}
	}
	return cfg
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := session.EnsureDir(p.SessionName); err != nil {
		return nil, err
	}
	logger.Info("acquiring session lock", zap.String("session", p.SessionName))
	l, err := lock.Acquire(session.Dir(p.SessionName))
	if err != nil {
		return nil, err
	}
	logger.Info("session lock acquired")
	return l, nil
}

func provideMirror() *store.Mirror {
	return store.NewMirror()
}

func provideAdapter(p Params, b *bus.Bus, logger *zap.Logger) (*wa.Adapter, error) {
	return wa.NewAdapter(context.Background(), p.SessionName, b, logger)
}

func provideEngine(m *store.Mirror, b *bus.Bus, adapter *wa.Adapter, cfg *config.Config, logger *zap.Logger) *intsync.Engine {
	fetchTimeout := time.Duration(cfg.FetchTimeoutSeconds) * time.Second
	return intsync.NewEngine(m, b, adapter, fetchTimeout, logger)
}

func registerLifecycle(lc fx.Lifecycle, p Params, lk *lock.Lock, adapter *wa.Adapter, engine *intsync.Engine, mirror *store.Mirror, machine *status.Machine, cfg *config.Config, b *bus.Bus, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// Start the reconciliation engine; it subscribes to wa.* bus events.
			engine.Start(context.Background())

			handler := wa.NewEventHandler(b, machine, adapter, logger)
			adapter.RegisterEventHandler(handler.Handle)

			if adapter.IsLoggedIn() {
				_ = machine.Transition(status.Connecting)
				go connect(adapter, mirror, machine, logger)
			} else {
				logger.Info("no credentials found, QR pairing required")
				_ = machine.Transition(status.AuthRequired)
				go pair(adapter, mirror, machine, p.SessionName, logger)
			}

			return nil
		},
		OnStop: func(ctx context.Context) error {
			engine.Stop()
			adapter.Disconnect()
			if cfg.SnapshotOnShutdown {
				path := session.SnapshotPath(p.SessionName)
				res, err := snapshot.Export(mirror, path, logger)
				if err != nil {
					logger.Error("snapshot export failed", zap.Error(err))
				} else {
					b.Publish(bus.Event{
						Kind:      "mirror.snapshot_written",
						Timestamp: time.Now(),
						Payload:   res,
					})
				}
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}

func connect(adapter *wa.Adapter, mirror *store.Mirror, machine *status.Machine, logger *zap.Logger) {
	if err := adapter.Connect(); err != nil {
		logger.Error("auto-connect failed", zap.Error(err))
		_ = machine.Transition(status.Error)
		return
	}
	seedGroups(adapter, mirror)
}

// pair runs the QR flow to completion. On success the adapter is already
// connected; on failure the daemon stays in AUTH_REQUIRED waiting for a
// restart.
func pair(adapter *wa.Adapter, mirror *store.Mirror, machine *status.Machine, sessionName string, logger *zap.Logger) {
	events, err := adapter.StartQRAuth(context.Background(), session.QRPath(sessionName))
	if err != nil {
		logger.Error("QR auth failed to start", zap.Error(err))
		_ = machine.Transition(status.Error)
		return
	}
	for evt := range events {
		switch evt.Type {
		case wa.AuthEventAuthenticated:
			seedGroups(adapter, mirror)
		case wa.AuthEventAuthFailed, wa.AuthEventTimeout:
			logger.Warn("QR pairing did not complete", zap.String("reason", evt.Message))
		}
	}
}

// seedGroups preloads group metadata into the mirror's passthrough map.
// Group metadata is not covered by history sync, so it is fetched once
// after connecting.
func seedGroups(adapter *wa.Adapter, mirror *store.Mirror) {
	for _, g := range adapter.JoinedGroups(context.Background()) {
		mirror.PutGroupMetadata(g)
	}
}
