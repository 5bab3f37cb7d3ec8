// Package worker keeps the served timeline in sync with its source file.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tartampluch/go-timeline/internal/config"
	"github.com/tartampluch/go-timeline/internal/engine"
	"github.com/tartampluch/go-timeline/internal/locale"
	"github.com/zalando/go-keyring"
)

// Publisher receives every successful synchronization result.
type Publisher interface {
	Publish(res engine.Result)
}

// Syncer runs one synchronization. *engine.Generator implements it.
type Syncer interface {
	RunSync(ctx context.Context, cfg engine.SyncConfig) (engine.Result, error)
}

// Worker periodically converts the configured source and publishes the result.
// A failed run leaves the previously published result in place.
type Worker struct {
	syncer     Syncer
	publisher  Publisher
	source     config.SourceSettings
	translator *locale.Translator

	trigger    chan struct{}
	configChan chan time.Duration
	interval   time.Duration
}

// New creates a worker. Call Run to start it.
func New(syncer Syncer, publisher Publisher, settings config.Settings, tr *locale.Translator) *Worker {
	if tr == nil {
		tr = locale.New(settings.Language)
	}
	return &Worker{
		syncer:     syncer,
		publisher:  publisher,
		source:     settings.Source,
		translator: tr,
		trigger:    make(chan struct{}, config.ChannelBufferSize),
		configChan: make(chan time.Duration, config.ChannelBufferSize),
		interval:   settings.RefreshInterval(),
	}
}

// TriggerSync requests an immediate synchronization. Requests made while one
// is already pending are coalesced.
func (w *Worker) TriggerSync() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// SetInterval changes the refresh period of a running worker.
func (w *Worker) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case w.configChan <- d:
	default:
		// Replace a pending update so the latest value wins.
		select {
		case <-w.configChan:
		default:
		}
		select {
		case w.configChan <- d:
		default:
		}
	}
}

// Run synchronizes once, then on every tick or trigger until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	_ = w.SyncOnce(ctx, false)

	currentDuration := w.interval
	ticker := time.NewTicker(currentDuration)
	defer ticker.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, currentDuration)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return

		case d := <-w.configChan:
			if d != currentDuration {
				log.Info(config.MsgUpdateSync, config.LogKeyOld, currentDuration, config.LogKeyNew, d)
				currentDuration = d
				ticker.Reset(currentDuration)
			}

		case <-w.trigger:
			_ = w.SyncOnce(ctx, true)

		case <-ticker.C:
			_ = w.SyncOnce(ctx, false)
		}
	}
}

// SyncOnce runs the pipeline and publishes the result on success.
func (w *Worker) SyncOnce(ctx context.Context, manual bool) error {
	log := slog.With(
		config.LogKeyComponent, config.CompWorker,
		config.LogKeyRunID, uuid.NewString(),
	)
	log.InfoContext(ctx, config.MsgSyncReq, config.LogKeyManual, manual)

	res, err := w.syncer.RunSync(ctx, w.SyncConfig())
	if err != nil {
		log.ErrorContext(ctx, config.MsgSyncFailed,
			config.LogKeyError, err,
			config.LogKeyValue, w.translator.ErrorMessage(err),
		)
		return err
	}

	w.publisher.Publish(res)

	events := 0
	if res.Document != nil {
		events = len(res.Document.Events)
	}
	log.InfoContext(ctx, config.MsgSyncSuccess,
		config.LogKeyEvents, events,
		config.LogKeyValue, w.translator.SyncSummary(events, res.Rejected),
	)
	return nil
}

// SyncConfig assembles the engine configuration, reading the password from the
// OS keyring when a user is set and no password was configured.
func (w *Worker) SyncConfig() engine.SyncConfig {
	cfg := engine.SyncConfig{
		Mode:      w.source.Mode,
		LocalPath: w.source.Path,
		WebURL:    w.source.URL,
		WebUser:   w.source.User,
		WebPass:   w.source.Password,
		Delimiter: w.source.Delimiter,
	}

	if cfg.WebUser != "" && cfg.WebPass == "" {
		if p, err := keyring.Get(config.KeyringService, cfg.WebUser); err == nil {
			cfg.WebPass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyComponent, config.CompWorker,
				config.LogKeyUser, cfg.WebUser,
				config.LogKeyError, err)
		}
	}
	return cfg
}
