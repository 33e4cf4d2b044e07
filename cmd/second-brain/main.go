package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"second-brain/internal/adapters/browser"
	"second-brain/internal/adapters/capture"
	"second-brain/internal/adapters/storage/memory"
	"second-brain/internal/domain"
	cfgpkg "second-brain/internal/infrastructure/config"
	httpapi "second-brain/internal/infrastructure/httpapi"
	obs "second-brain/internal/infrastructure/observability"
	"second-brain/internal/usecase"
)

func main() {
	cfg := cfgpkg.FromEnv()

	logger := obs.NewLogger(cfg.LogLevel, cfg.DevMode)
	logger.Info().Str("addr", cfg.Addr).Str("version", obs.Version).Msg("starting second-brain")

	metrics := obs.NewMetrics()
	store := memory.NewStore(cfg.StoreQuotaBytes)

	settings := usecase.NewSettingsService(store, *logger)
	if err := settings.Install(context.Background()); err != nil {
		logger.Error().Err(err).Msg("settings install failed")
		os.Exit(1)
	}

	source := browser.NewSource(cfg.EventBufferSize, *logger)
	recorder := usecase.NewRecorder(store, settings, source, metrics, *logger)

	frames := capture.NewFrameBuffer(time.Duration(cfg.FrameMaxAgeSec) * time.Second)
	audioFeed := capture.NewAudioFeed()
	texts := capture.NewTextFeed()

	screens := usecase.NewScreenshotService(store, frames, capture.ImageProcessor{}, texts, source, settings, metrics, *logger)
	audio := usecase.NewAudioService(store, audioFeed, settings, metrics, *logger)
	forms := usecase.NewFormService(store, settings, metrics, *logger)

	runCtx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()
	go recorder.Run(runCtx, source.Events())

	// Periodic save alarm and store gauge refresh.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(fmt.Sprintf("@every %dm", cfg.RotateMinutes), source.AlarmTick); err != nil {
		logger.Error().Err(err).Msg("alarm schedule failed")
		os.Exit(1)
	}
	_, _ = scheduler.AddFunc("@every 1m", func() {
		if bytes, err := store.BytesInUse(context.Background()); err == nil {
			metrics.StoreBytes.Set(float64(bytes))
		}
	})
	scheduler.Start()

	deps := &httpapi.Deps{
		Cfg:      cfg,
		Logger:   logger,
		Metrics:  metrics,
		Store:    store,
		Source:   source,
		Recorder: recorder,
		Settings: settings,
		Screens:  screens,
		Audio:    audio,
		Forms:    forms,
		Frames:   frames,
		AudioIn:  audioFeed,
		Texts:    texts,
		Monitor:  httpapi.NewMonitorHub(),
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server error")
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	// Close out the in-progress session before exiting.
	source.IdleChanged(string(domain.IdleLocked))
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}
	logger.Info().Msg("second-brain stopped")
}
