package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"second-brain/internal/adapters/browser"
	"second-brain/internal/adapters/capture"
	"second-brain/internal/infrastructure/config"
	obs "second-brain/internal/infrastructure/observability"
	"second-brain/internal/usecase"
)

type Deps struct {
	Cfg      config.Config
	Logger   *zerolog.Logger
	Metrics  *obs.Metrics
	Store    usecase.KV
	Source   *browser.Source
	Recorder *usecase.Recorder
	Settings *usecase.SettingsService
	Screens  *usecase.ScreenshotService
	Audio    *usecase.AudioService
	Forms    *usecase.FormService
	Frames   *capture.FrameBuffer
	AudioIn  *capture.AudioFeed
	Texts    *capture.TextFeed
	Monitor  *MonitorHub
}

func NewRouter(d *Deps) http.Handler {
	return withCORS(d.Cfg, buildMux(d))
}

func buildMux(d *Deps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry(), promhttp.HandlerOpts{}))

	mux.HandleFunc("/api/v1/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"name":    "second-brain",
			"version": obs.Version,
			"time":    time.Now().UTC(),
		})
	})

	// Inter-context message dispatch (page/popup -> background).
	mux.HandleFunc("/api/v1/messages", d.handleMessage)

	// Browser signal ingestion feeding the event source adapter.
	mux.HandleFunc("/api/v1/signals/tab", d.handleTabSignal)
	mux.HandleFunc("/api/v1/signals/idle", d.handleIdleSignal)
	mux.HandleFunc("/api/v1/signals/frame", d.handleFrameSignal)
	mux.HandleFunc("/api/v1/signals/audio", d.handleAudioSignal)
	mux.HandleFunc("/api/v1/signals/text", d.handleTextSignal)

	// Read-only record collections.
	mux.HandleFunc("/api/v1/session/current", d.handleCurrentSession)
	mux.HandleFunc("/api/v1/sessions", d.handleListSessions)
	mux.HandleFunc("/api/v1/screenshots", d.handleScreenshots)
	mux.HandleFunc("/api/v1/screenshots/", d.handleScreenshotByID)
	mux.HandleFunc("/api/v1/audio", d.handleAudioCaptures)
	mux.HandleFunc("/api/v1/forms", d.handleFormSubmissions)

	// Settings snapshot, latest wins.
	mux.HandleFunc("/api/v1/settings", d.handleSettings)

	// Search and aggregation over store snapshots.
	mux.HandleFunc("/api/v1/search", d.handleSearch)
	mux.HandleFunc("/api/v1/search/domains", d.handleUniqueDomains)
	mux.HandleFunc("/api/v1/stats/", d.handleStats)

	// Capture triggers.
	mux.HandleFunc("/api/v1/capture/screenshot", d.handleCaptureScreenshot)
	mux.HandleFunc("/api/v1/capture/audio/start", d.handleAudioStart)
	mux.HandleFunc("/api/v1/capture/audio/stop", d.handleAudioStop)

	// Monitor streams for UI refresh notifications.
	mux.HandleFunc("/api/v1/monitor/ws", d.Monitor.HandleWS)
	mux.HandleFunc("/api/v1/monitor/events", d.handleMonitorEvents)

	return mux
}

func withCORS(cfg config.Config, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
