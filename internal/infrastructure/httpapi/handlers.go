package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"second-brain/internal/domain"
	"second-brain/internal/usecase"
)

func (d *Deps) handleCurrentSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "GET required", nil)
		return
	}
	writeJSON(w, map[string]any{"session": d.Recorder.CurrentSession(r.Context())})
}

func (d *Deps) handleListSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sessions, err := d.readSessions(r)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "store_error", err.Error(), nil)
			return
		}
		writeJSON(w, map[string]any{"sessions": sessions})
	case http.MethodDelete:
		if err := d.Store.Set(r.Context(), domain.KeySessions, []domain.BrowsingSession{}); err != nil {
			writeError(w, http.StatusInternalServerError, "store_error", err.Error(), nil)
			return
		}
		writeJSON(w, map[string]any{"cleared": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "GET or DELETE required", nil)
	}
}

func (d *Deps) readSessions(r *http.Request) ([]domain.BrowsingSession, error) {
	var sessions []domain.BrowsingSession
	if _, err := d.Store.Get(r.Context(), domain.KeySessions, &sessions); err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []domain.BrowsingSession{}
	}
	return sessions, nil
}

// allTabEvents flattens the saved sessions plus the in-progress one into a
// single chronological record list for search and aggregation.
func (d *Deps) allTabEvents(r *http.Request) ([]domain.TabEvent, error) {
	sessions, err := d.readSessions(r)
	if err != nil {
		return nil, err
	}
	tabs := make([]domain.TabEvent, 0)
	for _, s := range sessions {
		tabs = append(tabs, s.Tabs...)
	}
	if current := d.Recorder.CurrentSession(r.Context()); current != nil {
		tabs = append(tabs, current.Tabs...)
	}
	return tabs, nil
}

func (d *Deps) handleScreenshots(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var (
			shots []domain.Screenshot
			err   error
		)
		if url := r.URL.Query().Get("url"); url != "" {
			shots, err = d.Screens.ByURL(r.Context(), url)
		} else {
			shots, err = d.Screens.List(r.Context())
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "store_error", err.Error(), nil)
			return
		}
		size, _ := d.Screens.TotalSize(r.Context())
		writeJSON(w, map[string]any{"screenshots": shots, "totalSize": size})
	case http.MethodDelete:
		if err := d.Screens.ClearAll(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "store_error", err.Error(), nil)
			return
		}
		writeJSON(w, map[string]any{"cleared": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "GET or DELETE required", nil)
	}
}

func (d *Deps) handleScreenshotByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/screenshots/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not_found", "unknown screenshot", nil)
		return
	}
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "DELETE required", nil)
		return
	}
	if err := d.Screens.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "store_error", err.Error(), nil)
		return
	}
	d.Monitor.Broadcast(MonitorEvent{Type: "deleted", ID: id, Kind: "screenshot"})
	writeJSON(w, map[string]any{"deleted": id})
}

func (d *Deps) handleAudioCaptures(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		captures, err := d.Audio.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "store_error", err.Error(), nil)
			return
		}
		writeJSON(w, map[string]any{"captures": captures, "recording": d.Audio.Recording()})
	case http.MethodDelete:
		if id := r.URL.Query().Get("id"); id != "" {
			if err := d.Audio.Delete(r.Context(), id); err != nil {
				writeError(w, http.StatusInternalServerError, "store_error", err.Error(), nil)
				return
			}
			writeJSON(w, map[string]any{"deleted": id})
			return
		}
		if err := d.Audio.ClearAll(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "store_error", err.Error(), nil)
			return
		}
		writeJSON(w, map[string]any{"cleared": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "GET or DELETE required", nil)
	}
}

func (d *Deps) handleFormSubmissions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		forms, err := d.Forms.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "store_error", err.Error(), nil)
			return
		}
		writeJSON(w, map[string]any{"submissions": forms})
	case http.MethodDelete:
		if err := d.Forms.ClearAll(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "store_error", err.Error(), nil)
			return
		}
		writeJSON(w, map[string]any{"cleared": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "GET or DELETE required", nil)
	}
}

func (d *Deps) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := d.Settings.Get(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "store_error", err.Error(), nil)
			return
		}
		writeJSON(w, settings)
	case http.MethodPut, http.MethodPost:
		var settings domain.UserSettings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "invalid settings body", nil)
			return
		}
		if err := d.Settings.Save(r.Context(), settings); err != nil {
			writeError(w, http.StatusInternalServerError, "store_error", err.Error(), nil)
			return
		}
		d.Monitor.Broadcast(MonitorEvent{Type: "settings"})
		writeJSON(w, settings)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "GET or PUT required", nil)
	}
}

// searchResponse groups per-kind scored results; absent kinds marshal as null.
type searchResponse struct {
	Tabs        []usecase.SearchResult[domain.TabEvent]        `json:"tabs,omitempty"`
	Screenshots []usecase.SearchResult[domain.Screenshot]      `json:"screenshots,omitempty"`
	Forms       []usecase.SearchResult[domain.FormSubmission]  `json:"forms,omitempty"`
	Audio       []usecase.SearchResult[domain.AudioCapture]    `json:"audio,omitempty"`
}

func (d *Deps) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST required", nil)
		return
	}
	var filters usecase.SearchFilters
	if err := json.NewDecoder(r.Body).Decode(&filters); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid search filters", nil)
		return
	}
	if len(filters.Types) == 0 {
		filters.Types = []string{usecase.KindTabs, usecase.KindScreenshots, usecase.KindForms, usecase.KindAudio}
	}

	tabs, err := d.allTabEvents(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store_error", err.Error(), nil)
		return
	}
	shots, err := d.Screens.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store_error", err.Error(), nil)
		return
	}
	forms, err := d.Forms.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store_error", err.Error(), nil)
		return
	}
	captures, err := d.Audio.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store_error", err.Error(), nil)
		return
	}

	writeJSON(w, searchResponse{
		Tabs:        usecase.SearchTabs(tabs, filters),
		Screenshots: usecase.SearchScreenshots(shots, filters),
		Forms:       usecase.SearchForms(forms, filters),
		Audio:       usecase.SearchAudio(captures, filters),
	})
}

func (d *Deps) handleUniqueDomains(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "GET required", nil)
		return
	}
	tabs, err := d.allTabEvents(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store_error", err.Error(), nil)
		return
	}
	shots, _ := d.Screens.List(r.Context())
	forms, _ := d.Forms.List(r.Context())
	captures, _ := d.Audio.List(r.Context())

	min, max, ok := usecase.DateRange(tabs, shots, forms, captures)
	resp := map[string]any{"domains": usecase.UniqueDomains(tabs, shots, forms)}
	if ok {
		resp["dateRange"] = map[string]int64{"min": min, "max": max}
	}
	writeJSON(w, resp)
}

func (d *Deps) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "GET required", nil)
		return
	}
	tabs, err := d.allTabEvents(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store_error", err.Error(), nil)
		return
	}

	now := time.Now()
	switch strings.TrimPrefix(r.URL.Path, "/api/v1/stats/") {
	case "timeline":
		writeJSON(w, map[string]any{"timeline": usecase.Timeline(tabs, now)})
	case "domains":
		writeJSON(w, map[string]any{"domains": usecase.TopDomains(tabs, 10)})
	case "daily":
		writeJSON(w, map[string]any{"days": usecase.DailyActivity(tabs, now)})
	case "heatmap":
		writeJSON(w, map[string]any{"heatmap": usecase.ActivityHeatmap(tabs)})
	case "productivity":
		avg := usecase.AverageSessionDuration(tabs)
		writeJSON(w, map[string]any{
			"insights":               usecase.Productivity(tabs),
			"averageSessionDuration": avg,
			"averageSessionLabel":    usecase.FormatDuration(int64(avg)),
		})
	case "captures":
		shots, _ := d.Screens.List(r.Context())
		forms, _ := d.Forms.List(r.Context())
		captures, _ := d.Audio.List(r.Context())
		writeJSON(w, map[string]any{
			"counts":       usecase.CountCaptures(tabs, shots, forms, captures),
			"distribution": usecase.ContentTypeDistribution(tabs, shots, forms, captures),
		})
	case "storage":
		bytes, err := d.Store.BytesInUse(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "store_error", err.Error(), nil)
			return
		}
		writeJSON(w, map[string]any{"bytesInUse": bytes, "quotaBytes": d.Cfg.StoreQuotaBytes})
	default:
		writeError(w, http.StatusNotFound, "not_found", "unknown stats view", nil)
	}
}

func (d *Deps) handleCaptureScreenshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST required", nil)
		return
	}
	var req struct {
		URL     string `json:"url"`
		Title   string `json:"title"`
		TabID   *int   `json:"tabId,omitempty"`
		Trigger string `json:"trigger,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid capture request", nil)
		return
	}

	var (
		shot *domain.Screenshot
		err  error
	)
	if req.TabID != nil {
		trigger := domain.ScreenshotTrigger(req.Trigger)
		if trigger == "" {
			trigger = domain.TriggerManual
		}
		shot, err = d.Screens.CaptureWithTrigger(r.Context(), *req.TabID, trigger)
	} else {
		shot, err = d.Screens.CaptureActiveTab(r.Context(), req.URL, req.Title)
	}
	if err != nil {
		writeCaptureError(w, err)
		return
	}
	if shot != nil {
		d.Monitor.Broadcast(MonitorEvent{Type: "captured", ID: shot.ID, Kind: "screenshot"})
	}
	writeJSON(w, map[string]any{"screenshot": shot})
}

func (d *Deps) handleAudioStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST required", nil)
		return
	}
	var req struct {
		TabID int `json:"tabId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid audio request", nil)
		return
	}
	capture, err := d.Audio.StartCapture(r.Context(), req.TabID)
	if err != nil {
		writeCaptureError(w, err)
		return
	}
	d.Monitor.Broadcast(MonitorEvent{Type: "captured", ID: capture.ID, Kind: "audio"})
	writeJSON(w, map[string]any{"capture": capture})
}

func (d *Deps) handleAudioStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST required", nil)
		return
	}
	capture, err := d.Audio.StopCapture(r.Context())
	if err != nil && capture == nil {
		writeCaptureError(w, err)
		return
	}
	// A failed stop still finalized a record; report it with the failure.
	resp := map[string]any{"capture": capture}
	if err != nil {
		resp["error"] = err.Error()
	}
	writeJSON(w, resp)
}

func writeCaptureError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrCaptureDisabled):
		writeError(w, http.StatusForbidden, "capture_disabled", err.Error(), nil)
	case errors.Is(err, usecase.ErrExcludedDomain):
		writeError(w, http.StatusForbidden, "excluded_domain", err.Error(), nil)
	case errors.Is(err, usecase.ErrCaptureInProgress):
		writeError(w, http.StatusConflict, "capture_in_progress", err.Error(), nil)
	case errors.Is(err, usecase.ErrNoActiveCapture):
		writeError(w, http.StatusConflict, "no_active_capture", err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "capture_failed", err.Error(), nil)
	}
}
