package httpapi

import (
	"encoding/json"
	"net/http"

	"second-brain/internal/domain"
	"second-brain/internal/usecase"
)

// messageEnvelope is the cross-context message shape used by the popup and
// page contexts. Only the fields relevant to the type are populated.
type messageEnvelope struct {
	Type       string                 `json:"type"`
	URL        string                 `json:"url,omitempty"`
	TabID      *int                   `json:"tabId,omitempty"`
	Trigger    string                 `json:"trigger,omitempty"`
	Permission string                 `json:"permission,omitempty"`
	FormData   *domain.FormSubmission `json:"formData,omitempty"`
}

// handleMessage dispatches one envelope the way the background context's
// message listener does: each type gets a synchronous response.
func (d *Deps) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST required", nil)
		return
	}
	var msg messageEnvelope
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid message envelope", nil)
		return
	}

	switch msg.Type {
	case "PING":
		writeJSON(w, map[string]any{"status": "OK", "url": msg.URL})

	case "CONTENT_SCRIPT_READY":
		d.Logger.Debug().Str("url", msg.URL).Msg("content script ready")
		writeJSON(w, map[string]any{"acknowledged": true})

	case "GET_CURRENT_SESSION":
		writeJSON(w, map[string]any{"session": d.Recorder.CurrentSession(r.Context())})

	case "GET_SETTINGS":
		settings, err := d.Settings.Get(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "store_error", err.Error(), nil)
			return
		}
		writeJSON(w, settings)

	case "GET_FORM_DATA":
		forms, err := d.Forms.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "store_error", err.Error(), nil)
			return
		}
		writeJSON(w, map[string]any{"formData": forms})

	case "FORM_SUBMITTED":
		if msg.FormData == nil {
			writeError(w, http.StatusBadRequest, "bad_request", "formData required", nil)
			return
		}
		if err := d.Forms.HandleSubmission(r.Context(), *msg.FormData); err != nil {
			writeError(w, http.StatusInternalServerError, "store_error", err.Error(), nil)
			return
		}
		d.Monitor.Broadcast(MonitorEvent{Type: "captured", ID: msg.FormData.ID, Kind: "form"})
		writeJSON(w, map[string]any{"stored": true})

	case "CAPTURE_SCREENSHOT":
		trigger := domain.ScreenshotTrigger(msg.Trigger)
		if trigger == "" {
			trigger = domain.TriggerManual
		}
		var (
			shot *domain.Screenshot
			err  error
		)
		if msg.TabID != nil {
			shot, err = d.Screens.CaptureWithTrigger(r.Context(), *msg.TabID, trigger)
		} else {
			shot, err = d.Screens.CaptureActiveTab(r.Context(), msg.URL, "")
		}
		if err != nil {
			// Page-originated capture requests never surface errors back
			// into the page; the listener acknowledges and moves on.
			d.Logger.Warn().Err(err).Str("url", msg.URL).Msg("message-triggered capture failed")
			writeJSON(w, map[string]any{"screenshot": nil})
			return
		}
		if shot != nil {
			d.Monitor.Broadcast(MonitorEvent{Type: "captured", ID: shot.ID, Kind: "screenshot"})
		}
		writeJSON(w, map[string]any{"screenshot": shot})

	case "MARK_PERMISSION_REQUESTED":
		if msg.Permission == "" {
			writeError(w, http.StatusBadRequest, "bad_request", "permission required", nil)
			return
		}
		if err := d.Settings.MarkPermissionRequested(r.Context(), msg.Permission); err != nil {
			writeError(w, http.StatusInternalServerError, "store_error", err.Error(), nil)
			return
		}
		writeJSON(w, map[string]any{"marked": true})

	case "PERMISSION_REQUESTED":
		if msg.Permission == "" {
			writeError(w, http.StatusBadRequest, "bad_request", "permission required", nil)
			return
		}
		writeJSON(w, map[string]any{"requested": d.Settings.PermissionRequested(r.Context(), msg.Permission)})

	case "GET_SEARCH_FILTERS":
		tabs, err := d.allTabEvents(r)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "store_error", err.Error(), nil)
			return
		}
		shots, _ := d.Screens.List(r.Context())
		forms, _ := d.Forms.List(r.Context())
		writeJSON(w, map[string]any{"domains": usecase.UniqueDomains(tabs, shots, forms)})

	default:
		writeError(w, http.StatusBadRequest, "unknown_message", "unrecognized message type: "+msg.Type, nil)
	}
}
