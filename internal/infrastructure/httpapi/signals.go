package httpapi

import (
	"encoding/json"
	"net/http"

	"second-brain/internal/adapters/browser"
)

// Browser signal ingestion. The extension-side shim forwards raw callback
// payloads here; the source adapter normalizes them into typed events.

type tabSignalBody struct {
	Event string `json:"event"`
	browser.TabSignal
}

func (d *Deps) handleTabSignal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST required", nil)
		return
	}
	var body tabSignalBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid tab signal", nil)
		return
	}
	switch body.Event {
	case "created":
		d.Source.TabCreated(body.TabSignal)
	case "updated":
		d.Source.TabUpdated(body.TabSignal)
	case "activated":
		d.Source.TabActivated(body.TabID)
	case "removed":
		d.Source.TabRemoved(body.TabID)
	default:
		writeError(w, http.StatusBadRequest, "bad_request", "unknown tab event: "+body.Event, nil)
		return
	}
	writeJSON(w, map[string]any{"accepted": true})
}

func (d *Deps) handleIdleSignal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST required", nil)
		return
	}
	var body struct {
		State string `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid idle signal", nil)
		return
	}
	d.Source.IdleChanged(body.State)
	writeJSON(w, map[string]any{"accepted": true})
}

// handleFrameSignal accepts a freshly encoded viewport frame from the browser
// context. Frames feed the screen-capture primitive.
func (d *Deps) handleFrameSignal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST required", nil)
		return
	}
	var body struct {
		DataURL string `json:"dataUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid frame signal", nil)
		return
	}
	if body.DataURL == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "dataUrl required", nil)
		return
	}
	d.Frames.Submit(body.DataURL)
	writeJSON(w, map[string]any{"accepted": true})
}

// handleTextSignal accepts the visible text a page context extracted for its
// tab. The latest submission backs text extraction at capture time.
func (d *Deps) handleTextSignal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST required", nil)
		return
	}
	var body struct {
		TabID int    `json:"tabId"`
		Text  string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid text signal", nil)
		return
	}
	d.Texts.Submit(body.TabID, body.Text)
	writeJSON(w, map[string]any{"accepted": true})
}

// handleAudioSignal accepts one encoded audio chunk for a tab. Chunks for
// tabs without an open recording are dropped, mirroring a muted track.
func (d *Deps) handleAudioSignal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST required", nil)
		return
	}
	var body struct {
		TabID int    `json:"tabId"`
		Chunk []byte `json:"chunk"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid audio signal", nil)
		return
	}
	accepted := d.AudioIn.Push(body.TabID, body.Chunk)
	writeJSON(w, map[string]any{"accepted": accepted})
}
