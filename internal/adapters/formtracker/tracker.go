package formtracker

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"second-brain/internal/domain"
	"second-brain/pkg/shared/privacy"
)

// Message envelope types dispatched to the background context.
const (
	MsgFormSubmitted      = "FORM_SUBMITTED"
	MsgCaptureScreenshot  = "CAPTURE_SCREENSHOT"
	MsgContentScriptReady = "CONTENT_SCRIPT_READY"
)

var nowFunc = time.Now

// Message is the cross-context envelope. Only the fields relevant to the
// type are populated.
type Message struct {
	Type     string                 `json:"type"`
	URL      string                 `json:"url,omitempty"`
	Trigger  string                 `json:"trigger,omitempty"`
	FormData *domain.FormSubmission `json:"formData,omitempty"`
}

// Dispatcher sends a message to the background context. Sends are
// asynchronous from the page's point of view; errors are logged, never
// propagated into the page.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg Message) error
}

// Tracker observes a page's forms: it discovers them at load, picks up
// dynamically inserted ones on rescan, and on submit extracts a filtered
// FormSubmission and dispatches it alongside a screenshot request.
type Tracker struct {
	log      zerolog.Logger
	dispatch Dispatcher
	pageURL  string

	mu      sync.Mutex
	tracked map[*html.Node]*goquery.Selection
	order   []*html.Node
}

func New(pageURL string, dispatch Dispatcher, log zerolog.Logger) *Tracker {
	return &Tracker{
		log:      log.With().Str("component", "formtracker").Str("url", pageURL).Logger(),
		dispatch: dispatch,
		pageURL:  pageURL,
		tracked:  make(map[*html.Node]*goquery.Selection),
	}
}

// Init discovers the document's forms and announces readiness to the
// background context.
func (t *Tracker) Init(ctx context.Context, doc *goquery.Document) {
	added := t.Rescan(doc)
	t.log.Debug().Int("forms", added).Msg("form tracking initialized")
	if err := t.dispatch.Dispatch(ctx, Message{Type: MsgContentScriptReady, URL: t.pageURL}); err != nil {
		t.log.Error().Err(err).Msg("ready message failed")
	}
}

// Rescan walks the document for forms not yet tracked (the stand-in for the
// DOM mutation observer) and returns how many new ones were found. Forms are
// keyed by node identity, so a rescan never double-tracks.
func (t *Tracker) Rescan(doc *goquery.Document) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	added := 0
	doc.Find("form").Each(func(_ int, form *goquery.Selection) {
		if len(form.Nodes) == 0 {
			return
		}
		node := form.Nodes[0]
		if _, ok := t.tracked[node]; ok {
			return
		}
		t.tracked[node] = form
		t.order = append(t.order, node)
		added++
	})
	return added
}

// Submit handles one tracked form's submission: the record is extracted
// synchronously (before any navigation) and dispatched, and a screenshot
// with the form_submit trigger is requested alongside.
func (t *Tracker) Submit(ctx context.Context, form *goquery.Selection) error {
	sub := t.Extract(form)
	if err := t.dispatch.Dispatch(ctx, Message{Type: MsgFormSubmitted, FormData: &sub}); err != nil {
		t.log.Error().Err(err).Str("form", sub.FormID).Msg("submission dispatch failed")
		return err
	}
	if err := t.dispatch.Dispatch(ctx, Message{Type: MsgCaptureScreenshot, Trigger: string(domain.TriggerFormSubmit), URL: t.pageURL}); err != nil {
		t.log.Warn().Err(err).Msg("screenshot request failed")
	}
	return nil
}

// Snapshot extracts the current state of every tracked form, in discovery
// order.
func (t *Tracker) Snapshot() []domain.FormSubmission {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.FormSubmission, 0, len(t.order))
	for _, node := range t.order {
		out = append(out, t.Extract(t.tracked[node]))
	}
	return out
}

// Extract builds a FormSubmission from a form element, running the privacy
// filter over every field. Fields without a name attribute are skipped.
func (t *Tracker) Extract(form *goquery.Selection) domain.FormSubmission {
	fields := make([]domain.FormField, 0)
	form.Find("input, select, textarea").Each(func(_ int, el *goquery.Selection) {
		name, _ := el.Attr("name")
		if name == "" {
			return
		}
		meta := privacy.FieldMeta{Name: name}
		meta.ID, _ = el.Attr("id")
		meta.Type, _ = el.Attr("type")
		meta.Autocomplete, _ = el.Attr("autocomplete")

		fieldType := meta.Type
		if fieldType == "" {
			fieldType = strings.ToLower(goquery.NodeName(el))
		}

		fields = append(fields, domain.FormField{
			Name:  name,
			Type:  fieldType,
			Value: privacy.FilterValue(meta, fieldValue(el)),
		})
	})

	formID, _ := form.Attr("id")
	return domain.FormSubmission{
		ID:        domain.NewID("form"),
		Timestamp: domain.NowMillis(nowFunc()),
		URL:       t.pageURL,
		FormID:    formID,
		Fields:    fields,
	}
}

// fieldValue reads the current value of an input-like element.
func fieldValue(el *goquery.Selection) string {
	switch goquery.NodeName(el) {
	case "textarea":
		return el.Text()
	case "select":
		if opt := el.Find("option[selected]").First(); opt.Length() > 0 {
			if v, ok := opt.Attr("value"); ok {
				return v
			}
			return opt.Text()
		}
		return ""
	default:
		v, _ := el.Attr("value")
		return v
	}
}
