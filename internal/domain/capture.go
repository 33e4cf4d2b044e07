package domain

// ScreenshotTrigger tags what caused a screenshot to be taken.
type ScreenshotTrigger string

const (
	TriggerManual     ScreenshotTrigger = "manual"
	TriggerFormSubmit ScreenshotTrigger = "form_submit"
	TriggerError      ScreenshotTrigger = "error"
	TriggerKeyMoment  ScreenshotTrigger = "key_moment"
)

// Screenshot holds an encoded capture of the visible viewport. ImageURL and
// ThumbnailURL are data URLs; Size estimates the decoded payload of ImageURL.
type Screenshot struct {
	ID            string `json:"id"`
	Timestamp     int64  `json:"timestamp"`
	URL           string `json:"url"`
	ImageURL      string `json:"imageUrl"`
	ThumbnailURL  string `json:"thumbnailUrl,omitempty"`
	Size          int    `json:"size"`
	ExtractedText string `json:"extractedText,omitempty"`
}

type AudioStatus string

const (
	AudioCapturing AudioStatus = "capturing"
	AudioCompleted AudioStatus = "completed"
	AudioFailed    AudioStatus = "failed"
)

// AudioCapture records one tab-audio recording. Status only ever moves from
// capturing to completed or failed; duration is finalized at completion.
type AudioCapture struct {
	ID            string      `json:"id"`
	Timestamp     int64       `json:"timestamp"`
	Duration      int64       `json:"duration"`
	AudioURL      string      `json:"audioUrl,omitempty"`
	Transcription string      `json:"transcription,omitempty"`
	Status        AudioStatus `json:"status"`
}

type FormField struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// FormSubmission is captured at submit time, after the privacy filter has run
// over every field. No raw password material ever reaches this type.
type FormSubmission struct {
	ID        string      `json:"id"`
	Timestamp int64       `json:"timestamp"`
	URL       string      `json:"url"`
	FormID    string      `json:"formId,omitempty"`
	Fields    []FormField `json:"fields"`
}
