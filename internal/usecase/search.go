package usecase

import (
	"net/url"
	"slices"
	"sort"
	"strings"

	"second-brain/internal/domain"
	"second-brain/pkg/shared/privacy"
)

// Record kinds accepted by SearchFilters.Types.
const (
	KindTabs        = "tabs"
	KindScreenshots = "screenshots"
	KindForms       = "forms"
	KindAudio       = "audio"
)

// SearchFilters is the common filter pipeline: type gate, inclusive date
// bounds, domain substrings, then the text query.
type SearchFilters struct {
	Query    string   `json:"query"`
	DateFrom int64    `json:"dateFrom,omitempty"`
	DateTo   int64    `json:"dateTo,omitempty"`
	Types    []string `json:"types"`
	Domains  []string `json:"domains,omitempty"`
}

// SearchResult pairs a matching record with its additive score and the
// fields that matched.
type SearchResult[T any] struct {
	Item    T        `json:"item"`
	Score   float64  `json:"score"`
	Matches []string `json:"matches"`
}

func (f SearchFilters) wantsKind(kind string) bool {
	return slices.Contains(f.Types, kind)
}

func (f SearchFilters) inDateRange(ts int64) bool {
	if f.DateFrom != 0 && ts < f.DateFrom {
		return false
	}
	if f.DateTo != 0 && ts > f.DateTo {
		return false
	}
	return true
}

// matchesDomain reports whether the record URL's hostname contains any of
// the listed substrings. Unparseable URLs never match.
func (f SearchFilters) matchesDomain(rawURL string) bool {
	if len(f.Domains) == 0 {
		return true
	}
	host := hostnameOf(rawURL)
	if host == "" {
		return false
	}
	for _, d := range f.Domains {
		if strings.Contains(host, d) {
			return true
		}
	}
	return false
}

func hostnameOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// sortByScore orders results descending by score; ties keep insertion order.
func sortByScore[T any](results []SearchResult[T]) []SearchResult[T] {
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results
}

// SearchTabs scores tab events: title substring +2, URL substring +1.
func SearchTabs(tabs []domain.TabEvent, f SearchFilters) []SearchResult[domain.TabEvent] {
	if !f.wantsKind(KindTabs) {
		return nil
	}
	results := make([]SearchResult[domain.TabEvent], 0, len(tabs))
	query := strings.ToLower(f.Query)
	for _, tab := range tabs {
		if !f.inDateRange(tab.Timestamp) || !f.matchesDomain(tab.URL) {
			continue
		}
		if query == "" {
			results = append(results, SearchResult[domain.TabEvent]{Item: tab, Score: 1, Matches: []string{}})
			continue
		}
		var matches []string
		var score float64
		if strings.Contains(strings.ToLower(tab.Title), query) {
			matches = append(matches, "title")
			score += 2
		}
		if strings.Contains(strings.ToLower(tab.URL), query) {
			matches = append(matches, "url")
			score += 1
		}
		if score > 0 {
			results = append(results, SearchResult[domain.TabEvent]{Item: tab, Score: score, Matches: matches})
		}
	}
	return sortByScore(results)
}

// SearchScreenshots scores screenshots: URL substring +2, extracted text +1.
func SearchScreenshots(shots []domain.Screenshot, f SearchFilters) []SearchResult[domain.Screenshot] {
	if !f.wantsKind(KindScreenshots) {
		return nil
	}
	results := make([]SearchResult[domain.Screenshot], 0, len(shots))
	query := strings.ToLower(f.Query)
	for _, shot := range shots {
		if !f.inDateRange(shot.Timestamp) || !f.matchesDomain(shot.URL) {
			continue
		}
		if query == "" {
			results = append(results, SearchResult[domain.Screenshot]{Item: shot, Score: 1, Matches: []string{}})
			continue
		}
		var matches []string
		var score float64
		if strings.Contains(strings.ToLower(shot.URL), query) {
			matches = append(matches, "url")
			score += 2
		}
		if strings.Contains(strings.ToLower(shot.ExtractedText), query) && shot.ExtractedText != "" {
			matches = append(matches, "extractedText")
			score += 1
		}
		if score > 0 {
			results = append(results, SearchResult[domain.Screenshot]{Item: shot, Score: score, Matches: matches})
		}
	}
	return sortByScore(results)
}

// SearchForms scores submissions: URL +2, form id +1, any non-filtered field
// name +0.5 (credited once).
func SearchForms(forms []domain.FormSubmission, f SearchFilters) []SearchResult[domain.FormSubmission] {
	if !f.wantsKind(KindForms) {
		return nil
	}
	results := make([]SearchResult[domain.FormSubmission], 0, len(forms))
	query := strings.ToLower(f.Query)
	for _, form := range forms {
		if !f.inDateRange(form.Timestamp) || !f.matchesDomain(form.URL) {
			continue
		}
		if query == "" {
			results = append(results, SearchResult[domain.FormSubmission]{Item: form, Score: 1, Matches: []string{}})
			continue
		}
		var matches []string
		var score float64
		if strings.Contains(strings.ToLower(form.URL), query) {
			matches = append(matches, "url")
			score += 2
		}
		if form.FormID != "" && strings.Contains(strings.ToLower(form.FormID), query) {
			matches = append(matches, "formId")
			score += 1
		}
		// Field names only; values stay out of the index for privacy.
		for _, field := range form.Fields {
			if field.Value == privacy.Filtered {
				continue
			}
			if strings.Contains(strings.ToLower(field.Name), query) {
				matches = append(matches, "field:"+field.Name)
				score += 0.5
				break
			}
		}
		if score > 0 {
			results = append(results, SearchResult[domain.FormSubmission]{Item: form, Score: score, Matches: matches})
		}
	}
	return sortByScore(results)
}

// SearchAudio scores captures: transcription +2, id +0.5. Audio records
// carry no URL, so the domain filter does not apply.
func SearchAudio(captures []domain.AudioCapture, f SearchFilters) []SearchResult[domain.AudioCapture] {
	if !f.wantsKind(KindAudio) {
		return nil
	}
	results := make([]SearchResult[domain.AudioCapture], 0, len(captures))
	query := strings.ToLower(f.Query)
	for _, capture := range captures {
		if !f.inDateRange(capture.Timestamp) {
			continue
		}
		if query == "" {
			results = append(results, SearchResult[domain.AudioCapture]{Item: capture, Score: 1, Matches: []string{}})
			continue
		}
		var matches []string
		var score float64
		if capture.Transcription != "" && strings.Contains(strings.ToLower(capture.Transcription), query) {
			matches = append(matches, "transcription")
			score += 2
		}
		if strings.Contains(strings.ToLower(capture.ID), query) {
			matches = append(matches, "id")
			score += 0.5
		}
		if score > 0 {
			results = append(results, SearchResult[domain.AudioCapture]{Item: capture, Score: score, Matches: matches})
		}
	}
	return sortByScore(results)
}

// UniqueDomains returns the sorted distinct hostnames across the records.
func UniqueDomains(tabs []domain.TabEvent, shots []domain.Screenshot, forms []domain.FormSubmission) []string {
	seen := make(map[string]struct{})
	add := func(rawURL string) {
		if host := hostnameOf(rawURL); host != "" {
			seen[host] = struct{}{}
		}
	}
	for _, t := range tabs {
		add(t.URL)
	}
	for _, s := range shots {
		add(s.URL)
	}
	for _, f := range forms {
		add(f.URL)
	}
	domains := make([]string, 0, len(seen))
	for host := range seen {
		domains = append(domains, host)
	}
	slices.Sort(domains)
	return domains
}

// DateRange returns the min and max timestamp across every collection; ok is
// false when there are no records at all.
func DateRange(tabs []domain.TabEvent, shots []domain.Screenshot, forms []domain.FormSubmission, captures []domain.AudioCapture) (min, max int64, ok bool) {
	consider := func(ts int64) {
		if !ok {
			min, max, ok = ts, ts, true
			return
		}
		if ts < min {
			min = ts
		}
		if ts > max {
			max = ts
		}
	}
	for _, t := range tabs {
		consider(t.Timestamp)
	}
	for _, s := range shots {
		consider(s.Timestamp)
	}
	for _, f := range forms {
		consider(f.Timestamp)
	}
	for _, c := range captures {
		consider(c.Timestamp)
	}
	return min, max, ok
}
