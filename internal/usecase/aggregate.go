package usecase

import (
	"fmt"
	"math"
	"sort"
	"time"

	"second-brain/internal/domain"
)

// Aggregations are pure over their inputs: given a fixed now and the same
// records they always produce the same output.

const (
	hourMillis = int64(time.Hour / time.Millisecond)
	dayMillis  = 24 * hourMillis
)

// TimelineBucket is one hour of the trailing 24-hour activity timeline.
type TimelineBucket struct {
	Hour  int    `json:"hour"`
	Count int    `json:"count"`
	Label string `json:"label"`
}

// Timeline buckets tab events into 24 ordered one-hour strides covering
// [now-24h, now]. Labels carry the clock hour of each bucket boundary.
func Timeline(tabs []domain.TabEvent, now time.Time) []TimelineBucket {
	nowMs := domain.NowMillis(now)
	dayAgo := nowMs - dayMillis

	timeline := make([]TimelineBucket, 24)
	for i := range timeline {
		hour := now.Add(-time.Duration(23-i) * time.Hour).Hour()
		timeline[i] = TimelineBucket{Hour: hour, Label: fmt.Sprintf("%d:00", hour)}
	}
	for _, tab := range tabs {
		if tab.Timestamp < dayAgo {
			continue
		}
		idx := int((tab.Timestamp - dayAgo) / hourMillis)
		if idx >= 0 && idx < 24 {
			timeline[idx].Count++
		}
	}
	return timeline
}

// DomainStat is one entry of the top-domains ranking.
type DomainStat struct {
	Domain     string  `json:"domain"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// TopDomains ranks hostnames across tab events by visit count. Percentages
// are against the total event count; an empty input yields no entries.
func TopDomains(tabs []domain.TabEvent, limit int) []DomainStat {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, tab := range tabs {
		host := hostnameOf(tab.URL)
		if host == "" {
			continue
		}
		if _, seen := counts[host]; !seen {
			order = append(order, host)
		}
		counts[host]++
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}
	total := len(tabs)
	stats := make([]DomainStat, 0, len(order))
	for _, host := range order {
		pct := 0.0
		if total > 0 {
			pct = float64(counts[host]) / float64(total) * 100
		}
		stats = append(stats, DomainStat{Domain: host, Count: counts[host], Percentage: pct})
	}
	return stats
}

// CaptureStats counts records per collection.
type CaptureStats struct {
	Tabs        int `json:"tabs"`
	Screenshots int `json:"screenshots"`
	Forms       int `json:"forms"`
	Audio       int `json:"audio"`
	Total       int `json:"total"`
}

func CountCaptures(tabs []domain.TabEvent, shots []domain.Screenshot, forms []domain.FormSubmission, captures []domain.AudioCapture) CaptureStats {
	return CaptureStats{
		Tabs:        len(tabs),
		Screenshots: len(shots),
		Forms:       len(forms),
		Audio:       len(captures),
		Total:       len(tabs) + len(shots) + len(forms) + len(captures),
	}
}

// ActivityDay is one day of the trailing-week activity series.
type ActivityDay struct {
	Date      string `json:"date"`
	Count     int    `json:"count"`
	Timestamp int64  `json:"timestamp"`
}

// DailyActivity counts tab events per day for the last 7 days, oldest first.
// Buckets are anchored at local midnight and labeled by short weekday name.
func DailyActivity(tabs []domain.TabEvent, now time.Time) []ActivityDay {
	days := make([]ActivityDay, 0, 7)
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		startMs := domain.NowMillis(start)
		endMs := startMs + dayMillis

		count := 0
		for _, tab := range tabs {
			if tab.Timestamp >= startMs && tab.Timestamp < endMs {
				count++
			}
		}
		days = append(days, ActivityDay{
			Date:      start.Weekday().String()[:3],
			Count:     count,
			Timestamp: startMs,
		})
	}
	return days
}

// ActivityHeatmap counts tab events per day-of-week and hour-of-day.
// Row 0 is Sunday, matching time.Weekday.
func ActivityHeatmap(tabs []domain.TabEvent) [7][24]int {
	var heatmap [7][24]int
	for _, tab := range tabs {
		t := time.UnixMilli(tab.Timestamp)
		heatmap[int(t.Weekday())][t.Hour()]++
	}
	return heatmap
}

// AverageSessionDuration averages the per-URL span
// [min(timestamp), max(timestamp+duration)] across distinct URLs. This is a
// per-URL proxy for dwell, not a true session span.
func AverageSessionDuration(tabs []domain.TabEvent) float64 {
	type span struct{ start, end int64 }
	spans := make(map[string]*span)
	for _, tab := range tabs {
		if tab.URL == "" {
			continue
		}
		end := tab.Timestamp + tab.Duration
		s, ok := spans[tab.URL]
		if !ok {
			spans[tab.URL] = &span{start: tab.Timestamp, end: end}
			continue
		}
		if tab.Timestamp < s.start {
			s.start = tab.Timestamp
		}
		if end > s.end {
			s.end = end
		}
	}
	if len(spans) == 0 {
		return 0
	}
	var total int64
	for _, s := range spans {
		total += s.end - s.start
	}
	return float64(total) / float64(len(spans))
}

// ProductivityInsights summarizes when and where browsing concentrates.
type ProductivityInsights struct {
	MostActiveHour     int     `json:"mostActiveHour"`
	MostActiveDay      string  `json:"mostActiveDay"`
	TotalSites         int     `json:"totalSites"`
	AverageTabsPerHour float64 `json:"averageTabsPerHour"`
}

// Productivity computes the most active hour and weekday (ties go to the
// first encountered), the unique-site count, and tabs per hour rounded to a
// tenth. Empty input yields {0, "N/A", 0, 0}.
func Productivity(tabs []domain.TabEvent) ProductivityInsights {
	if len(tabs) == 0 {
		return ProductivityInsights{MostActiveDay: "N/A"}
	}

	var hourCounts [24]int
	var hourFirst [24]int
	var dayCounts [7]int
	var dayFirst [7]int
	sites := make(map[string]struct{})
	minTs, maxTs := tabs[0].Timestamp, tabs[0].Timestamp

	for i, tab := range tabs {
		t := time.UnixMilli(tab.Timestamp)
		hour, day := t.Hour(), int(t.Weekday())
		if hourCounts[hour] == 0 {
			hourFirst[hour] = i
		}
		hourCounts[hour]++
		if dayCounts[day] == 0 {
			dayFirst[day] = i
		}
		dayCounts[day]++
		if host := hostnameOf(tab.URL); host != "" {
			sites[host] = struct{}{}
		}
		if tab.Timestamp < minTs {
			minTs = tab.Timestamp
		}
		if tab.Timestamp > maxTs {
			maxTs = tab.Timestamp
		}
	}

	mostActiveHour := argmaxByFirstSeen(hourCounts[:], hourFirst[:])
	mostActiveDay := time.Weekday(argmaxByFirstSeen(dayCounts[:], dayFirst[:])).String()

	tabsPerHour := 0.0
	if hours := float64(maxTs-minTs) / float64(hourMillis); hours > 0 {
		tabsPerHour = math.Round(float64(len(tabs))/hours*10) / 10
	}

	return ProductivityInsights{
		MostActiveHour:     mostActiveHour,
		MostActiveDay:      mostActiveDay,
		TotalSites:         len(sites),
		AverageTabsPerHour: tabsPerHour,
	}
}

// argmaxByFirstSeen picks the index with the highest count, breaking ties in
// favor of the bucket encountered earliest in the input.
func argmaxByFirstSeen(counts, first []int) int {
	best := -1
	for i, c := range counts {
		if c == 0 {
			continue
		}
		if best < 0 || c > counts[best] || (c == counts[best] && first[i] < first[best]) {
			best = i
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

// ContentTypeSlice is one wedge of the capture-kind distribution.
type ContentTypeSlice struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

// ContentTypeDistribution reports how captures split across kinds, with the
// chart colors the UI expects.
func ContentTypeDistribution(tabs []domain.TabEvent, shots []domain.Screenshot, forms []domain.FormSubmission, captures []domain.AudioCapture) []ContentTypeSlice {
	return []ContentTypeSlice{
		{Type: "Tabs", Count: len(tabs), Color: "#3b82f6"},
		{Type: "Screenshots", Count: len(shots), Color: "#10b981"},
		{Type: "Forms", Count: len(forms), Color: "#f59e0b"},
		{Type: "Audio", Count: len(captures), Color: "#ef4444"},
	}
}

// FormatDuration renders a millisecond duration as "2h 5m", "3m 20s" or "45s".
func FormatDuration(ms int64) string {
	seconds := ms / 1000
	minutes := seconds / 60
	hours := minutes / 60
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
