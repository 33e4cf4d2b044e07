package usecase

import (
	"testing"
	"time"

	"second-brain/internal/domain"
)

func TestTimelineBucketsTrailingDay(t *testing.T) {
	now := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	tabs := []domain.TabEvent{
		{Timestamp: domain.NowMillis(now.Add(-30 * time.Minute))},
		{Timestamp: domain.NowMillis(now.Add(-30 * time.Minute))},
		{Timestamp: domain.NowMillis(now.Add(-23*time.Hour - 30*time.Minute))},
		{Timestamp: domain.NowMillis(now.Add(-25 * time.Hour))}, // out of window
	}
	timeline := Timeline(tabs, now)
	if len(timeline) != 24 {
		t.Fatalf("expected 24 buckets, got %d", len(timeline))
	}
	if timeline[23].Count != 2 {
		t.Fatalf("last bucket should hold the recent events, got %d", timeline[23].Count)
	}
	if timeline[0].Count != 1 {
		t.Fatalf("first bucket should hold the day-old event, got %d", timeline[0].Count)
	}
	total := 0
	for _, b := range timeline {
		total += b.Count
	}
	if total != 3 {
		t.Fatalf("events outside the window must be dropped, counted %d", total)
	}
	if timeline[23].Label != "12:00" {
		t.Fatalf("bucket labels carry the clock hour, got %q", timeline[23].Label)
	}
}

func TestTopDomainsRankingAndPercentage(t *testing.T) {
	tabs := []domain.TabEvent{
		{URL: "https://a.test/1"},
		{URL: "https://a.test/2"},
		{URL: "https://b.test/1"},
		{URL: "not a url"},
	}
	stats := TopDomains(tabs, 10)
	if len(stats) != 2 {
		t.Fatalf("expected 2 domains, got %d", len(stats))
	}
	if stats[0].Domain != "a.test" || stats[0].Count != 2 {
		t.Fatalf("ranking: %+v", stats)
	}
	if stats[0].Percentage != 50 {
		t.Fatalf("percentage is against all events: %v", stats[0].Percentage)
	}
}

func TestTopDomainsTiesKeepFirstSeenOrder(t *testing.T) {
	tabs := []domain.TabEvent{
		{URL: "https://first.test"},
		{URL: "https://second.test"},
	}
	stats := TopDomains(tabs, 10)
	if stats[0].Domain != "first.test" {
		t.Fatalf("tie must keep first-seen order: %+v", stats)
	}
}

func TestTopDomainsEmptyInput(t *testing.T) {
	if stats := TopDomains(nil, 10); len(stats) != 0 {
		t.Fatalf("expected no entries, got %+v", stats)
	}
}

func TestDailyActivityAnchorsAtMidnight(t *testing.T) {
	now := time.Date(2024, 1, 7, 15, 30, 0, 0, time.UTC) // a Sunday
	tabs := []domain.TabEvent{
		{Timestamp: domain.NowMillis(time.Date(2024, 1, 7, 0, 0, 1, 0, time.UTC))},
		{Timestamp: domain.NowMillis(time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC))},
		{Timestamp: domain.NowMillis(time.Date(2023, 12, 31, 12, 0, 0, 0, time.UTC))}, // before the window
	}
	days := DailyActivity(tabs, now)
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	if days[6].Date != "Sun" || days[6].Count != 1 {
		t.Fatalf("today: %+v", days[6])
	}
	if days[0].Date != "Mon" || days[0].Count != 1 {
		t.Fatalf("oldest day: %+v", days[0])
	}
}

func TestActivityHeatmapIndexes(t *testing.T) {
	ts := time.Date(2024, 1, 7, 9, 15, 0, 0, time.UTC) // Sunday 09:xx
	heatmap := ActivityHeatmap([]domain.TabEvent{{Timestamp: domain.NowMillis(ts)}})
	if heatmap[0][9] != 1 {
		t.Fatalf("Sunday 9am must land in [0][9]: %v", heatmap)
	}
}

func TestAverageSessionDurationPerURL(t *testing.T) {
	tabs := []domain.TabEvent{
		{URL: "https://a.test", Timestamp: 1000, Duration: 500},
		{URL: "https://a.test", Timestamp: 3000, Duration: 1000}, // span 1000..4000
		{URL: "https://b.test", Timestamp: 0, Duration: 1000},    // span 0..1000
		{URL: "", Timestamp: 0, Duration: 99999},                 // no URL, ignored
	}
	got := AverageSessionDuration(tabs)
	if got != 2000 {
		t.Fatalf("expected mean of 3000 and 1000, got %v", got)
	}
}

func TestAverageSessionDurationEmpty(t *testing.T) {
	if got := AverageSessionDuration(nil); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestProductivityEmptyInput(t *testing.T) {
	got := Productivity(nil)
	if got.MostActiveHour != 0 || got.MostActiveDay != "N/A" || got.TotalSites != 0 || got.AverageTabsPerHour != 0 {
		t.Fatalf("empty input: %+v", got)
	}
}

func TestProductivityInsights(t *testing.T) {
	base := time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC) // a Wednesday
	tabs := []domain.TabEvent{
		{URL: "https://a.test", Timestamp: domain.NowMillis(base)},
		{URL: "https://a.test", Timestamp: domain.NowMillis(base.Add(10 * time.Minute))},
		{URL: "https://b.test", Timestamp: domain.NowMillis(base.Add(2 * time.Hour))},
	}
	got := Productivity(tabs)
	if got.MostActiveHour != 10 {
		t.Fatalf("most active hour: %+v", got)
	}
	if got.MostActiveDay != "Wednesday" {
		t.Fatalf("most active day: %+v", got)
	}
	if got.TotalSites != 2 {
		t.Fatalf("unique sites: %+v", got)
	}
	// 3 tabs over 2 hours, rounded to a tenth
	if got.AverageTabsPerHour != 1.5 {
		t.Fatalf("tabs per hour: %+v", got)
	}
}

func TestCountCapturesAndDistribution(t *testing.T) {
	tabs := []domain.TabEvent{{}, {}}
	shots := []domain.Screenshot{{}}
	stats := CountCaptures(tabs, shots, nil, nil)
	if stats.Total != 3 || stats.Tabs != 2 || stats.Screenshots != 1 {
		t.Fatalf("counts: %+v", stats)
	}
	dist := ContentTypeDistribution(tabs, shots, nil, nil)
	if len(dist) != 4 || dist[0].Count != 2 || dist[1].Count != 1 {
		t.Fatalf("distribution: %+v", dist)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		ms   int64
		want string
	}{
		{45 * 1000, "45s"},
		{3*60*1000 + 20*1000, "3m 20s"},
		{2*60*60*1000 + 5*60*1000, "2h 5m"},
		{0, "0s"},
	}
	for _, c := range cases {
		if got := FormatDuration(c.ms); got != c.want {
			t.Fatalf("%d: expected %q, got %q", c.ms, c.want, got)
		}
	}
}
