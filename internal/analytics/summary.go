// Package analytics turns a user's curhat history into the numbers shown on
// the dashboard. Every function here is pure: callers fetch the entries for
// the requested window and pass the clock and timezone in, so results are
// reproducible and safe to compute concurrently.
package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/AnshRaj112/hiddenmood-backend/internal/models"
)

const (
	// DefaultWindowDays is used when the caller does not ask for a window.
	DefaultWindowDays = 30

	// NoEmotion labels entries whose emotion is missing or blank.
	NoEmotion = "neutral"

	dayLayout = "2006-01-02"
	week      = 7 * 24 * time.Hour
)

// StressPoint is the average stress of one calendar day.
type StressPoint struct {
	Date  string `json:"date"`
	Value int    `json:"value"`
}

// Summary is the dashboard payload for one window of history.
type Summary struct {
	AverageStress         int            `json:"averageStress"`
	EmotionCounts         map[string]int `json:"emotionCounts"`
	StressHistory         []StressPoint  `json:"stressHistory"`
	LatestEmotion         string         `json:"latestEmotion"`
	LatestEmotionTime     *time.Time     `json:"latestEmotionTime"`
	WeeklyCount           int            `json:"weeklyCount"`
	TotalCount            int            `json:"totalCount"`
	MostCommonEmotion     string         `json:"mostCommonEmotion"`
	MostCommonStressLevel string         `json:"mostCommonStressLevel"`
	Tips                  []string       `json:"tips"`
}

// Summarize computes the dashboard summary for entries that the store
// already limited to the last windowDays days. The window is only used to
// size the stress chart; entries are not filtered by it again. weeklyCount
// always covers the 7 days before now, and chart days are calendar days in loc.
func Summarize(entries []models.HistoryEntry, windowDays int, now time.Time, loc *time.Location) Summary {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	if loc == nil {
		loc = time.UTC
	}

	summary := Summary{
		EmotionCounts:     map[string]int{},
		StressHistory:     []StressPoint{},
		LatestEmotion:     NoEmotion,
		MostCommonEmotion: NoEmotion,
		TotalCount:        len(entries),
	}
	if len(entries) == 0 {
		summary.Tips = DefaultTips()
		return summary
	}

	sorted := newestFirst(entries)

	latest := sorted[0]
	latestTime := latest.CreatedAt
	summary.LatestEmotion = emotionLabel(latest.Emotion)
	summary.LatestEmotionTime = &latestTime

	emotions := newCounter()
	levels := newCounter()
	var stressTotal float64
	var stressCount int
	weekStart := now.Add(-week)

	for _, e := range sorted {
		emotions.add(emotionLabel(e.Emotion))
		if level, ok := stressLevelLabel(e.StressLevel); ok {
			levels.add(level)
		}
		if e.StressPercent != nil {
			stressTotal += *e.StressPercent
			stressCount++
		}
		if !e.CreatedAt.Before(weekStart) {
			summary.WeeklyCount++
		}
	}

	summary.AverageStress = roundedMean(stressTotal, stressCount)
	summary.EmotionCounts = emotions.counts
	summary.MostCommonEmotion = emotions.mostCommon(NoEmotion)
	summary.MostCommonStressLevel = levels.mostCommon("")
	summary.StressHistory = dailyStress(sorted, HistoryCap(windowDays), loc)

	summary.Tips = ExtractTips(sorted)
	if len(summary.Tips) == 0 {
		summary.Tips = DefaultTips()
	}
	return summary
}

// HistoryCap is the maximum number of chart points for a window.
func HistoryCap(windowDays int) int {
	switch {
	case windowDays <= 7:
		return 7
	case windowDays <= 30:
		return 15
	default:
		return 30
	}
}

// newestFirst returns a sorted copy: createdAt descending, then id ascending.
func newestFirst(entries []models.HistoryEntry) []models.HistoryEntry {
	sorted := make([]models.HistoryEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

func dailyStress(entries []models.HistoryEntry, maxPoints int, loc *time.Location) []StressPoint {
	type bucket struct {
		total float64
		count int
	}
	buckets := make(map[string]*bucket)
	for _, e := range entries {
		if e.StressPercent == nil {
			continue
		}
		day := e.CreatedAt.In(loc).Format(dayLayout)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
		}
		b.total += *e.StressPercent
		b.count++
	}

	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Strings(days)
	if len(days) > maxPoints {
		days = days[len(days)-maxPoints:]
	}

	points := make([]StressPoint, 0, len(days))
	for _, day := range days {
		b := buckets[day]
		points = append(points, StressPoint{Date: day, Value: roundedMean(b.total, b.count)})
	}
	return points
}

// emotionLabel folds case and whitespace so "Sad" and " sad" count together.
func emotionLabel(emotion string) string {
	label := strings.ToLower(strings.TrimSpace(emotion))
	if label == "" {
		return NoEmotion
	}
	return label
}

func stressLevelLabel(level *string) (string, bool) {
	if level == nil {
		return "", false
	}
	label := strings.TrimSpace(*level)
	return label, label != ""
}

// roundedMean rounds halves up, matching the dashboard's historic output.
func roundedMean(total float64, count int) int {
	if count == 0 {
		return 0
	}
	return int(math.Floor(total/float64(count) + 0.5))
}

// counter counts labels and remembers the order they were first seen in.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: map[string]int{}}
}

func (c *counter) add(label string) {
	if _, seen := c.counts[label]; !seen {
		c.order = append(c.order, label)
	}
	c.counts[label]++
}

// mostCommon returns the label with the highest count. Ties go to the label
// seen first, which for newest-first input is the most recently used one.
func (c *counter) mostCommon(fallback string) string {
	best, bestCount := fallback, 0
	for _, label := range c.order {
		if n := c.counts[label]; n > bestCount {
			best, bestCount = label, n
		}
	}
	return best
}
