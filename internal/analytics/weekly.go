package analytics

import (
	"time"

	"github.com/AnshRaj112/hiddenmood-backend/internal/models"
)

// NoWeeklyLevel is reported when the last week has no entries at all.
const NoWeeklyLevel = "-"

// WeeklyStats summarises the trailing seven days. The level is derived from
// the numeric average, not from the most common stored stress label.
type WeeklyStats struct {
	WeeklyAverageStress int    `json:"weeklyAverageStress"`
	WeeklyStressLevel   string `json:"weeklyStressLevel"`
	WeeklyCount         int    `json:"weeklyCount"`
}

// SummarizeWeek computes weekly stats over entries created in the 7 days
// before now. Older entries in the input are ignored.
func SummarizeWeek(entries []models.HistoryEntry, now time.Time) WeeklyStats {
	weekStart := now.Add(-week)

	var total float64
	var withPercent, count int
	for _, e := range entries {
		if e.CreatedAt.Before(weekStart) {
			continue
		}
		count++
		if e.StressPercent != nil {
			total += *e.StressPercent
			withPercent++
		}
	}

	if count == 0 {
		return WeeklyStats{WeeklyStressLevel: NoWeeklyLevel}
	}

	avg := roundedMean(total, withPercent)
	return WeeklyStats{
		WeeklyAverageStress: avg,
		WeeklyStressLevel:   LevelForAverage(avg),
		WeeklyCount:         count,
	}
}

// LevelForAverage buckets an average stress percent: High from 70, Medium from 40.
func LevelForAverage(avg int) string {
	switch {
	case avg >= 70:
		return "High"
	case avg >= 40:
		return "Medium"
	default:
		return "Low"
	}
}
