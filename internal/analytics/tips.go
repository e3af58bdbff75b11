package analytics

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/AnshRaj112/hiddenmood-backend/internal/models"
)

const (
	maxTips      = 5
	minTipLength = 10
	maxTipLength = 150
)

// suggestionPattern is matched against lower-cased classifier feedback.
// Keep it as is: stored feedback was written against this exact pattern.
var suggestionPattern = regexp.MustCompile(`suggestions?[:\-]\s*([^.!?]+)`)

var defaultTips = []string{
	"Take regular breaks throughout your day to reduce stress",
	"Practice deep breathing exercises for 5-10 minutes",
	"Try journaling to process your thoughts and emotions",
	"Engage in light physical activity or stretching",
	"Maintain a consistent sleep schedule for better mental health",
}

// DefaultTips returns the general wellness tips shown when no entry yields one.
func DefaultTips() []string {
	tips := make([]string, len(defaultTips))
	copy(tips, defaultTips)
	return tips
}

// ExtractTips mines "Suggestion: ..." sentences from entry feedback in the
// given order, de-duplicated and capped at five. The result may be empty.
func ExtractTips(entries []models.HistoryEntry) []string {
	tips := make([]string, 0, maxTips)
	seen := make(map[string]struct{})
	for _, e := range entries {
		tip, ok := extractTip(e.Feedback)
		if !ok {
			continue
		}
		if _, dup := seen[tip]; dup {
			continue
		}
		seen[tip] = struct{}{}
		tips = append(tips, tip)
		if len(tips) == maxTips {
			break
		}
	}
	return tips
}

func extractTip(feedback string) (string, bool) {
	if feedback == "" {
		return "", false
	}
	match := suggestionPattern.FindStringSubmatch(strings.ToLower(feedback))
	if match == nil {
		return "", false
	}
	tip := strings.TrimSpace(match[1])
	if n := utf8.RuneCountInString(tip); n <= minTipLength || n >= maxTipLength {
		return "", false
	}
	return capitalize(tip), true
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
