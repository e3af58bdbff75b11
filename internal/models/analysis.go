package models

// Prediction is a label with the classifier's confidence in it.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type StressScore struct {
	StressLevel *float64 `json:"stress_level"`
}

type VideoRecommendations struct {
	Recommendations []string `json:"recommendations"`
}

// Analysis is the ML classifier's response for one curhat text. Every field
// may be absent on the wire; call Normalize before using it.
type Analysis struct {
	PredictedStress   *Prediction           `json:"predicted_stress"`
	PredictedEmotion  *Prediction           `json:"predicted_emotion"`
	StressLevel       *StressScore          `json:"stress_level"`
	Analysis          string                `json:"analysis"`
	RecommendedVideos *VideoRecommendations `json:"recommended_videos"`
}

const (
	DefaultStressLabel   = "medium"
	DefaultEmotionLabel  = "neutral"
	DefaultConfidence    = 0.5
	DefaultStressPercent = 50.0
	DefaultAnalysisText  = "Your text has been analyzed successfully."
)

// Normalize fills every missing field with its default so no nil reaches
// the history table.
func (a *Analysis) Normalize() {
	if a.PredictedStress == nil {
		a.PredictedStress = &Prediction{Label: DefaultStressLabel, Confidence: DefaultConfidence}
	} else if a.PredictedStress.Label == "" {
		a.PredictedStress.Label = DefaultStressLabel
	}
	if a.PredictedEmotion == nil {
		a.PredictedEmotion = &Prediction{Label: DefaultEmotionLabel, Confidence: DefaultConfidence}
	} else if a.PredictedEmotion.Label == "" {
		a.PredictedEmotion.Label = DefaultEmotionLabel
	}
	if a.StressLevel == nil {
		a.StressLevel = &StressScore{}
	}
	if a.StressLevel.StressLevel == nil {
		v := DefaultStressPercent
		a.StressLevel.StressLevel = &v
	}
	if a.Analysis == "" {
		a.Analysis = DefaultAnalysisText
	}
	if a.RecommendedVideos == nil {
		a.RecommendedVideos = &VideoRecommendations{}
	}
	if a.RecommendedVideos.Recommendations == nil {
		a.RecommendedVideos.Recommendations = []string{}
	}
}

// ToHistoryEntry builds the row persisted for a normalized analysis.
func (a *Analysis) ToHistoryEntry(userID, text string) HistoryEntry {
	level := a.PredictedStress.Label
	percent := *a.StressLevel.StressLevel
	return HistoryEntry{
		UserID:        userID,
		StressLevel:   &level,
		StressPercent: &percent,
		Emotion:       a.PredictedEmotion.Label,
		Text:          text,
		Feedback:      a.Analysis,
		VideoLinks:    a.RecommendedVideos.Recommendations,
	}
}
