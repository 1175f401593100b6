package models

import "time"

type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

type AlertType string

const (
	AlertTypeDanger  AlertType = "danger"
	AlertTypeWarning AlertType = "warning"
	AlertTypeInfo    AlertType = "info"
)

type AlertPriority string

const (
	AlertPriorityHigh   AlertPriority = "high"
	AlertPriorityMedium AlertPriority = "medium"
	AlertPriorityLow    AlertPriority = "low"
)

// ScoreFactor is one signed adjustment applied on top of the zone base
// score, kept so the client can explain the composite number.
type ScoreFactor struct {
	Factor string `json:"factor"`
	Impact int    `json:"impact"`
}

// SafetyScoreResult carries the clamped 0-100 composite score.
type SafetyScoreResult struct {
	Success bool          `json:"success"`
	Score   int           `json:"score"`
	Factors []ScoreFactor `json:"factors"`
}

// ScoreOptions are the recognized contextual inputs to the scorer.
// CrowdDensity is a pointer so "no reading" is distinguishable from a
// reading of zero. A zero At means "now".
type ScoreOptions struct {
	CrowdDensity *float64  `json:"crowdDensity,omitempty" validate:"omitempty"`
	Weather      string    `json:"weather,omitempty"`
	At           time.Time `json:"-"`
}

// SafetyAlert is a single user-facing warning generated for one
// evaluation. Alerts are ephemeral; suppressing repeats across
// evaluations is the caller's job.
type SafetyAlert struct {
	Type     AlertType     `json:"type"`
	Title    string        `json:"title"`
	Message  string        `json:"message"`
	Priority AlertPriority `json:"priority"`
}

type ScoreRequest struct {
	Latitude     float64  `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude    float64  `json:"longitude" validate:"gte=-180,lte=180"`
	CrowdDensity *float64 `json:"crowdDensity,omitempty" validate:"omitempty,gte=0,lte=1"`
	Weather      string   `json:"weather,omitempty"`
}

// SafetyEvaluation bundles everything computed for one location sample.
type SafetyEvaluation struct {
	Classification ZoneClassification `json:"classification"`
	Score          SafetyScoreResult  `json:"score"`
	RiskLevel      RiskLevel          `json:"riskLevel"`
	Alerts         []SafetyAlert      `json:"alerts"`
}
