package services

import (
	"context"
	"fmt"
	"time"

	"safetrail/models"
)

// Zone base scores. The zone level dominates the composite score;
// contextual factors only adjust around it.
const (
	baseScoreSafe       = 90
	baseScoreCaution    = 60
	baseScoreRestricted = 20

	dayBonus          = 10
	nightPenalty      = -20
	highCrowdBonus    = 5
	lowCrowdPenalty   = -10
	badWeatherPenalty = -15

	highCrowdThreshold = 0.7
	lowCrowdThreshold  = 0.2
)

// Risk level thresholds on the clamped 0-100 score.
const (
	riskLowMin    = 80
	riskMediumMin = 60
	riskHighMin   = 40
)

// SafetyService computes composite safety scores, maps them to risk
// levels, and generates the user-facing alerts for an evaluation.
type SafetyService struct {
	zoneService    *ZoneService
	nightStartHour int
	nightEndHour   int
}

func NewSafetyService(zoneService *ZoneService, nightStartHour, nightEndHour int) *SafetyService {
	return &SafetyService{
		zoneService:    zoneService,
		nightStartHour: nightStartHour,
		nightEndHour:   nightEndHour,
	}
}

// CalculateScore builds the composite score from the zone base and the
// contextual adjustments, clamped to [0, 100]. The factor list always
// explains the final number.
func (ss *SafetyService) CalculateScore(classification models.ZoneClassification, opts models.ScoreOptions) models.SafetyScoreResult {
	score := baseScoreForLevel(classification.SafetyLevel)

	factors := []models.ScoreFactor{
		{Factor: fmt.Sprintf("Zone: %s", classification.SafetyLevel), Impact: score},
	}

	at := opts.At
	if at.IsZero() {
		at = time.Now()
	}

	if ss.isNight(at) {
		score += nightPenalty
		factors = append(factors, models.ScoreFactor{Factor: "Night time", Impact: nightPenalty})
	} else {
		score += dayBonus
		factors = append(factors, models.ScoreFactor{Factor: "Day time", Impact: dayBonus})
	}

	if opts.CrowdDensity != nil {
		density := *opts.CrowdDensity
		if density > highCrowdThreshold {
			score += highCrowdBonus
			factors = append(factors, models.ScoreFactor{Factor: "High crowd density", Impact: highCrowdBonus})
		} else if density < lowCrowdThreshold {
			score += lowCrowdPenalty
			factors = append(factors, models.ScoreFactor{Factor: "Low crowd density", Impact: lowCrowdPenalty})
		}
	}

	if isAdverseWeather(opts.Weather) {
		score += badWeatherPenalty
		factors = append(factors, models.ScoreFactor{Factor: "Bad weather", Impact: badWeatherPenalty})
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return models.SafetyScoreResult{
		Success: true,
		Score:   score,
		Factors: factors,
	}
}

// RiskLevelFor maps a clamped score to a discrete risk level.
func (ss *SafetyService) RiskLevelFor(score int) models.RiskLevel {
	switch {
	case score >= riskLowMin:
		return models.RiskLevelLow
	case score >= riskMediumMin:
		return models.RiskLevelMedium
	case score >= riskHighMin:
		return models.RiskLevelHigh
	default:
		return models.RiskLevelCritical
	}
}

// GenerateAlerts produces the warnings for one evaluation. The rules
// fire independently: a restricted zone, a low score, and the night
// window can all alert on the same sample. Suppressing repeats across
// evaluations is the caller's job.
func (ss *SafetyService) GenerateAlerts(classification models.ZoneClassification, score models.SafetyScoreResult, at time.Time) []models.SafetyAlert {
	alerts := []models.SafetyAlert{}

	switch classification.SafetyLevel {
	case models.SafetyLevelRestricted:
		zoneName := "a restricted area"
		if classification.Zone != nil {
			zoneName = classification.Zone.Name
		}
		alerts = append(alerts, models.SafetyAlert{
			Type:     models.AlertTypeDanger,
			Title:    "Restricted Area Warning",
			Message:  fmt.Sprintf("You have entered %s. Leave this area as soon as possible.", zoneName),
			Priority: models.AlertPriorityHigh,
		})
	case models.SafetyLevelCaution:
		alerts = append(alerts, models.SafetyAlert{
			Type:     models.AlertTypeWarning,
			Title:    "Caution Area",
			Message:  "You are in an area where extra caution is advised. Keep your belongings close.",
			Priority: models.AlertPriorityMedium,
		})
	}

	if score.Score < riskHighMin {
		alerts = append(alerts, models.SafetyAlert{
			Type:     models.AlertTypeWarning,
			Title:    "Low Safety Score",
			Message:  "Conditions around you score low right now. Stay on main roads and consider moving to a safer area.",
			Priority: models.AlertPriorityMedium,
		})
	}

	if ss.isNight(at) {
		alerts = append(alerts, models.SafetyAlert{
			Type:     models.AlertTypeInfo,
			Title:    "Night Safety Reminder",
			Message:  "It is late. Share your live location with a trusted contact and prefer well-lit routes.",
			Priority: models.AlertPriorityLow,
		})
	}

	return alerts
}

// Evaluate runs the full pipeline for one location sample:
// classification, scoring, risk level, alerts.
func (ss *SafetyService) Evaluate(ctx context.Context, sample models.LocationSample, opts models.ScoreOptions) (*models.SafetyEvaluation, error) {
	classification, err := ss.zoneService.Classify(ctx, sample.Coordinate())
	if err != nil {
		return nil, err
	}

	if opts.At.IsZero() {
		opts.At = sample.Timestamp
	}
	if opts.At.IsZero() {
		opts.At = time.Now()
	}

	score := ss.CalculateScore(classification, opts)

	return &models.SafetyEvaluation{
		Classification: classification,
		Score:          score,
		RiskLevel:      ss.RiskLevelFor(score.Score),
		Alerts:         ss.GenerateAlerts(classification, score, opts.At),
	}, nil
}

// isNight reports whether the hour falls in the configured night
// window. The window wraps midnight (start 22, end 6 covers 22:00
// through 05:59).
func (ss *SafetyService) isNight(at time.Time) bool {
	hour := at.Hour()
	if ss.nightStartHour > ss.nightEndHour {
		return hour >= ss.nightStartHour || hour < ss.nightEndHour
	}
	return hour >= ss.nightStartHour && hour < ss.nightEndHour
}

func baseScoreForLevel(level models.SafetyLevel) int {
	switch level {
	case models.SafetyLevelSafe:
		return baseScoreSafe
	case models.SafetyLevelRestricted:
		return baseScoreRestricted
	default:
		return baseScoreCaution
	}
}

func isAdverseWeather(weather string) bool {
	switch weather {
	case "rain", "storm", "heavy_rain", "fog", "extreme_heat", "flood":
		return true
	default:
		return false
	}
}
