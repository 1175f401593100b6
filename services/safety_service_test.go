package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safetrail/models"
)

func newTestSafetyService() *SafetyService {
	return NewSafetyService(nil, 22, 6)
}

func classificationFor(level models.SafetyLevel) models.ZoneClassification {
	return models.ZoneClassification{
		Success:      true,
		SafetyLevel:  level,
		IsInSafeZone: level == models.SafetyLevelSafe,
	}
}

func floatPtr(f float64) *float64 { return &f }

func dayTime() time.Time {
	return time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
}

func nightTime() time.Time {
	return time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
}

func TestCalculateScoreDaySafeZone(t *testing.T) {
	ss := newTestSafetyService()

	result := ss.CalculateScore(classificationFor(models.SafetyLevelSafe), models.ScoreOptions{At: dayTime()})

	// 90 base + 10 day, clamped to 100.
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, models.RiskLevelLow, ss.RiskLevelFor(result.Score))
}

func TestCalculateScoreNightRestrictedClampsLow(t *testing.T) {
	ss := newTestSafetyService()

	opts := models.ScoreOptions{
		At:           nightTime(),
		CrowdDensity: floatPtr(0.1),
		Weather:      "storm",
	}
	result := ss.CalculateScore(classificationFor(models.SafetyLevelRestricted), opts)

	// 20 - 20 - 10 - 15 = -25, clamped to 0.
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, models.RiskLevelCritical, ss.RiskLevelFor(result.Score))
}

func TestCalculateScoreFactorsExplainTotal(t *testing.T) {
	ss := newTestSafetyService()

	opts := models.ScoreOptions{At: nightTime(), CrowdDensity: floatPtr(0.8)}
	result := ss.CalculateScore(classificationFor(models.SafetyLevelCaution), opts)

	// 60 - 20 + 5 = 45.
	assert.Equal(t, 45, result.Score)

	total := 0
	for _, f := range result.Factors {
		total += f.Impact
	}
	assert.Equal(t, result.Score, total)
}

func TestCalculateScoreCrowdDensityThresholds(t *testing.T) {
	ss := newTestSafetyService()
	base := classificationFor(models.SafetyLevelCaution)

	// 0.5 is between the thresholds and contributes nothing.
	mid := ss.CalculateScore(base, models.ScoreOptions{At: dayTime(), CrowdDensity: floatPtr(0.5)})
	none := ss.CalculateScore(base, models.ScoreOptions{At: dayTime()})
	assert.Equal(t, none.Score, mid.Score)

	// A zero reading is a real reading, not "missing".
	empty := ss.CalculateScore(base, models.ScoreOptions{At: dayTime(), CrowdDensity: floatPtr(0.0)})
	assert.Equal(t, none.Score-10, empty.Score)
}

func TestNightWindowWrapsMidnight(t *testing.T) {
	ss := newTestSafetyService()

	assert.True(t, ss.isNight(time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)))
	assert.True(t, ss.isNight(time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)))
	assert.True(t, ss.isNight(time.Date(2026, 3, 10, 5, 59, 0, 0, time.UTC)))
	assert.False(t, ss.isNight(time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)))
	assert.False(t, ss.isNight(time.Date(2026, 3, 10, 21, 59, 0, 0, time.UTC)))
}

func TestRiskLevelBoundaries(t *testing.T) {
	ss := newTestSafetyService()

	cases := []struct {
		score int
		want  models.RiskLevel
	}{
		{100, models.RiskLevelLow},
		{80, models.RiskLevelLow},
		{79, models.RiskLevelMedium},
		{60, models.RiskLevelMedium},
		{59, models.RiskLevelHigh},
		{40, models.RiskLevelHigh},
		{39, models.RiskLevelCritical},
		{0, models.RiskLevelCritical},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ss.RiskLevelFor(tc.score), "score %d", tc.score)
	}
}

func TestGenerateAlertsRestrictedZone(t *testing.T) {
	ss := newTestSafetyService()

	classification := classificationFor(models.SafetyLevelRestricted)
	classification.Zone = &models.SafetyZone{Name: "Yamuna Floodplain Restricted Area"}

	score := ss.CalculateScore(classification, models.ScoreOptions{At: dayTime()})
	alerts := ss.GenerateAlerts(classification, score, dayTime())

	// 20 + 10 = 30: the zone alert and the low-score warning both fire.
	require.Len(t, alerts, 2)
	assert.Equal(t, models.AlertTypeDanger, alerts[0].Type)
	assert.Equal(t, "Restricted Area Warning", alerts[0].Title)
	assert.Contains(t, alerts[0].Message, "Yamuna Floodplain Restricted Area")
	assert.Equal(t, models.AlertPriorityHigh, alerts[0].Priority)
	assert.Equal(t, "Low Safety Score", alerts[1].Title)
	assert.Equal(t, models.AlertTypeWarning, alerts[1].Type)
}

func TestGenerateAlertsCoOccurrence(t *testing.T) {
	ss := newTestSafetyService()

	classification := classificationFor(models.SafetyLevelRestricted)
	at := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	score := ss.CalculateScore(classification, models.ScoreOptions{At: at})

	// Restricted zone at 23:00: zone danger, low-score warning, and the
	// night reminder all fire on one sample.
	alerts := ss.GenerateAlerts(classification, score, at)
	require.Len(t, alerts, 3)
	assert.Equal(t, models.AlertTypeDanger, alerts[0].Type)
	assert.Equal(t, "Low Safety Score", alerts[1].Title)
	assert.Equal(t, models.AlertTypeInfo, alerts[2].Type)
	assert.Equal(t, "Night Safety Reminder", alerts[2].Title)
	assert.Equal(t, models.AlertPriorityLow, alerts[2].Priority)
}

func TestGenerateAlertsSafeZoneQuiet(t *testing.T) {
	ss := newTestSafetyService()

	classification := classificationFor(models.SafetyLevelSafe)
	score := ss.CalculateScore(classification, models.ScoreOptions{At: dayTime()})

	assert.Empty(t, ss.GenerateAlerts(classification, score, dayTime()))
}

func TestGenerateAlertsCautionZone(t *testing.T) {
	ss := newTestSafetyService()

	classification := classificationFor(models.SafetyLevelCaution)
	score := ss.CalculateScore(classification, models.ScoreOptions{At: dayTime()})

	// 60 + 10 = 70: a warning for the zone, nothing else.
	alerts := ss.GenerateAlerts(classification, score, dayTime())
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertTypeWarning, alerts[0].Type)
	assert.Equal(t, "Caution Area", alerts[0].Title)
}
