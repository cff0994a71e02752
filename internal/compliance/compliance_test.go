package compliance

import (
	"testing"
	"time"

	"ivm-inventory/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func daysAgo(now time.Time, days int) *time.Time {
	t := now.AddDate(0, 0, -days)
	return &t
}

func gormModel(id uint) gorm.Model {
	return gorm.Model{ID: id}
}

func TestClassifyBoundaries(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		last *time.Time
		want Status
	}{
		{"never reviewed", nil, StatusNeverReviewed},
		{"fresh", daysAgo(now, 10), StatusCurrent},
		{"current boundary", daysAgo(now, 45), StatusCurrent},
		{"warning start", daysAgo(now, 46), StatusWarning},
		{"mid warning", daysAgo(now, 50), StatusWarning},
		{"warning boundary", daysAgo(now, 60), StatusWarning},
		{"overdue", daysAgo(now, 61), StatusOverdue},
		{"long overdue", daysAgo(now, 70), StatusOverdue},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.last, now, DefaultOverdueDays), tc.name)
	}
}

func TestClassifyCustomThreshold(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// при пороге 30 дней предупреждение начинается после 22 (30*3/4)
	assert.Equal(t, StatusCurrent, Classify(daysAgo(now, 22), now, 30))
	assert.Equal(t, StatusWarning, Classify(daysAgo(now, 23), now, 30))
	assert.Equal(t, StatusWarning, Classify(daysAgo(now, 30), now, 30))
	assert.Equal(t, StatusOverdue, Classify(daysAgo(now, 31), now, 30))

	// нулевой и отрицательный порог откатываются к значению по умолчанию
	assert.Equal(t, StatusCurrent, Classify(daysAgo(now, 45), now, 0), "zero threshold")
	assert.Equal(t, StatusOverdue, Classify(daysAgo(now, 61), now, -5), "negative threshold")
}

func TestTeamSummariesRateAndFlag(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	teams := []models.Team{
		{Model: gormModel(1), Name: "Security"},
		{Model: gormModel(2), Name: "Billing"},
	}
	assets := []models.Asset{
		{Model: gormModel(10), TeamID: 1, LastReviewedDate: daysAgo(now, 5)},
		{Model: gormModel(11), TeamID: 1, LastReviewedDate: daysAgo(now, 50)},
		{Model: gormModel(12), TeamID: 1, LastReviewedDate: daysAgo(now, 90)},
		{Model: gormModel(13), TeamID: 1},
	}

	sums := TeamSummaries(teams, assets, now, DefaultOverdueDays)
	require.Len(t, sums, 2)

	sec := sums[0]
	assert.Equal(t, "Security", sec.TeamName)
	assert.Equal(t, 4, sec.TotalAssets)
	assert.Equal(t, 1, sec.Current)
	assert.Equal(t, 1, sec.Warning)
	assert.Equal(t, 1, sec.Overdue)
	assert.Equal(t, 1, sec.NeverReviewed)

	// (4-1)/4 = 75% — команда помечается
	assert.InDelta(t, 75.0, sec.ComplianceRate, 0.001)
	assert.True(t, sec.Flagged)

	// без активов команда считается compliant
	empty := sums[1]
	assert.Equal(t, 0, empty.TotalAssets)
	assert.InDelta(t, 100.0, empty.ComplianceRate, 0.001)
	assert.False(t, empty.Flagged)
}

func TestTeamSummariesNeverReviewedDoesNotLowerRate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	teams := []models.Team{{Model: gormModel(1), Name: "Security"}}
	assets := []models.Asset{
		{Model: gormModel(10), TeamID: 1, LastReviewedDate: daysAgo(now, 5)},
		{Model: gormModel(11), TeamID: 1},
	}

	sums := TeamSummaries(teams, assets, now, DefaultOverdueDays)
	require.Len(t, sums, 1)

	// в знаменателе только просроченные, never_reviewed ставку не снижает
	assert.InDelta(t, 100.0, sums[0].ComplianceRate, 0.001)
	assert.False(t, sums[0].Flagged)
	assert.Equal(t, 1, sums[0].NeverReviewed)
}

func TestOverdueAssetsFilter(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assets := []models.Asset{
		{Model: gormModel(1), Name: "fresh", IPAddress: "10.0.0.1", TeamID: 1, LastReviewedDate: daysAgo(now, 5)},
		{Model: gormModel(2), Name: "stale", IPAddress: "10.0.0.2", TeamID: 1, LastReviewedDate: daysAgo(now, 90)},
		{Model: gormModel(3), Name: "never", IPAddress: "10.0.0.3", TeamID: 2},
	}

	overdue := OverdueAssets(assets, now, DefaultOverdueDays)
	require.Len(t, overdue, 1)

	got := overdue[0]
	assert.Equal(t, uint(2), got.AssetID)
	assert.Equal(t, "stale", got.Name)
	assert.Equal(t, StatusOverdue, got.Status)
	require.NotNil(t, got.DaysSinceReview)
	assert.Equal(t, 90, *got.DaysSinceReview)
}

func TestOverdueAssetsEmpty(t *testing.T) {
	now := time.Now().UTC()
	overdue := OverdueAssets(nil, now, DefaultOverdueDays)
	assert.NotNil(t, overdue)
	assert.Empty(t, overdue)
}
