package compliance

import (
	"math"
	"time"

	"ivm-inventory/internal/models"
)

type Status string

const (
	StatusCurrent       Status = "current"
	StatusWarning       Status = "warning"
	StatusOverdue       Status = "overdue"
	StatusNeverReviewed Status = "never_reviewed"
)

// DefaultOverdueDays — ревью старше этого срока считается просроченным.
const DefaultOverdueDays = 60

// команды с долей непросроченных активов ниже этого процента помечаются
const flagThreshold = 80.0

// порог "скоро просрочится" выводится из основного: 3/4 срока (60 → 45)
func warningDays(overdueDays int) int {
	return overdueDays * 3 / 4
}

// Classify определяет статус ревью актива на момент now.
func Classify(lastReviewed *time.Time, now time.Time, overdueDays int) Status {
	if overdueDays <= 0 {
		overdueDays = DefaultOverdueDays
	}
	if lastReviewed == nil {
		return StatusNeverReviewed
	}

	days := int(now.Sub(*lastReviewed).Hours() / 24)
	switch {
	case days > overdueDays:
		return StatusOverdue
	case days > warningDays(overdueDays):
		return StatusWarning
	default:
		return StatusCurrent
	}
}

type AssetReview struct {
	AssetID          uint       `json:"asset_id"`
	Name             string     `json:"name"`
	IPAddress        string     `json:"ip_address"`
	TeamID           uint       `json:"team_id"`
	LastReviewedDate *time.Time `json:"last_reviewed_date"`
	DaysSinceReview  *int       `json:"days_since_review"`
	Status           Status     `json:"status"`
}

type TeamSummary struct {
	TeamID         uint    `json:"team_id"`
	TeamName       string  `json:"team_name"`
	TotalAssets    int     `json:"total_assets"`
	Current        int     `json:"current"`
	Warning        int     `json:"warning"`
	Overdue        int     `json:"overdue"`
	NeverReviewed  int     `json:"never_reviewed"`
	ComplianceRate float64 `json:"compliance_rate"`
	Flagged        bool    `json:"flagged"`
}

// TeamSummaries считает per-team статистику ревью по переданным активам.
func TeamSummaries(teams []models.Team, assets []models.Asset, now time.Time, overdueDays int) []TeamSummary {
	byTeam := make(map[uint][]models.Asset)
	for _, a := range assets {
		byTeam[a.TeamID] = append(byTeam[a.TeamID], a)
	}

	summaries := make([]TeamSummary, 0, len(teams))
	for _, t := range teams {
		sum := TeamSummary{TeamID: t.ID, TeamName: t.Name}
		for _, a := range byTeam[t.ID] {
			sum.TotalAssets++
			switch Classify(a.LastReviewedDate, now, overdueDays) {
			case StatusWarning:
				sum.Warning++
			case StatusOverdue:
				sum.Overdue++
			case StatusNeverReviewed:
				sum.NeverReviewed++
			default:
				sum.Current++
			}
		}
		sum.ComplianceRate = complianceRate(sum.TotalAssets, sum.Overdue)
		sum.Flagged = sum.ComplianceRate < flagThreshold
		summaries = append(summaries, sum)
	}
	return summaries
}

// OverdueAssets отбирает активы с просроченным ревью.
func OverdueAssets(assets []models.Asset, now time.Time, overdueDays int) []AssetReview {
	out := []AssetReview{}
	for _, a := range assets {
		if Classify(a.LastReviewedDate, now, overdueDays) != StatusOverdue {
			continue
		}
		out = append(out, newReview(a, now, overdueDays))
	}
	return out
}

// rate = (total − overdue) / total × 100; команда без активов compliant (100)
func complianceRate(total, overdue int) float64 {
	if total == 0 {
		return 100.0
	}
	rate := float64(total-overdue) / float64(total) * 100
	return math.Round(rate*100) / 100
}

func newReview(a models.Asset, now time.Time, overdueDays int) AssetReview {
	r := AssetReview{
		AssetID:          a.ID,
		Name:             a.Name,
		IPAddress:        a.IPAddress,
		TeamID:           a.TeamID,
		LastReviewedDate: a.LastReviewedDate,
		Status:           Classify(a.LastReviewedDate, now, overdueDays),
	}
	if a.LastReviewedDate != nil {
		days := int(now.Sub(*a.LastReviewedDate).Hours() / 24)
		r.DaysSinceReview = &days
	}
	return r
}
