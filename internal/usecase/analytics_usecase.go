package usecase

import (
	"context"
	"math"
	"strings"

	repo "wastenot/internal/repository"
)

const (
	defaultMetricsDays = 30
	maxMetricsDays     = 365
)

type AnalyticsUsecase struct {
	metrics repo.MetricsRepository
	clock   Clock
}

// DI
func NewAnalyticsUsecase(metrics repo.MetricsRepository, clock Clock) *AnalyticsUsecase {
	return &AnalyticsUsecase{metrics: metrics, clock: clock}
}

type MetricsPeriod struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      int    `json:"days"`
}

type BasicMetricsOutput struct {
	Period            MetricsPeriod `json:"period"`
	ListingsCount     int64         `json:"listings_count"`
	TotalItemsListed  int64         `json:"total_items_listed"`
	PickupsCompleted  int64         `json:"pickups_completed"`
	TotalItemsRescued int64         `json:"total_items_rescued"`
	RescueRate        float64       `json:"rescue_rate"` // %
}

// 直近days日の出品・受け取り実績。daysが0なら30日
func (u *AnalyticsUsecase) BasicMetrics(ctx context.Context, storeBranchID string, days int) (BasicMetricsOutput, error) {
	if strings.TrimSpace(storeBranchID) == "" {
		return BasicMetricsOutput{}, validationError("branch_id required")
	}
	if days == 0 {
		days = defaultMetricsDays
	}
	if days < 1 || days > maxMetricsDays {
		return BasicMetricsOutput{}, validationError("days must be between 1 and 365")
	}

	to := u.clock.Now()
	from := to.AddDate(0, 0, -days)

	row, err := u.metrics.BasicMetrics(ctx, storeBranchID, from, to)
	if err != nil {
		return BasicMetricsOutput{}, dbError(err)
	}

	return BasicMetricsOutput{
		Period: MetricsPeriod{
			StartDate: from.Format("2006-01-02"),
			EndDate:   to.Format("2006-01-02"),
			Days:      days,
		},
		ListingsCount:     row.ListingsCount,
		TotalItemsListed:  row.TotalItemsListed,
		PickupsCompleted:  row.PickupsCompleted,
		TotalItemsRescued: row.TotalItemsRescued,
		RescueRate:        rescueRate(row.TotalItemsRescued, row.TotalItemsListed),
	}, nil
}

// 小数2桁で丸める。出品0なら0
func rescueRate(rescued int64, listed int64) float64 {
	if listed <= 0 {
		return 0
	}
	return math.Round(float64(rescued)/float64(listed)*100*100) / 100
}
