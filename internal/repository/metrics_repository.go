package repository

import (
	"context"
	"time"
)

// 期間内の集計値
type BasicMetricsRow struct {
	ListingsCount     int64
	TotalItemsListed  int64
	PickupsCompleted  int64
	TotalItemsRescued int64
}

type MetricsRepository interface {
	BasicMetrics(ctx context.Context, storeBranchID string, from time.Time, to time.Time) (BasicMetricsRow, error)
}
