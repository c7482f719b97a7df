package repository

import (
	"context"
	"time"

	repo "wastenot/internal/repository"

	"gorm.io/gorm"
)

type MetricsGormRepository struct {
	db *gorm.DB
}

func NewMetricsGormRepository(db *gorm.DB) *MetricsGormRepository {
	return &MetricsGormRepository{db: db}
}

// 出品は listings.created_at、受け取りは pickups.completed_at で期間を切る
func (r *MetricsGormRepository) BasicMetrics(ctx context.Context, storeBranchID string, from time.Time, to time.Time) (repo.BasicMetricsRow, error) {
	var row repo.BasicMetricsRow
	db := r.db.WithContext(ctx)

	//出品
	err := db.Raw(`
		SELECT
			COUNT(DISTINCT l.id) AS listings_count,
			COALESCE(SUM(li.quantity), 0) AS total_items_listed
		FROM listings l
		LEFT JOIN listing_line_items li ON li.listing_id = l.id
		WHERE l.branch_id = ? AND l.created_at >= ? AND l.created_at < ?
	`, storeBranchID, from, to).Scan(&row).Error
	if err != nil {
		return repo.BasicMetricsRow{}, err
	}

	//受け取り完了分
	var rescued struct {
		PickupsCompleted  int64
		TotalItemsRescued int64
	}
	err = db.Raw(`
		SELECT
			COUNT(DISTINCT p.id) AS pickups_completed,
			COALESCE(SUM(ci.quantity), 0) AS total_items_rescued
		FROM pickups p
		JOIN claim_items ci ON ci.claim_id = p.claim_id
		JOIN listing_line_items li ON li.id = ci.line_item_id
		JOIN listings l ON l.id = li.listing_id
		WHERE p.complete = TRUE
		AND l.branch_id = ?
		AND p.completed_at >= ? AND p.completed_at < ?
	`, storeBranchID, from, to).Scan(&rescued).Error
	if err != nil {
		return repo.BasicMetricsRow{}, err
	}

	row.PickupsCompleted = rescued.PickupsCompleted
	row.TotalItemsRescued = rescued.TotalItemsRescued
	return row, nil
}
