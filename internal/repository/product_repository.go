package repository

import (
	"context"

	"wastenot/internal/domain/model"
)

type ProductRepository interface {
	ListByBranch(ctx context.Context, branchID string) ([]model.Product, error)

	//見つからないIDはmapに入らない
	FindByIDs(ctx context.Context, productIDs []string) (map[string]model.Product, error)
}
