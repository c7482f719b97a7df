package repository

import (
	"context"

	"wastenot/internal/domain/model"
)

// ブランチ名の参照だけ。見つからないIDはmapに入らない
type BranchRepository interface {
	FindByIDs(ctx context.Context, branchIDs []string) (map[string]model.Branch, error)
}
