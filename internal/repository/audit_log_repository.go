package repository

import (
	"context"

	"wastenot/internal/domain/model"
)

// 監査ログの保存。状態遷移と同じトランザクションで書く。
type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
}
