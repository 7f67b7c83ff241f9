package repository

import (
	"context"

	"topupstore/internal/domain/model"
)

// 管理画面の監査ログ一覧の絞り込み。空の項目は条件にしない
type AuditLogFilter struct {
	ResourceType model.AuditResourceType
	ResourceID   string
	Action       model.AuditAction
	ActorUserID  string
	Limit        int
	Offset       int
}

type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	// 新しい順の1ページと、条件に合う総件数
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, int64, error)
}
