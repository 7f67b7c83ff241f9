package repository

import (
	"context"
	"time"

	"topupstore/internal/domain/model"
	repo "topupstore/internal/repository"

	"gorm.io/gorm"
)

type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

func (r *auditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	ensureID(&log.ID)
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(&log).Error
}

// 件数と一覧で同じ条件を使う
func auditLogScope(f repo.AuditLogFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.ResourceType != "" {
			q = q.Where("resource_type = ?", f.ResourceType)
		}
		if f.ResourceID != "" {
			q = q.Where("resource_id = ?", f.ResourceID)
		}
		if f.Action != "" {
			q = q.Where("action = ?", f.Action)
		}
		if f.ActorUserID != "" {
			q = q.Where("actor_user_id = ?", f.ActorUserID)
		}
		return q
	}
}

func (r *auditLogGormRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&model.AuditLog{}).Scopes(auditLogScope(f)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	logs := []model.AuditLog{}
	if total == 0 {
		return logs, 0, nil
	}
	err := db.Scopes(auditLogScope(f)).
		Order("created_at desc").
		Order("id desc").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
