package repository

import (
	"context"
	"time"

	"topupstore/internal/domain/model"
	repo "topupstore/internal/repository"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 在庫の現在値を設定
func (r *InventoryGormRepository) SetStock(ctx context.Context, listingID string, newStock int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Listing{}).
		Where("id = ?", listingID).
		Update("stock", newStock)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 在庫が足りるときだけ減らす
func (r *InventoryGormRepository) DecreaseStockIfEnough(ctx context.Context, listingID string, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Listing{}).
		Where("id = ? AND stock >= ?", listingID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// 調整履歴作成
func (r *InventoryGormRepository) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	ensureID(&adj.ID)
	if adj.CreatedAt.IsZero() {
		adj.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(&adj).Error
}
