package repository

import (
	"context"

	"topupstore/internal/domain/model"
)

type InventoryRepository interface {
	// 在庫の現在値を設定
	SetStock(ctx context.Context, listingID string, newStock int64) error

	// 在庫が足りるときだけ減算（1回の条件付きUPDATE）
	DecreaseStockIfEnough(ctx context.Context, listingID string, qty int64) (bool, error)

	// 調整履歴作成
	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
}
