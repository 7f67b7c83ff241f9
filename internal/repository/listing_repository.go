package repository

import (
	"context"

	"topupstore/internal/domain/model"
)

// カタログ一覧の絞り込み
type ListingFilter struct {
	Category string
	GameType string
	//game_name / game_type の部分一致（大文字小文字を区別しない）
	Search string
}

// 商品の永続化（保存・取得）だけを約束。
type ListingRepository interface {
	FindByID(ctx context.Context, id string) (model.Listing, error)
	List(ctx context.Context, f ListingFilter) ([]model.Listing, error)
	DistinctCategories(ctx context.Context) ([]string, error)
	DistinctGameTypes(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)

	Create(ctx context.Context, l model.Listing) (model.Listing, error)
	CreateBulk(ctx context.Context, ls []model.Listing) error
	Update(ctx context.Context, l model.Listing) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}
