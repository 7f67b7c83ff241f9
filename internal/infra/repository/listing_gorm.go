package repository

import (
	"context"
	"strings"

	"topupstore/internal/domain/model"
	repo "topupstore/internal/repository"

	"gorm.io/gorm"
)

type ListingGormRepository struct {
	db *gorm.DB
}

// DI
func NewListingGormRepository(db *gorm.DB) *ListingGormRepository {
	return &ListingGormRepository{db: db}
}

// IDで商品を取得
func (r *ListingGormRepository) FindByID(ctx context.Context, id string) (model.Listing, error) {
	var l model.Listing
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&l).Error
	if isNotFound(err) {
		return model.Listing{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Listing{}, err
	}
	return l, nil
}

// category / game_type / search で絞り込み
func (r *ListingGormRepository) List(ctx context.Context, f repo.ListingFilter) ([]model.Listing, error) {
	q := r.db.WithContext(ctx).Model(&model.Listing{})

	if v := strings.TrimSpace(f.Category); v != "" {
		q = q.Where("category = ?", v)
	}
	if v := strings.TrimSpace(f.GameType); v != "" {
		q = q.Where("game_type = ?", v)
	}
	if v := strings.TrimSpace(f.Search); v != "" {
		like := "%" + strings.ToLower(v) + "%"
		q = q.Where("LOWER(game_name) LIKE ? OR LOWER(game_type) LIKE ?", like, like)
	}

	var ls []model.Listing
	if err := q.Order("game_type asc").Order("price asc").Order("id asc").Find(&ls).Error; err != nil {
		return []model.Listing{}, err
	}
	return ls, nil
}

func (r *ListingGormRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "category")
}

func (r *ListingGormRepository) DistinctGameTypes(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "game_type")
}

func (r *ListingGormRepository) distinct(ctx context.Context, column string) ([]string, error) {
	var out []string
	err := r.db.WithContext(ctx).
		Model(&model.Listing{}).
		Distinct(column).
		Order(column+" asc").
		Pluck(column, &out).Error
	if err != nil {
		return []string{}, err
	}
	return out, nil
}

func (r *ListingGormRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Listing{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// 商品の作成
func (r *ListingGormRepository) Create(ctx context.Context, l model.Listing) (model.Listing, error) {
	ensureID(&l.ID)
	if err := r.db.WithContext(ctx).Create(&l).Error; err != nil {
		return model.Listing{}, err
	}
	return l, nil
}

func (r *ListingGormRepository) CreateBulk(ctx context.Context, ls []model.Listing) error {
	if len(ls) == 0 {
		return nil
	}
	for i := range ls {
		ensureID(&ls[i].ID)
	}
	return r.db.WithContext(ctx).CreateInBatches(&ls, 100).Error
}

// 商品の更新
func (r *ListingGormRepository) Update(ctx context.Context, l model.Listing) error {
	res := r.db.WithContext(ctx).Model(&model.Listing{}).Where("id = ?", l.ID).Updates(map[string]interface{}{
		"game_name":   l.GameName,
		"game_type":   l.GameType,
		"server":      l.Server,
		"category":    l.Category,
		"amount":      l.Amount,
		"price":       l.Price,
		"stock":       l.Stock,
		"description": l.Description,
		"image_url":   l.ImageURL,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 商品削除
func (r *ListingGormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Listing{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// シードの作り直し用
func (r *ListingGormRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Listing{}).Error
}
