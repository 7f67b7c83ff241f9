package repository

import (
	"context"
	"time"

	"topupstore/internal/domain/model"
	repo "topupstore/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}

// ユーザーのカートを明細込みで取得
func (r *CartGormRepository) FindByCustomerID(ctx context.Context, customerID string) (model.Cart, error) {
	var cart model.Cart

	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Where("customer_id = ?", customerID).
		First(&cart).Error

	if isNotFound(err) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

// SELECT ... FOR UPDATE で取得（Tx内で使う）
func (r *CartGormRepository) LockByCustomerID(ctx context.Context, customerID string) (model.Cart, error) {
	var cart model.Cart

	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("customer_id = ?", customerID).
		First(&cart).Error

	if isNotFound(err) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, err
	}

	//明細はロック後に読む
	if err := orderedItems(r.db.WithContext(ctx)).
		Where("cart_id = ?", cart.ID).
		Find(&cart.Items).Error; err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

// カート本体をupsertし、明細は全削除→作り直し
func (r *CartGormRepository) Save(ctx context.Context, cart *model.Cart) error {
	ensureID(&cart.ID)
	now := time.Now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	if cart.UpdatedAt.IsZero() {
		cart.UpdatedAt = now
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(cart).Error; err != nil {
			if isDuplicate(err) {
				return repo.ErrDuplicate
			}
			return err
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return nil
		}

		for i := range cart.Items {
			ensureID(&cart.Items[i].ID)
			cart.Items[i].CartID = cart.ID
			cart.Items[i].Position = i
			if cart.Items[i].CreatedAt.IsZero() {
				cart.Items[i].CreatedAt = now
			}
		}
		return tx.Create(&cart.Items).Error
	})
}

// カートと明細を削除
func (r *CartGormRepository) Delete(ctx context.Context, cartID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", cartID).Delete(&model.Cart{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}
