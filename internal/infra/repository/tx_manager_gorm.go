package repository

import (
	"context"

	repo "topupstore/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders    repo.OrderRepository
	carts     repo.CartRepository
	inventory repo.InventoryRepository
	listings  repo.ListingRepository
	auditLogs repo.AuditLogRepository
	users     repo.UserRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository        { return r.orders }
func (r *txReposGorm) Carts() repo.CartRepository          { return r.carts }
func (r *txReposGorm) Inventory() repo.InventoryRepository { return r.inventory }
func (r *txReposGorm) Listings() repo.ListingRepository    { return r.listings }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository  { return r.auditLogs }
func (r *txReposGorm) Users() repo.UserRepository          { return r.users }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:    NewOrderGormRepository(tx),
			carts:     NewCartGormRepository(tx),
			inventory: NewInventoryGormRepository(tx),
			listings:  NewListingGormRepository(tx),
			auditLogs: NewAuditLogGormRepository(tx),
			users:     NewUserGormRepository(tx),
		}
		return fn(r)
	})
}
