package repository

import (
	"context"

	"topupstore/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status model.OrderStatus
}

type OrderRepository interface {
	// 明細込み
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	// 本人の注文だけ。他人の注文は ErrNotFound
	FindByIDForCustomer(ctx context.Context, orderID string, customerID string) (model.Order, error)
	// 新しい順
	ListByCustomerID(ctx context.Context, customerID string) ([]model.Order, error)
	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
	CountByStatus(ctx context.Context, status *model.OrderStatus) (int64, error)

	// 明細も一緒に作る
	Create(ctx context.Context, order *model.Order) error
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error
	UpdatePayment(ctx context.Context, orderID string, payment model.PaymentStatus, status model.OrderStatus) error
}
