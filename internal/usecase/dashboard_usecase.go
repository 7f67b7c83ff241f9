package usecase

import (
	"context"

	"topupstore/internal/domain/model"
	repo "topupstore/internal/repository"
)

type DashboardUsecase struct {
	listings repo.ListingRepository
	orders   repo.OrderRepository
	users    repo.UserRepository
}

func NewDashboardUsecase(listings repo.ListingRepository, orders repo.OrderRepository, users repo.UserRepository) *DashboardUsecase {
	return &DashboardUsecase{listings: listings, orders: orders, users: users}
}

type DashboardStats struct {
	TotalListings  int64 `json:"total_listings"`
	TotalOrders    int64 `json:"total_orders"`
	TotalCustomers int64 `json:"total_customers"`
	PendingOrders  int64 `json:"pending_orders"`
}

func (u *DashboardUsecase) Stats(ctx context.Context) (DashboardStats, error) {
	var s DashboardStats
	var err error

	if s.TotalListings, err = u.listings.Count(ctx); err != nil {
		return DashboardStats{}, dbError("count listings", err)
	}
	if s.TotalOrders, err = u.orders.CountByStatus(ctx, nil); err != nil {
		return DashboardStats{}, dbError("count orders", err)
	}
	if s.TotalCustomers, err = u.users.CountByRole(ctx, model.RoleCustomer); err != nil {
		return DashboardStats{}, dbError("count customers", err)
	}
	pending := model.OrderStatusPending
	if s.PendingOrders, err = u.orders.CountByStatus(ctx, &pending); err != nil {
		return DashboardStats{}, dbError("count pending orders", err)
	}
	return s, nil
}
