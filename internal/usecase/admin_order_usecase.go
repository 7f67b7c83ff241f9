package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"topupstore/internal/domain/model"
	repo "topupstore/internal/repository"
)

const unknownCustomerName = "Unknown"

type AdminOrderUsecase struct {
	tx     repo.TransactionManager
	orders repo.OrderRepository
	users  repo.UserRepository
	clock  Clock
}

func NewAdminOrderUsecase(tx repo.TransactionManager, orders repo.OrderRepository, users repo.UserRepository, clock Clock) *AdminOrderUsecase {
	if clock == nil {
		clock = SystemClock{}
	}
	return &AdminOrderUsecase{tx: tx, orders: orders, users: users, clock: clock}
}

type AdminListOrdersInput struct {
	Page   int
	Limit  int
	Status string
}

type AdminOrderOutput struct {
	OrderOutput
	CustomerName string `json:"customer_name"`
}

type AdminOrderListOutput struct {
	Items []AdminOrderOutput `json:"items"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type AdminOrderDetailOutput struct {
	OrderOutput
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

// 注文一覧。顧客名はページ内の顧客IDをまとめて1回で引く。
func (u *AdminOrderUsecase) List(ctx context.Context, in AdminListOrdersInput) (AdminOrderListOutput, error) {
	if in.Page == 0 {
		in.Page = 1
	}
	if in.Limit == 0 {
		in.Limit = 50
	}
	// page/limitの最低限チェック
	if in.Page < 1 {
		return AdminOrderListOutput{}, validationError("invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return AdminOrderListOutput{}, validationError("invalid limit")
	}

	f := repo.AdminOrderListFilter{Page: in.Page, Limit: in.Limit}
	if s := strings.TrimSpace(in.Status); s != "" {
		st, err := model.ParseOrderStatus(s)
		if err != nil {
			return AdminOrderListOutput{}, newKindErrorf(ErrInvalidStatus, "invalid status: %s", s)
		}
		f.Status = st
	}

	orders, total, err := u.orders.ListAdmin(ctx, f)
	if err != nil {
		return AdminOrderListOutput{}, dbError("list orders", err)
	}

	names, err := u.customerNames(ctx, orders)
	if err != nil {
		return AdminOrderListOutput{}, dbError("find users", err)
	}

	items := make([]AdminOrderOutput, 0, len(orders))
	for _, o := range orders {
		name, ok := names[o.CustomerID]
		if !ok {
			name = unknownCustomerName
		}
		items = append(items, AdminOrderOutput{OrderOutput: toOrderOutput(o), CustomerName: name})
	}

	return AdminOrderListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

func (u *AdminOrderUsecase) customerNames(ctx context.Context, orders []model.Order) (map[string]string, error) {
	names := map[string]string{}
	if len(orders) == 0 {
		return names, nil
	}

	seen := make(map[string]struct{}, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		if _, ok := seen[o.CustomerID]; ok {
			continue
		}
		seen[o.CustomerID] = struct{}{}
		ids = append(ids, o.CustomerID)
	}

	users, err := u.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, us := range users {
		names[us.ID] = us.FullName
	}
	return names, nil
}

// 管理者用の詳細。顧客の連絡先も付ける。
func (u *AdminOrderUsecase) GetDetail(ctx context.Context, orderID string) (AdminOrderDetailOutput, error) {
	if strings.TrimSpace(orderID) == "" {
		return AdminOrderDetailOutput{}, validationError("invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return AdminOrderDetailOutput{}, newKindError(ErrNotFound)
	}
	if err != nil {
		return AdminOrderDetailOutput{}, dbError("find order", err)
	}

	out := AdminOrderDetailOutput{OrderOutput: toOrderOutput(o), CustomerName: unknownCustomerName}
	us, err := u.users.FindByID(ctx, o.CustomerID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return AdminOrderDetailOutput{}, dbError("find user", err)
	}
	if err == nil {
		out.CustomerName = us.FullName
		out.CustomerEmail = us.Email
		out.CustomerPhone = us.PhoneNumber
	}
	return out, nil
}

// ステータスを無条件に設定し、監査ログを残す
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, adminID string, orderID string, status string) (OrderOutput, error) {
	if adminID == "" {
		return OrderOutput{}, newKindError(ErrUnauthorized)
	}
	if strings.TrimSpace(orderID) == "" {
		return OrderOutput{}, validationError("invalid id")
	}

	newStatus, err := model.ParseOrderStatus(status)
	if err != nil {
		return OrderOutput{}, newKindErrorf(ErrInvalidStatus, "invalid status: %s", status)
	}

	var out OrderOutput
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return newKindError(ErrNotFound)
		}
		if err != nil {
			return dbError("find order", err)
		}

		before := o.Status
		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			if err == repo.ErrNotFound {
				return newKindError(ErrNotFound)
			}
			return dbError("update status", err)
		}

		now := u.clock.Now()
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   fmt.Sprintf(`{"status":%q}`, before),
			AfterJSON:    fmt.Sprintf(`{"status":%q}`, newStatus),
			CreatedAt:    now,
		}); err != nil {
			return dbError("create audit log", err)
		}

		o.Status = newStatus
		o.UpdatedAt = now
		out = toOrderOutput(o)
		return nil
	})
	if err != nil {
		return OrderOutput{}, passOrDBError("update status", err)
	}
	return out, nil
}
