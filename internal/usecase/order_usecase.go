package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"topupstore/internal/domain/model"
	repo "topupstore/internal/repository"

	"github.com/shopspring/decimal"
)

type OrderUsecase struct {
	tx     repo.TransactionManager
	orders repo.OrderRepository
	cache  repo.CartCache
	clock  Clock
	logger *slog.Logger
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	cache repo.CartCache,
	clock Clock,
	logger *slog.Logger,
) *OrderUsecase {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderUsecase{tx: tx, orders: orders, cache: cache, clock: clock, logger: logger}
}

type CheckoutInput struct {
	GameAccount string
	Server      string
}

type OrderItemOutput struct {
	ListingID string          `json:"listing_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type OrderOutput struct {
	ID            string              `json:"id"`
	CustomerID    string              `json:"customer_id"`
	Status        model.OrderStatus   `json:"status"`
	PaymentMethod string              `json:"payment_method"`
	PaymentStatus model.PaymentStatus `json:"payment_status"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	GameAccount   string              `json:"game_account"`
	Server        string              `json:"server"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	Items         []OrderItemOutput   `json:"items"`
}

// Checkout はカートを1件の注文に変える。
// 在庫が1つでも足りなければ全部ロールバック（注文なし・在庫そのまま・カート維持）。
func (u *OrderUsecase) Checkout(ctx context.Context, customerID string, in CheckoutInput) (OrderOutput, error) {
	if customerID == "" {
		return OrderOutput{}, newKindError(ErrUnauthorized)
	}
	account := strings.TrimSpace(in.GameAccount)
	if account == "" || len(account) > 255 {
		return OrderOutput{}, validationError("invalid game_account")
	}
	server := strings.TrimSpace(in.Server)
	if len(server) > 100 {
		return OrderOutput{}, validationError("invalid server")
	}

	var out OrderOutput

	//注文処理はトランザクション
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().LockByCustomerID(ctx, customerID)
		if err == repo.ErrNotFound {
			return newKindError(ErrEmptyCart)
		}
		if err != nil {
			return dbError("lock cart", err)
		}
		if cart.IsEmpty() {
			return newKindError(ErrEmptyCart)
		}

		//スナップショットをそのまま注文明細へ
		now := u.clock.Now()
		items := make([]model.OrderItem, 0, len(cart.Items))
		for _, ci := range cart.Items {
			items = append(items, model.OrderItem{
				ListingID:   ci.ListingID,
				ListingName: ci.ListingName,
				Quantity:    ci.Quantity,
				UnitPrice:   ci.UnitPriceSnapshot,
			})
		}

		order := model.Order{
			CustomerID:    customerID,
			Items:         items,
			TotalAmount:   cart.Total(),
			GameAccount:   account,
			Server:        server,
			Status:        model.OrderStatusPending,
			PaymentMethod: model.PaymentMethodQRIS,
			PaymentStatus: model.PaymentStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := r.Orders().Create(ctx, &order); err != nil {
			return dbError("create order", err)
		}

		//在庫減算（足りないなら false）
		for _, it := range order.Items {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, it.ListingID, it.Quantity)
			if err != nil {
				return dbError("decrease stock", err)
			}
			if ok {
				continue
			}

			//商品が消えたのか在庫不足なのか
			_, err = r.Listings().FindByID(ctx, it.ListingID)
			if err == repo.ErrNotFound {
				return newKindErrorf(ErrNotFound, "listing %s not found", it.ListingID)
			}
			if err != nil {
				return dbError("find listing", err)
			}
			return newKindErrorf(ErrInsufficientStock, "insufficient stock for %s", it.ListingName)
		}

		if err := r.Carts().Delete(ctx, cart.ID); err != nil {
			return dbError("delete cart", err)
		}

		out = toOrderOutput(order)
		return nil
	})
	if err != nil {
		return OrderOutput{}, passOrDBError("checkout", err)
	}

	if err := u.cache.Delete(ctx, customerID); err != nil {
		u.logger.WarnContext(ctx, "cart cache delete failed", "customer_id", customerID, "err", err)
	}
	return out, nil
}

// 支払い確認。payment=Paid, status=Processing にする（何度呼んでも同じ結果）。
func (u *OrderUsecase) ConfirmPayment(ctx context.Context, customerID string, orderID string) (OrderOutput, error) {
	if customerID == "" {
		return OrderOutput{}, newKindError(ErrUnauthorized)
	}
	if strings.TrimSpace(orderID) == "" {
		return OrderOutput{}, validationError("invalid id")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForCustomer(ctx, orderID, customerID)
		if err == repo.ErrNotFound {
			return newKindError(ErrNotFound)
		}
		if err != nil {
			return dbError("find order", err)
		}

		if err := r.Orders().UpdatePayment(ctx, o.ID, model.PaymentStatusPaid, model.OrderStatusProcessing); err != nil {
			if err == repo.ErrNotFound {
				return newKindError(ErrNotFound)
			}
			return dbError("update payment", err)
		}

		o.PaymentStatus = model.PaymentStatusPaid
		o.Status = model.OrderStatusProcessing
		o.UpdatedAt = u.clock.Now()
		out = toOrderOutput(o)
		return nil
	})
	if err != nil {
		return OrderOutput{}, passOrDBError("confirm payment", err)
	}
	return out, nil
}

// 自分の注文（新しい順）
func (u *OrderUsecase) ListMyOrders(ctx context.Context, customerID string) ([]OrderOutput, error) {
	if customerID == "" {
		return []OrderOutput{}, newKindError(ErrUnauthorized)
	}

	orders, err := u.orders.ListByCustomerID(ctx, customerID)
	if err != nil {
		return []OrderOutput{}, dbError("list orders", err)
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o))
	}
	return outs, nil
}

// 他人の注文は「存在しない扱い」にする
func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, customerID string, orderID string) (OrderOutput, error) {
	if customerID == "" {
		return OrderOutput{}, newKindError(ErrUnauthorized)
	}
	if strings.TrimSpace(orderID) == "" {
		return OrderOutput{}, validationError("invalid id")
	}

	o, err := u.orders.FindByIDForCustomer(ctx, orderID, customerID)
	if err == repo.ErrNotFound {
		return OrderOutput{}, newKindError(ErrNotFound)
	}
	if err != nil {
		return OrderOutput{}, dbError("find order", err)
	}
	return toOrderOutput(o), nil
}

func toOrderOutput(o model.Order) OrderOutput {
	items := make([]OrderItemOutput, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemOutput{
			ListingID: it.ListingID,
			Name:      it.ListingName,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal(),
		})
	}

	return OrderOutput{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		PaymentStatus: o.PaymentStatus,
		TotalAmount:   o.TotalAmount,
		GameAccount:   o.GameAccount,
		Server:        o.Server,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		Items:         items,
	}
}
