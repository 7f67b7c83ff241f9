package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"topupstore/internal/domain/model"
	repo "topupstore/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジックです。
// 変更系はすべてカート行をロックしたTxの中で行います。
type CartUsecase struct {
	tx     repo.TransactionManager
	carts  repo.CartRepository
	cache  repo.CartCache
	clock  Clock
	logger *slog.Logger
}

func NewCartUsecase(
	tx repo.TransactionManager,
	carts repo.CartRepository,
	cache repo.CartCache,
	clock Clock,
	logger *slog.Logger,
) *CartUsecase {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CartUsecase{
		tx:     tx,
		carts:  carts,
		cache:  cache,
		clock:  clock,
		logger: logger,
	}
}

// price は unit_price_snapshot（追加時点の価格）を返します。
type CartItemOutput struct {
	ListingID string          `json:"listing_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CartOutput struct {
	ID        string           `json:"id,omitempty"`
	Items     []CartItemOutput `json:"items"`
	Total     decimal.Decimal  `json:"total"`
	UpdatedAt *time.Time       `json:"updated_at,omitempty"`
}

type AddCartItemInput struct {
	ListingID string
	Quantity  int64
}

// 同時に初回追加が走って一意制約に当たった
var errCartRace = errors.New("cart created concurrently")

// GetCart はカート取得（無ければ空を返す。エラーにはしない）。
func (u *CartUsecase) GetCart(ctx context.Context, customerID string) (CartOutput, error) {
	if customerID == "" {
		return CartOutput{}, newKindError(ErrUnauthorized)
	}

	cached, err := u.cache.Get(ctx, customerID)
	if err != nil {
		u.logger.WarnContext(ctx, "cart cache get failed", "customer_id", customerID, "err", err)
	}
	if cached != nil {
		return toCartOutput(*cached), nil
	}

	// DBより先に世代を取る。読んでいる間に消されたら書き戻さない
	version, verErr := u.cache.Version(ctx, customerID)
	if verErr != nil {
		u.logger.WarnContext(ctx, "cart cache version failed", "customer_id", customerID, "err", verErr)
	}

	cart, err := u.carts.FindByCustomerID(ctx, customerID)
	if err == repo.ErrNotFound {
		return emptyCartOutput(), nil
	}
	if err != nil {
		return CartOutput{}, dbError("find cart", err)
	}

	if verErr == nil {
		if err := u.cache.SetIfVersion(ctx, customerID, version, &cart); err != nil {
			u.logger.WarnContext(ctx, "cart cache set failed", "customer_id", customerID, "err", err)
		}
	}
	return toCartOutput(cart), nil
}

// AddItem はカートに追加（同一商品は数量加算、最初のスナップショット価格を維持）。
func (u *CartUsecase) AddItem(ctx context.Context, customerID string, in AddCartItemInput) (CartOutput, error) {
	if customerID == "" {
		return CartOutput{}, newKindError(ErrUnauthorized)
	}
	if strings.TrimSpace(in.ListingID) == "" {
		return CartOutput{}, validationError("invalid listing_id")
	}
	if in.Quantity < 1 {
		return CartOutput{}, validationError("quantity must be >= 1")
	}

	return u.mutate(ctx, customerID, func(r repo.TxRepos, cart *model.Cart, now time.Time) (bool, error) {
		l, err := r.Listings().FindByID(ctx, in.ListingID)
		if err == repo.ErrNotFound {
			return false, newKindError(ErrNotFound)
		}
		if err != nil {
			return false, dbError("find listing", err)
		}

		// 合算後の数量が在庫を超えたら拒否
		i, exists := cart.FindItem(in.ListingID)
		want := in.Quantity
		if exists {
			want += cart.Items[i].Quantity
		}
		if l.Stock < want {
			return false, newKindError(ErrInsufficientStock)
		}

		if exists {
			cart.Items[i].Quantity = want
			return true, nil
		}

		cart.Items = append(cart.Items, model.CartItem{
			ListingID:         l.ID,
			ListingName:       l.DisplayName(),
			Quantity:          in.Quantity,
			UnitPriceSnapshot: l.Price,
			CreatedAt:         now,
		})
		return true, nil
	}, true)
}

// 数量変更。0以下なら削除、カートや明細が無ければ何もしない。
func (u *CartUsecase) UpdateItemQuantity(ctx context.Context, customerID string, listingID string, qty int64) (CartOutput, error) {
	if customerID == "" {
		return CartOutput{}, newKindError(ErrUnauthorized)
	}
	if strings.TrimSpace(listingID) == "" {
		return CartOutput{}, validationError("invalid listing_id")
	}

	return u.mutate(ctx, customerID, func(_ repo.TxRepos, cart *model.Cart, _ time.Time) (bool, error) {
		i, ok := cart.FindItem(listingID)
		if !ok {
			return false, nil
		}
		if qty <= 0 {
			cart.RemoveItem(listingID)
			return true, nil
		}
		cart.Items[i].Quantity = qty
		return true, nil
	}, false)
}

// 明細削除（何度呼んでも同じ）
func (u *CartUsecase) RemoveItem(ctx context.Context, customerID string, listingID string) (CartOutput, error) {
	if customerID == "" {
		return CartOutput{}, newKindError(ErrUnauthorized)
	}
	if strings.TrimSpace(listingID) == "" {
		return CartOutput{}, validationError("invalid listing_id")
	}

	return u.mutate(ctx, customerID, func(_ repo.TxRepos, cart *model.Cart, _ time.Time) (bool, error) {
		return cart.RemoveItem(listingID) > 0, nil
	}, false)
}

// ロック→変更→保存を1つのTxで行う。
// fn が false を返したら保存しない。createIfMissing が false ならカートが無いとき何もしない。
func (u *CartUsecase) mutate(
	ctx context.Context,
	customerID string,
	fn func(r repo.TxRepos, cart *model.Cart, now time.Time) (bool, error),
	createIfMissing bool,
) (CartOutput, error) {
	var out CartOutput

	run := func() error {
		return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			now := u.clock.Now()

			cart, err := r.Carts().LockByCustomerID(ctx, customerID)
			if err == repo.ErrNotFound {
				if !createIfMissing {
					out = emptyCartOutput()
					return nil
				}
				cart = model.Cart{CustomerID: customerID, CreatedAt: now}
			} else if err != nil {
				return dbError("lock cart", err)
			}

			changed, err := fn(r, &cart, now)
			if err != nil {
				return err
			}
			if changed {
				cart.UpdatedAt = now
				if err := r.Carts().Save(ctx, &cart); err != nil {
					if errors.Is(err, repo.ErrDuplicate) {
						return errCartRace
					}
					return dbError("save cart", err)
				}
			}

			out = toCartOutput(cart)
			return nil
		})
	}

	err := run()
	if errors.Is(err, errCartRace) {
		// 先に作られたカートをロックし直す
		err = run()
	}
	if errors.Is(err, errCartRace) {
		return CartOutput{}, newKindErrorf(ErrConflict, "cart is being modified")
	}
	if err != nil {
		return CartOutput{}, passOrDBError("cart tx", err)
	}

	u.invalidate(ctx, customerID)
	return out, nil
}

func (u *CartUsecase) invalidate(ctx context.Context, customerID string) {
	if err := u.cache.Delete(ctx, customerID); err != nil {
		u.logger.WarnContext(ctx, "cart cache delete failed", "customer_id", customerID, "err", err)
	}
}

func emptyCartOutput() CartOutput {
	return CartOutput{Items: []CartItemOutput{}, Total: decimal.Zero}
}

func toCartOutput(c model.Cart) CartOutput {
	if c.ID == "" && c.IsEmpty() {
		return emptyCartOutput()
	}

	items := make([]CartItemOutput, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, CartItemOutput{
			ListingID: it.ListingID,
			Name:      it.ListingName,
			UnitPrice: it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal(),
		})
	}

	updated := c.UpdatedAt
	return CartOutput{
		ID:        c.ID,
		Items:     items,
		Total:     c.Total(),
		UpdatedAt: &updated,
	}
}
