package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"topupstore/internal/domain/model"
	"topupstore/internal/infra/cache"
	"topupstore/internal/infra/db/dbtest"
	infraRepo "topupstore/internal/infra/repository"
	"topupstore/internal/usecase"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCartUsecase_GetCart_NoCartIsEmpty(t *testing.T) {
	f := newFixture(t)

	out, err := f.cart.GetCart(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.True(t, out.Total.IsZero())
}

func TestCartUsecase_AddItem_MergesQuantityAndKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := f.addListing(t, "Mobile Legends", 12000, 10)

	_, err := f.cart.AddItem(ctx, "cust-1", usecase.AddCartItemInput{ListingID: l.ID, Quantity: 1})
	require.NoError(t, err)

	// 価格を変えても既存明細のスナップショットは変わらない
	l.Price = decimal.NewFromInt(15000)
	require.NoError(t, f.listings.Update(ctx, l))

	out, err := f.cart.AddItem(ctx, "cust-1", usecase.AddCartItemInput{ListingID: l.ID, Quantity: 2})
	require.NoError(t, err)

	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(3), out.Items[0].Quantity)
	assert.True(t, out.Items[0].UnitPrice.Equal(decimal.NewFromInt(12000)))
	assert.Equal(t, "Mobile Legends - 50 Diamond", out.Items[0].Name)
	assert.True(t, out.Total.Equal(decimal.NewFromInt(36000)))
}

func TestCartUsecase_AddItem_KeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.addListing(t, "A", 12000, 10)
	b := f.addListing(t, "B", 23000, 10)
	c := f.addListing(t, "C", 5000, 10)

	for _, id := range []string{b.ID, a.ID, c.ID} {
		_, err := f.cart.AddItem(ctx, "cust-1", usecase.AddCartItemInput{ListingID: id, Quantity: 1})
		require.NoError(t, err)
	}

	out, err := f.cart.GetCart(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, out.Items, 3)
	assert.Equal(t, []string{b.ID, a.ID, c.ID}, []string{out.Items[0].ListingID, out.Items[1].ListingID, out.Items[2].ListingID})
}

func TestCartUsecase_AddItem_InsufficientStockLeavesCartUnchanged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := f.addListing(t, "Mobile Legends", 12000, 2)

	_, err := f.cart.AddItem(ctx, "cust-1", usecase.AddCartItemInput{ListingID: l.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = f.cart.AddItem(ctx, "cust-1", usecase.AddCartItemInput{ListingID: l.ID, Quantity: 3})
	assert.ErrorIs(t, err, usecase.ErrInsufficientStock)

	out, err := f.cart.GetCart(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(1), out.Items[0].Quantity)
}

func TestCartUsecase_AddItem_MergedQuantityCappedByStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := f.addListing(t, "Mobile Legends", 12000, 5)

	_, err := f.cart.AddItem(ctx, "cust-1", usecase.AddCartItemInput{ListingID: l.ID, Quantity: 3})
	require.NoError(t, err)

	// 1回ごとの要求は在庫内でも、合計 6 は在庫 5 を超える
	_, err = f.cart.AddItem(ctx, "cust-1", usecase.AddCartItemInput{ListingID: l.ID, Quantity: 3})
	assert.ErrorIs(t, err, usecase.ErrInsufficientStock)

	out, err := f.cart.GetCart(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(3), out.Items[0].Quantity)

	out, err = f.cart.AddItem(ctx, "cust-1", usecase.AddCartItemInput{ListingID: l.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), out.Items[0].Quantity)
}

func TestCartUsecase_AddItem_InsufficientStockWithoutCartCreatesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := f.addListing(t, "Mobile Legends", 12000, 0)

	_, err := f.cart.AddItem(ctx, "cust-1", usecase.AddCartItemInput{ListingID: l.ID, Quantity: 1})
	assert.ErrorIs(t, err, usecase.ErrInsufficientStock)

	_, err = f.carts.FindByCustomerID(ctx, "cust-1")
	assert.Error(t, err)
}

func TestCartUsecase_AddItem_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.cart.AddItem(ctx, "cust-1", usecase.AddCartItemInput{ListingID: "x", Quantity: 0})
	assert.ErrorIs(t, err, usecase.ErrValidation)

	_, err = f.cart.AddItem(ctx, "cust-1", usecase.AddCartItemInput{ListingID: "missing", Quantity: 1})
	assert.ErrorIs(t, err, usecase.ErrNotFound)

	_, err = f.cart.AddItem(ctx, "", usecase.AddCartItemInput{ListingID: "x", Quantity: 1})
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)
}

func TestCartUsecase_UpdateItemQuantity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.addListing(t, "A", 12000, 10)
	b := f.addListing(t, "B", 23000, 10)

	_, err := f.cart.AddItem(ctx, "cust-1", usecase.AddCartItemInput{ListingID: a.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, "cust-1", usecase.AddCartItemInput{ListingID: b.ID, Quantity: 1})
	require.NoError(t, err)

	// 絶対値で設定
	out, err := f.cart.UpdateItemQuantity(ctx, "cust-1", a.ID, 2)
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, int64(2), out.Items[0].Quantity)
	assert.True(t, out.Total.Equal(decimal.NewFromInt(47000)))

	// 0 以下は削除
	out, err = f.cart.UpdateItemQuantity(ctx, "cust-1", b.ID, 0)
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, a.ID, out.Items[0].ListingID)

	out, err = f.cart.UpdateItemQuantity(ctx, "cust-1", a.ID, -1)
	require.NoError(t, err)
	assert.Empty(t, out.Items)
}

func TestCartUsecase_UpdateItemQuantity_NoCartIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	out, err := f.cart.UpdateItemQuantity(ctx, "cust-1", "whatever", 3)
	require.NoError(t, err)
	assert.Empty(t, out.Items)

	_, err = f.carts.FindByCustomerID(ctx, "cust-1")
	assert.Error(t, err)
}

func TestCartUsecase_RemoveItem_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.addListing(t, "A", 12000, 10)

	_, err := f.cart.AddItem(ctx, "cust-1", usecase.AddCartItemInput{ListingID: a.ID, Quantity: 2})
	require.NoError(t, err)

	out, err := f.cart.RemoveItem(ctx, "cust-1", a.ID)
	require.NoError(t, err)
	assert.Empty(t, out.Items)

	out, err = f.cart.RemoveItem(ctx, "cust-1", a.ID)
	require.NoError(t, err)
	assert.Empty(t, out.Items)
}

// =====================
// CartCache の扱い
// =====================

type CartCacheMock struct{ mock.Mock }

func (m *CartCacheMock) Get(ctx context.Context, customerID string) (*model.Cart, error) {
	args := m.Called(ctx, customerID)
	c, _ := args.Get(0).(*model.Cart)
	return c, args.Error(1)
}

func (m *CartCacheMock) Version(ctx context.Context, customerID string) (int64, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CartCacheMock) SetIfVersion(ctx context.Context, customerID string, version int64, cart *model.Cart) error {
	args := m.Called(ctx, customerID, version, cart)
	return args.Error(0)
}

func (m *CartCacheMock) Delete(ctx context.Context, customerID string) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

func newCartUsecaseWithCache(t *testing.T, c *CartCacheMock) (*usecase.CartUsecase, *fixture) {
	t.Helper()
	f := newFixture(t)
	tx := infraRepo.NewTxManagerGorm(f.db)
	return usecase.NewCartUsecase(tx, f.carts, c, newStepClock(), discardLogger()), f
}

func TestCartUsecase_GetCart_CacheHit(t *testing.T) {
	c := new(CartCacheMock)
	uc, _ := newCartUsecaseWithCache(t, c)

	cached := &model.Cart{ID: "cart-1", CustomerID: "cust-1", Items: []model.CartItem{
		{ListingID: "l-1", Quantity: 2, UnitPriceSnapshot: decimal.NewFromInt(12000)},
	}}
	c.On("Get", mock.Anything, "cust-1").Return(cached, nil)

	out, err := uc.GetCart(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Equal(t, "cart-1", out.ID)
	assert.True(t, out.Total.Equal(decimal.NewFromInt(24000)))
	c.AssertNotCalled(t, "Version", mock.Anything, mock.Anything)
	c.AssertNotCalled(t, "SetIfVersion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_CacheErrorsAreIgnored(t *testing.T) {
	ctx := context.Background()
	c := new(CartCacheMock)
	uc, f := newCartUsecaseWithCache(t, c)
	l := f.addListing(t, "A", 12000, 10)

	down := errors.New("connection refused")
	c.On("Get", mock.Anything, "cust-1").Return(nil, down)
	c.On("Version", mock.Anything, "cust-1").Return(int64(3), nil)
	c.On("SetIfVersion", mock.Anything, "cust-1", int64(3), mock.Anything).Return(down)
	c.On("Delete", mock.Anything, "cust-1").Return(down)

	_, err := uc.AddItem(ctx, "cust-1", usecase.AddCartItemInput{ListingID: l.ID, Quantity: 1})
	require.NoError(t, err)

	out, err := uc.GetCart(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, out.Items, 1)

	c.AssertCalled(t, "Delete", mock.Anything, "cust-1")
	c.AssertCalled(t, "SetIfVersion", mock.Anything, "cust-1", int64(3), mock.Anything)
}

// 世代が取れなければ書き込みはしない
func TestCartUsecase_VersionErrorSkipsCacheWrite(t *testing.T) {
	ctx := context.Background()
	c := new(CartCacheMock)
	uc, f := newCartUsecaseWithCache(t, c)
	l := f.addListing(t, "A", 12000, 10)

	c.On("Delete", mock.Anything, "cust-1").Return(nil)
	c.On("Get", mock.Anything, "cust-1").Return(nil, nil)
	c.On("Version", mock.Anything, "cust-1").Return(int64(0), errors.New("timeout"))

	_, err := uc.AddItem(ctx, "cust-1", usecase.AddCartItemInput{ListingID: l.ID, Quantity: 1})
	require.NoError(t, err)

	out, err := uc.GetCart(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	c.AssertNotCalled(t, "SetIfVersion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// GetCart がDBを読んだ直後にチェックアウトが終わる
type checkoutDuringReadCache struct {
	*cache.RedisCartCache
	once   sync.Once
	during func()
}

func (c *checkoutDuringReadCache) SetIfVersion(ctx context.Context, customerID string, version int64, cart *model.Cart) error {
	c.once.Do(c.during)
	return c.RedisCartCache.SetIfVersion(ctx, customerID, version, cart)
}

func TestCartUsecase_GetCartDoesNotResurrectCheckedOutCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := f.addListing(t, "A", 12000, 10)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	redisCache := cache.NewRedisCartCache(client)

	tx := infraRepo.NewTxManagerGorm(f.db)
	orderUC := usecase.NewOrderUsecase(tx, f.orders, redisCache, newStepClock(), discardLogger())
	racing := &checkoutDuringReadCache{RedisCartCache: redisCache}
	cartUC := usecase.NewCartUsecase(tx, f.carts, racing, newStepClock(), discardLogger())

	_, err := cartUC.AddItem(ctx, "cust-1", usecase.AddCartItemInput{ListingID: l.ID, Quantity: 2})
	require.NoError(t, err)

	racing.during = func() {
		_, err := orderUC.Checkout(ctx, "cust-1", checkoutIn)
		require.NoError(t, err)
	}

	// 読んだ時点ではまだカートがある
	out, err := cartUC.GetCart(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.False(t, mr.Exists("cart:cust-1"))

	out, err = cartUC.GetCart(ctx, "cust-1")
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.True(t, out.Total.IsZero())
	assert.Empty(t, out.ID)
}

func TestCartUsecase_MutationInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	c := new(CartCacheMock)
	uc, f := newCartUsecaseWithCache(t, c)
	l := f.addListing(t, "A", 12000, 10)

	c.On("Delete", mock.Anything, "cust-1").Return(nil)

	_, err := uc.AddItem(ctx, "cust-1", usecase.AddCartItemInput{ListingID: l.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = uc.UpdateItemQuantity(ctx, "cust-1", l.ID, 4)
	require.NoError(t, err)
	_, err = uc.RemoveItem(ctx, "cust-1", l.ID)
	require.NoError(t, err)

	c.AssertNumberOfCalls(t, "Delete", 3)
}

func TestCartUsecase_FailedMutationKeepsCache(t *testing.T) {
	c := new(CartCacheMock)
	uc, _ := newCartUsecaseWithCache(t, c)

	_, err := uc.AddItem(context.Background(), "cust-1", usecase.AddCartItemInput{ListingID: "missing", Quantity: 1})
	assert.ErrorIs(t, err, usecase.ErrNotFound)
	c.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestCartUsecase_DBErrorIs500(t *testing.T) {
	gormDB := dbtest.Open(t)
	tx := infraRepo.NewTxManagerGorm(gormDB)
	carts := infraRepo.NewCartGormRepository(gormDB)
	c := new(CartCacheMock)
	c.On("Get", mock.Anything, "cust-1").Return(nil, nil)
	c.On("Version", mock.Anything, "cust-1").Return(int64(0), nil)

	uc := usecase.NewCartUsecase(tx, carts, c, nil, nil)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = uc.GetCart(context.Background(), "cust-1")
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 500, he.Status)
	assert.Equal(t, "db error", he.Message)
}
