package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"topupstore/internal/domain/model"
	"topupstore/internal/infra/cache"
	"topupstore/internal/infra/db/dbtest"
	infraRepo "topupstore/internal/infra/repository"
	repo "topupstore/internal/repository"
	"topupstore/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// 呼ぶたびに1秒進む時計
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type fixture struct {
	db       *gorm.DB
	listings repo.ListingRepository
	orders   repo.OrderRepository
	carts    repo.CartRepository
	users    repo.UserRepository

	catalog    *usecase.CatalogUsecase
	cart       *usecase.CartUsecase
	order      *usecase.OrderUsecase
	adminOrder *usecase.AdminOrderUsecase
	dashboard  *usecase.DashboardUsecase
	adminUser  *usecase.AdminUserUsecase
	auditLog   *usecase.AuditLogUsecase
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gormDB := dbtest.Open(t)
	clock := newStepClock()
	logger := discardLogger()

	tx := infraRepo.NewTxManagerGorm(gormDB)
	listings := infraRepo.NewListingGormRepository(gormDB)
	orders := infraRepo.NewOrderGormRepository(gormDB)
	carts := infraRepo.NewCartGormRepository(gormDB)
	users := infraRepo.NewUserGormRepository(gormDB)
	nop := cache.NopCartCache{}

	return &fixture{
		db:         gormDB,
		listings:   listings,
		orders:     orders,
		carts:      carts,
		users:      users,
		catalog:    usecase.NewCatalogUsecase(listings, tx, clock),
		cart:       usecase.NewCartUsecase(tx, carts, nop, clock, logger),
		order:      usecase.NewOrderUsecase(tx, orders, nop, clock, logger),
		adminOrder: usecase.NewAdminOrderUsecase(tx, orders, users, clock),
		dashboard:  usecase.NewDashboardUsecase(listings, orders, users),
		adminUser:  usecase.NewAdminUserUsecase(tx, users, clock),
		auditLog:   usecase.NewAuditLogUsecase(infraRepo.NewAuditLogGormRepository(gormDB)),
	}
}

func (f *fixture) addListing(t *testing.T, name string, price int64, stock int64) model.Listing {
	t.Helper()
	l, err := f.listings.Create(context.Background(), model.Listing{
		GameName: name,
		GameType: "MLBB",
		Server:   "Indonesia",
		Category: "Diamond",
		Amount:   50,
		Price:    decimal.NewFromInt(price),
		Stock:    stock,
	})
	require.NoError(t, err)
	return l
}

func (f *fixture) addUser(t *testing.T, id, name string, role model.Role) model.User {
	t.Helper()
	u := model.User{
		ID:           id,
		FullName:     name,
		Email:        id + "@example.com",
		PhoneNumber:  "0812000" + id,
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, f.users.Create(context.Background(), &u))
	return u
}

func (f *fixture) stockOf(t *testing.T, id string) int64 {
	t.Helper()
	l, err := f.listings.FindByID(context.Background(), id)
	require.NoError(t, err)
	return l.Stock
}

func (f *fixture) orderCount(t *testing.T) int64 {
	t.Helper()
	n, err := f.orders.CountByStatus(context.Background(), nil)
	require.NoError(t, err)
	return n
}
