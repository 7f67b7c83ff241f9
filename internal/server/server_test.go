package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"topupstore/internal/domain/model"
	"topupstore/internal/handler"
	"topupstore/internal/infra/cache"
	"topupstore/internal/infra/db/dbtest"
	infraRepo "topupstore/internal/infra/repository"
	"topupstore/internal/usecase"
	auth "topupstore/internal/usecase/auth_usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "server-test-secret"

type idGen struct{}

func (idGen) NewID() string { return uuid.NewString() }

type testApp struct {
	e          *echo.Echo
	ensure     *auth.EnsureAdminUsecase
	adminToken string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	gormDB := dbtest.Open(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := usecase.SystemClock{}
	nop := cache.NopCartCache{}

	txm := infraRepo.NewTxManagerGorm(gormDB)
	listings := infraRepo.NewListingGormRepository(gormDB)
	carts := infraRepo.NewCartGormRepository(gormDB)
	orders := infraRepo.NewOrderGormRepository(gormDB)
	users := infraRepo.NewUserGormRepository(gormDB)

	registerUC := auth.NewRegisterUserUsecase(users, auth.NewBcryptPasswordHasher(bcrypt.MinCost), idGen{}, clock)
	loginUC := auth.NewLoginUsecase(users, auth.NewBcryptPasswordVerifier(), auth.NewJWTIssuer(testSecret, 0), clock)
	catalogUC := usecase.NewCatalogUsecase(listings, txm, clock)

	e := New(logger, testSecret, users, Handlers{
		Auth:         handler.NewAuthHandler(registerUC, loginUC),
		Listing:      handler.NewListingHandler(catalogUC),
		Cart:         handler.NewCartHandler(usecase.NewCartUsecase(txm, carts, nop, clock, logger)),
		Order:        handler.NewOrderHandler(usecase.NewOrderUsecase(txm, orders, nop, clock, logger)),
		AdminListing: handler.NewAdminListingHandler(catalogUC),
		AdminOrder:   handler.NewAdminOrderHandler(usecase.NewAdminOrderUsecase(txm, orders, users, clock)),
		AdminUser:    handler.NewAdminUserHandler(usecase.NewAdminUserUsecase(txm, users, clock)),
		Dashboard:    handler.NewDashboardHandler(usecase.NewDashboardUsecase(listings, orders, users)),
		AuditLog:     handler.NewAuditLogHandler(usecase.NewAuditLogUsecase(infraRepo.NewAuditLogGormRepository(gormDB))),
	})

	app := &testApp{e: e, ensure: auth.NewEnsureAdminUsecase(registerUC)}
	_, err := app.ensure.Execute(context.Background(), "admin@example.com", "admin-secret")
	require.NoError(t, err)
	app.adminToken = app.login(t, "admin@example.com", "admin-secret")
	return app
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out auth.LoginOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out.Token.AccessToken
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"full_name": "Budi", "email": "budi@example.com", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"password must be >= 8"}`, rec.Body.String())

	body := map[string]string{"full_name": "Budi", "email": "budi@example.com", "password": "budi-secret", "phone_number": "0812"}
	rec = app.do(t, http.MethodPost, "/auth/register", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	u := decode[model.User](t, rec)
	assert.Equal(t, model.RoleCustomer, u.Role)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = app.do(t, http.MethodPost, "/auth/register", "", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = app.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "budi@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := app.login(t, "budi@example.com", "budi-secret")
	rec = app.do(t, http.MethodGet, "/admin/dashboard", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestStorefrontFlow(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/admin/listings/seed", app.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = app.do(t, http.MethodPost, "/admin/listings/seed", app.adminToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = app.do(t, http.MethodPost, "/admin/listings/seed?force=maybe", app.adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodGet, "/listings?game_type=MLBB", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mlbb := decode[[]model.Listing](t, rec)
	require.Len(t, mlbb, 6)
	cheap, next := mlbb[0], mlbb[1]

	rec = app.do(t, http.MethodGet, "/listings/facets", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = app.do(t, http.MethodGet, "/listings/"+cheap.ID, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = app.do(t, http.MethodGet, "/listings/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"full_name": "Sari", "email": "sari@example.com", "password": "sari-secret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	token := app.login(t, "sari@example.com", "sari-secret")

	rec = app.do(t, http.MethodGet, "/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(t, http.MethodPost, "/orders", token, map[string]string{"game_account": "998877"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"cart empty"}`, rec.Body.String())

	rec = app.do(t, http.MethodPost, "/cart/items", token, map[string]interface{}{"listing_id": cheap.ID, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, "/cart/items", token, map[string]interface{}{"listing_id": cheap.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = app.do(t, http.MethodPost, "/cart/items", token, map[string]interface{}{"listing_id": next.ID, "quantity": 3})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = app.do(t, http.MethodPatch, "/cart/items/"+next.ID, token, map[string]interface{}{"quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decode[usecase.CartOutput](t, rec)
	assert.Equal(t, "47000", cart.Total.String())

	rec = app.do(t, http.MethodPost, "/cart/items", token, map[string]interface{}{"listing_id": cheap.ID, "quantity": 1000})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = app.do(t, http.MethodPost, "/orders", token, map[string]string{"game_account": "998877", "server": "2001"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[usecase.OrderOutput](t, rec)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, "47000", order.TotalAmount.String())

	rec = app.do(t, http.MethodGet, "/cart", token, nil)
	assert.Empty(t, decode[usecase.CartOutput](t, rec).Items)

	rec = app.do(t, http.MethodPost, "/orders/"+order.ID+"/confirm-payment", app.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = app.do(t, http.MethodPost, "/orders/"+order.ID+"/confirm-payment", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.PaymentStatusPaid, decode[usecase.OrderOutput](t, rec).PaymentStatus)

	rec = app.do(t, http.MethodGet, "/orders", token, nil)
	assert.Len(t, decode[[]usecase.OrderOutput](t, rec), 1)
	rec = app.do(t, http.MethodGet, "/orders/"+order.ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// 管理者側
	rec = app.do(t, http.MethodGet, "/admin/orders?status=Processing", app.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[usecase.AdminOrderListOutput](t, rec)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Sari", list.Items[0].CustomerName)

	rec = app.do(t, http.MethodGet, "/admin/orders?page=x", app.adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodGet, "/admin/orders/"+order.ID, app.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sari@example.com", decode[usecase.AdminOrderDetailOutput](t, rec).CustomerEmail)

	rec = app.do(t, http.MethodPut, "/admin/orders/"+order.ID+"/status", app.adminToken, map[string]string{"status": "Shipped"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = app.do(t, http.MethodPut, "/admin/orders/"+order.ID+"/status", app.adminToken, map[string]string{"status": "Completed"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodPut, "/admin/listings/"+cheap.ID+"/stock", app.adminToken, map[string]interface{}{"stock": 7, "reason": "restock"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = app.do(t, http.MethodPut, "/admin/listings/"+cheap.ID+"/stock", app.adminToken, map[string]interface{}{"reason": "restock"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodGet, "/admin/dashboard", app.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[usecase.DashboardStats](t, rec)
	assert.Equal(t, int64(1), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.TotalCustomers)
	assert.Equal(t, int64(0), stats.PendingOrders)
}

func TestAdminListingAndUsers(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/admin/listings", app.adminToken, map[string]interface{}{
		"game_name": "Valorant", "game_type": "VALO", "category": "VP", "amount": 125, "price": "15000", "stock": 10,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	l := decode[model.Listing](t, rec)

	rec = app.do(t, http.MethodPost, "/admin/listings", app.adminToken, map[string]interface{}{
		"game_name": "Valorant", "game_type": "VALO", "category": "VP", "price": "-1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPut, "/admin/listings/"+l.ID, app.adminToken, map[string]interface{}{
		"game_name": "Valorant", "game_type": "VALO", "category": "VP", "amount": 125, "price": "16000", "stock": 10,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "16000", decode[model.Listing](t, rec).Price.String())

	rec = app.do(t, http.MethodDelete, "/admin/listings/"+l.ID, app.adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = app.do(t, http.MethodDelete, "/admin/listings/"+l.ID, app.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"full_name": "Dewi", "email": "dewi@example.com", "password": "dewi-secret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	dewi := decode[model.User](t, rec)

	rec = app.do(t, http.MethodGet, "/admin/users", app.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.User](t, rec), 2)

	rec = app.do(t, http.MethodPost, "/admin/users/"+dewi.ID+"/toggle-role", app.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.RoleAdmin, decode[model.User](t, rec).Role)

	rec = app.do(t, http.MethodDelete, "/admin/users/"+dewi.ID, app.adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// ロール変更・削除の後は、発行済みトークンが通らない
func TestRevokedTokens(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"full_name": "Dewi", "email": "dewi@example.com", "password": "dewi-secret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	dewi := decode[model.User](t, rec)

	rec = app.do(t, http.MethodPost, "/admin/users/"+dewi.ID+"/toggle-role", app.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	adminToken := app.login(t, "dewi@example.com", "dewi-secret")
	rec = app.do(t, http.MethodGet, "/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Customer に戻す。古いトークンは Admin の role を持っているが通らない
	rec = app.do(t, http.MethodPost, "/admin/users/"+dewi.ID+"/toggle-role", app.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.RoleCustomer, decode[model.User](t, rec).Role)

	rec = app.do(t, http.MethodGet, "/admin/users", adminToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = app.do(t, http.MethodGet, "/cart", adminToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := app.login(t, "dewi@example.com", "dewi-secret")
	rec = app.do(t, http.MethodGet, "/admin/users", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = app.do(t, http.MethodGet, "/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodDelete, "/admin/users/"+dewi.ID, app.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodGet, "/cart", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = app.do(t, http.MethodPost, "/cart/items", token, map[string]interface{}{"listing_id": "x", "quantity": 1})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = app.do(t, http.MethodPost, "/orders", token, map[string]string{"game_account": "998877"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = app.do(t, http.MethodGet, "/orders", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminAuditLogs(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/admin/listings", app.adminToken, map[string]interface{}{
		"game_name": "Valorant", "game_type": "VALO", "category": "VP", "amount": 125, "price": "15000", "stock": 10,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	l := decode[model.Listing](t, rec)

	rec = app.do(t, http.MethodPut, "/admin/listings/"+l.ID+"/stock", app.adminToken, map[string]interface{}{"stock": 3, "reason": "opname"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/admin/audit-logs?resource_type=listing&resource_id="+l.ID, app.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[usecase.AuditLogListOutput](t, rec)
	assert.Equal(t, int64(1), out.Total)
	require.Len(t, out.Items, 1)
	assert.Equal(t, model.AuditActionUpdateStock, out.Items[0].Action)
	assert.Equal(t, `{"stock":3}`, out.Items[0].AfterJSON)

	rec = app.do(t, http.MethodGet, "/admin/audit-logs?resource_type=cart", app.adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = app.do(t, http.MethodGet, "/admin/audit-logs?limit=abc", app.adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid limit"}`, rec.Body.String())

	rec = app.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"full_name": "Sari", "email": "sari@example.com", "password": "sari-secret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	token := app.login(t, "sari@example.com", "sari-secret")
	rec = app.do(t, http.MethodGet, "/admin/audit-logs", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
