package server

import (
	"topupstore/internal/handler"
	"topupstore/internal/middleware"
	"topupstore/internal/repository"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Listing      *handler.ListingHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	AdminListing *handler.AdminListingHandler
	AdminOrder   *handler.AdminOrderHandler
	AdminUser    *handler.AdminUserHandler
	Dashboard    *handler.DashboardHandler
	AuditLog     *handler.AuditLogHandler
}

// users はトークンの失効確認（削除・ロール変更）に使う
func RegisterRoutes(e *echo.Echo, jwtSecret string, users repository.UserRepository, h Handlers) {
	authMW := middleware.AuthJWT(jwtSecret)
	tvGuard := middleware.TokenVersionGuard(users)

	h.Auth.RegisterRoutes(e)
	h.Listing.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, authMW, tvGuard)
	h.Order.RegisterRoutes(e, authMW, tvGuard)

	//管理者のみ
	admin := e.Group("/admin", authMW, tvGuard, middleware.AdminRoleGuard())
	h.Dashboard.RegisterRoutes(admin)
	h.AdminListing.RegisterRoutes(admin)
	h.AdminOrder.RegisterRoutes(admin)
	h.AdminUser.RegisterRoutes(admin)
	h.AuditLog.RegisterRoutes(admin)
}
