package handler

import (
	"net/http"

	"topupstore/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type CheckoutRequest struct {
	GameAccount string `json:"game_account" validate:"required,max=255"`
	Server      string `json:"server" validate:"max=100"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, authMWs ...echo.MiddlewareFunc) {
	g := e.Group("/orders", authMWs...)

	g.POST("", h.checkout)
	g.GET("", h.listMine)
	g.GET("/:id", h.detail)
	g.POST("/:id/confirm-payment", h.confirmPayment)
}

func (h *OrderHandler) checkout(c echo.Context) error {
	customerID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req CheckoutRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	out, err := h.uc.Checkout(c.Request().Context(), customerID, usecase.CheckoutInput{
		GameAccount: req.GameAccount,
		Server:      req.Server,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) listMine(c echo.Context) error {
	customerID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	outs, err := h.uc.ListMyOrders(c.Request().Context(), customerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, outs)
}

func (h *OrderHandler) detail(c echo.Context) error {
	customerID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.GetMyOrderDetail(c.Request().Context(), customerID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) confirmPayment(c echo.Context) error {
	customerID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.ConfirmPayment(c.Request().Context(), customerID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
