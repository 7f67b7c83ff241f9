package handler

import (
	"net/http"

	"topupstore/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartRequest struct {
	ListingID string `json:"listing_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"gte=1"`
}

// 0 以下は削除として扱う
type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

// /cart, /cart/items/:listing_id を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, authMWs ...echo.MiddlewareFunc) {
	g := e.Group("/cart", authMWs...)

	g.GET("", h.getCart)
	g.POST("/items", h.addItem)
	g.PATCH("/items/:listing_id", h.updateItem)
	g.DELETE("/items/:listing_id", h.removeItem)
}

func (h *CartHandler) getCart(c echo.Context) error {
	customerID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.GetCart(c.Request().Context(), customerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addItem(c echo.Context) error {
	customerID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req AddCartRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	out, err := h.uc.AddItem(c.Request().Context(), customerID, usecase.AddCartItemInput{
		ListingID: req.ListingID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) updateItem(c echo.Context) error {
	customerID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req UpdateCartItemRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	out, err := h.uc.UpdateItemQuantity(c.Request().Context(), customerID, c.Param("listing_id"), req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) removeItem(c echo.Context) error {
	customerID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.RemoveItem(c.Request().Context(), customerID, c.Param("listing_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
