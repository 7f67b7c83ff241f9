package handler

import (
	"net/http"
	"strconv"

	"topupstore/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type AdminListingHandler struct {
	uc *usecase.CatalogUsecase
}

func NewAdminListingHandler(uc *usecase.CatalogUsecase) *AdminListingHandler {
	return &AdminListingHandler{uc: uc}
}

type ListingRequest struct {
	GameName    string          `json:"game_name" validate:"required,max=255"`
	GameType    string          `json:"game_type" validate:"required,max=100"`
	Server      string          `json:"server" validate:"max=100"`
	Category    string          `json:"category" validate:"required,max=100"`
	Amount      int64           `json:"amount" validate:"gte=0"`
	Price       decimal.Decimal `json:"price"`
	Stock       int64           `json:"stock" validate:"gte=0"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url"`
}

func (r ListingRequest) toInput() usecase.ListingInput {
	return usecase.ListingInput{
		GameName:    r.GameName,
		GameType:    r.GameType,
		Server:      r.Server,
		Category:    r.Category,
		Amount:      r.Amount,
		Price:       r.Price,
		Stock:       r.Stock,
		Description: r.Description,
		ImageURL:    r.ImageURL,
	}
}

type SetStockRequest struct {
	Stock  *int64 `json:"stock" validate:"required,gte=0"`
	Reason string `json:"reason" validate:"required,max=255"`
}

type SeedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// g は /admin（認証＋Admin限定）
func (h *AdminListingHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/listings", h.create)
	g.POST("/listings/seed", h.seed)
	g.PUT("/listings/:id", h.update)
	g.DELETE("/listings/:id", h.delete)
	g.PUT("/listings/:id/stock", h.setStock)
}

func (h *AdminListingHandler) create(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req ListingRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	l, err := h.uc.AdminCreate(c.Request().Context(), adminID, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *AdminListingHandler) update(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req ListingRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	l, err := h.uc.AdminUpdate(c.Request().Context(), adminID, c.Param("id"), req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, l)
}

func (h *AdminListingHandler) delete(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.uc.AdminDelete(c.Request().Context(), adminID, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *AdminListingHandler) setStock(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req SetStockRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	if err := h.uc.AdminSetStock(c.Request().Context(), adminID, c.Param("id"), *req.Stock, req.Reason); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "stock updated"})
}

func (h *AdminListingHandler) seed(c echo.Context) error {
	force := false
	if v := c.QueryParam("force"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid force"})
		}
		force = b
	}

	n, err := h.uc.Seed(c.Request().Context(), force)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SeedResponse{Message: "seeded", Count: n})
}
