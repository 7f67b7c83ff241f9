package handler

import (
	"net/http"

	"topupstore/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /listings の公開API
type ListingHandler struct {
	uc *usecase.CatalogUsecase
}

// DI
func NewListingHandler(uc *usecase.CatalogUsecase) *ListingHandler {
	return &ListingHandler{uc: uc}
}

// 公開カタログのルートを登録
func (h *ListingHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/listings", h.list)
	e.GET("/listings/facets", h.facets)
	e.GET("/listings/:id", h.detail)
}

func (h *ListingHandler) list(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context(), usecase.ListListingsInput{
		Category: c.QueryParam("category"),
		GameType: c.QueryParam("game_type"),
		Search:   c.QueryParam("search"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ListingHandler) facets(c echo.Context) error {
	out, err := h.uc.Facets(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ListingHandler) detail(c echo.Context) error {
	l, err := h.uc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, l)
}
