package handler

import (
	"net/http"
	"strconv"

	"topupstore/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AuditLogHandler struct {
	uc *usecase.AuditLogUsecase
}

func NewAuditLogHandler(uc *usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{uc: uc}
}

// GET /admin/audit-logs?resource_type=&resource_id=&action=&actor_user_id=&page=&limit=
func (h *AuditLogHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/audit-logs", h.list)
}

func (h *AuditLogHandler) list(c echo.Context) error {
	in := usecase.AuditLogListInput{
		ResourceType: c.QueryParam("resource_type"),
		ResourceID:   c.QueryParam("resource_id"),
		Action:       c.QueryParam("action"),
		ActorUserID:  c.QueryParam("actor_user_id"),
	}
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		in.Page = p
	}
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		in.Limit = l
	}

	out, err := h.uc.List(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
