package notifications

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/afyalink/afyalink/internal/platform/access"
	"github.com/afyalink/afyalink/internal/platform/apperr"
	"github.com/afyalink/afyalink/internal/platform/auth"
	"github.com/afyalink/afyalink/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/notifications", h.List)
	api.GET("/notifications/unread-count", h.UnreadCount)
	api.POST("/notifications/:id/read", h.MarkRead)
	api.POST("/notifications/read-all", h.MarkAllRead)
	api.DELETE("/notifications/:id", h.Delete)
	api.DELETE("/notifications", h.ClearAll)
}

func actorFrom(c echo.Context) access.Actor {
	ctx := c.Request().Context()
	return access.Actor{ID: auth.UserIDFromContext(ctx), Role: auth.RoleFromContext(ctx)}
}

func (h *Handler) List(c echo.Context) error {
	p := pagination.FromContext(c)
	notifs, total, err := h.svc.ListForUser(c.Request().Context(), actorFrom(c), p.Limit, p.Offset)
	if err != nil {
		return apperr.Echo(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(notifs, total, p.Limit, p.Offset))
}

func (h *Handler) UnreadCount(c echo.Context) error {
	count, err := h.svc.UnreadCount(c.Request().Context(), actorFrom(c))
	if err != nil {
		return apperr.Echo(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"unread_count": count})
}

func (h *Handler) MarkRead(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.MarkRead(c.Request().Context(), id, actorFrom(c)); err != nil {
		return apperr.Echo(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) MarkAllRead(c echo.Context) error {
	if err := h.svc.MarkAllRead(c.Request().Context(), actorFrom(c)); err != nil {
		return apperr.Echo(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id, actorFrom(c)); err != nil {
		return apperr.Echo(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ClearAll(c echo.Context) error {
	if err := h.svc.ClearAll(c.Request().Context(), actorFrom(c)); err != nil {
		return apperr.Echo(err)
	}
	return c.NoContent(http.StatusNoContent)
}
