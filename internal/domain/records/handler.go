package records

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
	api.POST("/medical-records", h.Create)
	api.GET("/medical-records", h.List)
	api.GET("/medical-records/:id", h.Get)
	api.PATCH("/medical-records/:id", h.Update)
}

func actorFrom(c echo.Context) access.Actor {
	ctx := c.Request().Context()
	return access.Actor{ID: auth.UserIDFromContext(ctx), Role: auth.RoleFromContext(ctx)}
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	rec, err := h.svc.Create(c.Request().Context(), actorFrom(c), in)
	if err != nil {
		return apperr.Echo(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	rec, err := h.svc.Get(c.Request().Context(), id, actorFrom(c))
	if err != nil {
		return apperr.Echo(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	rec, err := h.svc.Update(c.Request().Context(), id, actorFrom(c), in)
	if err != nil {
		return apperr.Echo(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) List(c echo.Context) error {
	p := pagination.FromContext(c)
	recs, total, err := h.svc.ListForUser(c.Request().Context(), actorFrom(c), p.Limit, p.Offset)
	if err != nil {
		return apperr.Echo(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(recs, total, p.Limit, p.Offset))
}
