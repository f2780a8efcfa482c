package scheduling

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
	api.POST("/appointments", h.Create)
	api.GET("/appointments", h.List)
	api.GET("/appointments/:id", h.Get)
	api.PATCH("/appointments/:id/status", h.TransitionStatus)
	api.POST("/appointments/:id/payment", h.RecordPayment)
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

	a, err := h.svc.Create(c.Request().Context(), actorFrom(c), in)
	if err != nil {
		return apperr.Echo(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	a, err := h.svc.Get(c.Request().Context(), id, actorFrom(c))
	if err != nil {
		return apperr.Echo(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) List(c echo.Context) error {
	p := pagination.FromContext(c)
	appts, total, err := h.svc.ListForUser(c.Request().Context(), actorFrom(c), p.Limit, p.Offset)
	if err != nil {
		return apperr.Echo(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appts, total, p.Limit, p.Offset))
}

func (h *Handler) TransitionStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	a, err := h.svc.TransitionStatus(c.Request().Context(), id, actorFrom(c), in.Status)
	if err != nil {
		return apperr.Echo(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) RecordPayment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in struct {
		Amount        int64  `json:"amount"`
		PaymentStatus string `json:"payment_status"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	a, err := h.svc.RecordPayment(c.Request().Context(), id, actorFrom(c), in.Amount, in.PaymentStatus)
	if err != nil {
		return apperr.Echo(err)
	}
	return c.JSON(http.StatusOK, a)
}
