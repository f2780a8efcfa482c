package identity

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/afyalink/afyalink/internal/platform/access"
	"github.com/afyalink/afyalink/internal/platform/apperr"
	"github.com/afyalink/afyalink/internal/platform/auth"
	"github.com/afyalink/afyalink/pkg/pagination"
)

type Handler struct {
	svc    *Service
	issuer *auth.Issuer
}

func NewHandler(svc *Service, issuer *auth.Issuer) *Handler {
	return &Handler{svc: svc, issuer: issuer}
}

// RegisterRoutes wires the public auth endpoints and the authenticated
// profile and doctor-directory endpoints.
func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	public.POST("/auth/register", h.Register)
	public.POST("/auth/login", h.Login)

	api.GET("/auth/profile", h.Profile)
	api.POST("/auth/password", h.ChangePassword)

	api.GET("/doctors", h.ListDoctors)
	api.GET("/doctors/county/:county", h.ListDoctorsByCounty)
	api.PUT("/doctors/availability", h.SetAvailability)
}

type authResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	u, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		return apperr.Echo(err)
	}

	token, err := h.issuer.Issue(u.ID, u.Role)
	if err != nil {
		return apperr.Echo(err)
	}
	return c.JSON(http.StatusCreated, authResponse{Token: token, User: u})
}

func (h *Handler) Login(c echo.Context) error {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	u, err := h.svc.VerifyCredentials(c.Request().Context(), in.Email, in.Password)
	if err != nil {
		return apperr.Echo(err)
	}

	token, err := h.issuer.Issue(u.ID, u.Role)
	if err != nil {
		return apperr.Echo(err)
	}
	return c.JSON(http.StatusOK, authResponse{Token: token, User: u})
}

func (h *Handler) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	u, err := h.svc.GetUser(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return apperr.Echo(err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) ChangePassword(c echo.Context) error {
	var in struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	if err := h.svc.ChangePassword(ctx, auth.UserIDFromContext(ctx), in.CurrentPassword, in.NewPassword); err != nil {
		return apperr.Echo(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "password updated"})
}

func (h *Handler) ListDoctors(c echo.Context) error {
	f := DoctorFilter{
		County:         c.QueryParam("county"),
		Specialization: c.QueryParam("specialization"),
	}
	return h.listDoctors(c, f)
}

func (h *Handler) ListDoctorsByCounty(c echo.Context) error {
	return h.listDoctors(c, DoctorFilter{County: c.Param("county")})
}

func (h *Handler) listDoctors(c echo.Context, f DoctorFilter) error {
	p := pagination.FromContext(c)
	doctors, total, err := h.svc.ListDoctors(c.Request().Context(), f, p.Limit, p.Offset)
	if err != nil {
		return apperr.Echo(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(doctors, total, p.Limit, p.Offset))
}

func (h *Handler) SetAvailability(c echo.Context) error {
	var in struct {
		Available bool `json:"available"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	actor := access.Actor{ID: auth.UserIDFromContext(ctx), Role: auth.RoleFromContext(ctx)}
	if err := h.svc.SetAvailability(ctx, actor, in.Available); err != nil {
		return apperr.Echo(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"available": in.Available})
}
