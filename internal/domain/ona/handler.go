package ona

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	forms Repository
}

func NewHandler(forms Repository) *Handler {
	return &Handler{forms: forms}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/forms", h.HandleList)
	g.PUT("/forms/:uuid/active", h.HandleSetActive)
}

// HandleList handles GET /forms.
func (h *Handler) HandleList(c echo.Context) error {
	forms, err := h.forms.ListForms(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"forms": forms})
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

// HandleSetActive handles PUT /forms/:uuid/active. Only active forms are
// polled for new cases.
func (h *Handler) HandleSetActive(c echo.Context) error {
	var req setActiveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.forms.SetActive(c.Request().Context(), c.Param("uuid"), req.Active); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]bool{"active": req.Active})
}
