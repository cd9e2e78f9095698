package facility

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/malariaconnect/api/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/facility/:code", h.HandleLookup)
	g.GET("/facilities", h.HandleList)
	g.POST("/facilities/import", h.HandleImport)
}

// HandleLookup handles GET /facility/:code.
func (h *Handler) HandleLookup(c echo.Context) error {
	code := c.Param("code")
	facilities, err := h.svc.Lookup(c.Request().Context(), code)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if len(facilities) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "facility not found")
	}
	return c.JSON(http.StatusOK, facilities[0])
}

// HandleList handles GET /facilities?limit=&offset=.
func (h *Handler) HandleList(c echo.Context) error {
	p := pagination.FromContext(c)
	facilities, total, err := h.svc.List(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(facilities, total, p.Limit, p.Offset))
}

// HandleImport handles POST /facilities/import. The body is either the
// register CSV or a JSON list of facility objects, per Content-Type.
func (h *Handler) HandleImport(c echo.Context) error {
	ctx := c.Request().Context()
	contentType := c.Request().Header.Get(echo.HeaderContentType)

	var created int
	var err error
	if strings.HasPrefix(contentType, echo.MIMEApplicationJSON) {
		created, err = h.svc.ImportJSON(ctx, c.Request().Body)
	} else {
		created, err = h.svc.ImportCSV(ctx, c.Request().Body)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"created": created})
}
