package cases

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/malariaconnect/api/pkg/pagination"
)

type Handler struct {
	svc   *Service
	audit AuditRepository
	log   zerolog.Logger
}

func NewHandler(svc *Service, audit AuditRepository, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, audit: audit, log: log.With().Str("component", "cases").Logger()}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/cases", h.HandleList)
	g.GET("/cases/:id", h.HandleGet)
	g.POST("/sms/inbound", h.HandleInboundSMS)
	g.POST("/sms/event", h.HandleSMSEvent)
}

// HandleList handles GET /cases?limit=&offset=.
func (h *Handler) HandleList(c echo.Context) error {
	p := pagination.FromContext(c)
	list, total, err := h.svc.List(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(list, total, p.Limit, p.Offset))
}

// HandleGet handles GET /cases/:id.
func (h *Handler) HandleGet(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid case id")
	}
	rc, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return echo.NewHTTPError(http.StatusNotFound, "case not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rc)
}

type inboundSMSRequest struct {
	From    string `json:"from"`
	Content string `json:"content"`
	ReplyTo string `json:"reply_to"`
}

// HandleInboundSMS handles the gateway's inbound message webhook.
func (h *Handler) HandleInboundSMS(c echo.Context) error {
	var req inboundSMSRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	msg := &InboundSMS{From: req.From, Content: req.Content, ReplyToMessageID: req.ReplyTo}
	if err := h.audit.CreateInboundSMS(c.Request().Context(), msg); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.log.Info().Str("from", req.From).Msg("inbound sms received")
	return c.JSON(http.StatusCreated, msg)
}

type smsEventRequest struct {
	MessageID string `json:"message_id"`
	EventType string `json:"event_type"`
	Timestamp string `json:"timestamp"`
}

// HandleSMSEvent handles the gateway's delivery event webhook.
func (h *Handler) HandleSMSEvent(c echo.Context) error {
	var req smsEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ts, err := time.Parse(time.RFC3339, req.Timestamp)
	if err != nil {
		ts = time.Now()
	}
	ev := &SMSEvent{MessageID: req.MessageID, EventType: req.EventType, Timestamp: ts}
	if err := h.audit.CreateSMSEvent(c.Request().Context(), ev); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, ev)
}
