package handler

import (
	"net/http"

	"eventbot/internal/model"
	"eventbot/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler is the read-only reporting API over the event store.
type AdminHandler struct {
	service service.EventService
}

func NewAdminHandler(service service.EventService) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) RegisterRoutes(r gin.IRouter, middleware ...gin.HandlerFunc) {
	router := r.Group("/api/v1", middleware...)
	{
		router.GET("events", h.ListEvents)
		router.GET("events/:id", h.GetEvent)
		router.GET("events/:id/registrations", h.GetRegistrations)
		router.GET("events/:id/rsvp", h.GetRsvp)
	}
}

type listEventsQuery struct {
	Active bool `form:"active"`
}

type eventURI struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

type eventDetail struct {
	*model.Event
	Rsvp model.RsvpCounts `json:"rsvp"`
}

type rsvpReport struct {
	Counts    model.RsvpCounts      `json:"counts"`
	Responses []*model.RsvpResponse `json:"responses"`
}

func (h *AdminHandler) ListEvents(c *gin.Context) {
	var q listEventsQuery
	if err := BindQuery(c, &q); err != nil {
		return
	}
	events, err := h.service.ListEventsWithCounts(c.Request.Context(), q.Active)
	if err != nil {
		handleError(c, err, "ListEvents")
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *AdminHandler) GetEvent(c *gin.Context) {
	var uri eventURI
	if err := BindUri(c, &uri); err != nil {
		return
	}
	ctx := c.Request.Context()
	event, err := h.service.GetEvent(ctx, uri.ID)
	if err != nil {
		handleError(c, err, "GetEvent")
		return
	}
	counts, err := h.service.GetRsvpCounts(ctx, uri.ID)
	if err != nil {
		handleError(c, err, "GetEvent")
		return
	}
	c.JSON(http.StatusOK, eventDetail{Event: event, Rsvp: counts})
}

func (h *AdminHandler) GetRegistrations(c *gin.Context) {
	var uri eventURI
	if err := BindUri(c, &uri); err != nil {
		return
	}
	ctx := c.Request.Context()
	// distinguishes an unknown event from one nobody registered for
	if _, err := h.service.GetEvent(ctx, uri.ID); err != nil {
		handleError(c, err, "GetRegistrations")
		return
	}
	registrations, err := h.service.GetRegistrations(ctx, uri.ID)
	if err != nil {
		handleError(c, err, "GetRegistrations")
		return
	}
	c.JSON(http.StatusOK, registrations)
}

func (h *AdminHandler) GetRsvp(c *gin.Context) {
	var uri eventURI
	if err := BindUri(c, &uri); err != nil {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.service.GetEvent(ctx, uri.ID); err != nil {
		handleError(c, err, "GetRsvp")
		return
	}
	counts, err := h.service.GetRsvpCounts(ctx, uri.ID)
	if err != nil {
		handleError(c, err, "GetRsvp")
		return
	}
	responses, err := h.service.GetRsvpResponses(ctx, uri.ID)
	if err != nil {
		handleError(c, err, "GetRsvp")
		return
	}
	c.JSON(http.StatusOK, rsvpReport{Counts: counts, Responses: responses})
}
