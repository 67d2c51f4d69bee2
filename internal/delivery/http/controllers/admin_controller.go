package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"venuebooking/internal/delivery/http/helpers"
	"venuebooking/internal/domain"
)

// StatusRequest is the request body for PATCH /admin/events/{eventID}/status.
type StatusRequest struct {
	Status string `json:"status"`
}

// Validate implements Validator. Only Confirmed and Rejected are reachable by review.
func (s StatusRequest) Validate() []string {
	status, err := domain.ParseEventStatus(s.Status)
	if err != nil || status == domain.EventStatusPending {
		return []string{"status must be \"Confirmed\" or \"Rejected\""}
	}
	return nil
}

// AdminController serves the event review queue.
type AdminController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewAdminController(logger *slog.Logger, svc domain.EventService) *AdminController {
	return &AdminController{
		Logger:  logger,
		Service: svc,
	}
}

// ListPendingEvents godoc
// @Summary List events awaiting review
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /admin/events/pending [get]
func (c *AdminController) ListPendingEvents(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	params := helpers.ParsePagination(r)
	events, total, err := c.Service.ListPendingEvents(r.Context(), actor, params)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.NewPage(events, params, total))
}

// CheckAvailability godoc
// @Summary Check whether an event's slot is free
// @Description Lists the Confirmed events at the same venue whose time overlaps this event.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains available and conflicting"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/events/{eventID}/availability [get]
func (c *AdminController) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	availability, err := c.Service.CheckAvailability(r.Context(), actor, eventID)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, availability)
}

// SetEventStatus godoc
// @Summary Confirm or reject a pending event
// @Description Confirmation fails with slot_conflict when another Confirmed event overlaps.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body StatusRequest true "Target status"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: slot_conflict"
// @Router /admin/events/{eventID}/status [patch]
func (c *AdminController) SetEventStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req StatusRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	status, _ := domain.ParseEventStatus(strings.TrimSpace(req.Status))
	event, err := c.Service.ApproveOrReject(r.Context(), actor, eventID, status)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}
