package controllers

import (
	"context"
	"log/slog"
	"net/http"

	"venuebooking/internal/delivery/http/helpers"
	"venuebooking/internal/domain"
)

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

// RegisterParticipant godoc
// @Summary Register the caller as a participant
// @Description Only Confirmed events accept registrations. Fails when the venue is full.
// @Tags registration
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the event with its updated participants_no"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/participants [post]
func (c *RegistrationController) RegisterParticipant(w http.ResponseWriter, r *http.Request) {
	c.register(w, r, c.Service.RegisterParticipant)
}

// RegisterVolunteer godoc
// @Summary Register the caller as a volunteer
// @Description Volunteers do not count against venue capacity.
// @Tags registration
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/volunteers [post]
func (c *RegistrationController) RegisterVolunteer(w http.ResponseWriter, r *http.Request) {
	c.register(w, r, c.Service.RegisterVolunteer)
}

func (c *RegistrationController) register(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, actor domain.Principal, eventID string) (*domain.Event, error)) {
	actor, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	event, err := fn(r.Context(), actor, eventID)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListParticipants godoc
// @Summary List an event's participants
// @Description Host or volunteers of the event only.
// @Tags registration
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the users"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/participants [get]
func (c *RegistrationController) ListParticipants(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	users, err := c.Service.ListParticipants(r.Context(), actor, eventID)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, users)
}

// MarkAttendance godoc
// @Summary Mark a participant as attended
// @Description Host or volunteers only. Marking twice reports already_marked instead of failing.
// @Tags registration
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param userID path string true "User ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the attendance result"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/attendance/{userID} [post]
func (c *RegistrationController) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}
	result, err := c.Service.MarkAttendance(r.Context(), actor, eventID, userID)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// ListParticipatingEvents godoc
// @Summary List events the caller is registered for
// @Tags registration
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the events"
// @Router /users/me/events/participating [get]
func (c *RegistrationController) ListParticipatingEvents(w http.ResponseWriter, r *http.Request) {
	c.listMine(w, r, c.Service.ListParticipatingEvents)
}

// ListVolunteeringEvents godoc
// @Summary List events the caller volunteers at
// @Tags registration
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the events"
// @Router /users/me/events/volunteering [get]
func (c *RegistrationController) ListVolunteeringEvents(w http.ResponseWriter, r *http.Request) {
	c.listMine(w, r, c.Service.ListVolunteeringEvents)
}

// ListAttendedEvents godoc
// @Summary List events the caller attended
// @Tags registration
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the events"
// @Router /users/me/events/attended [get]
func (c *RegistrationController) ListAttendedEvents(w http.ResponseWriter, r *http.Request) {
	c.listMine(w, r, c.Service.ListAttendedEvents)
}

func (c *RegistrationController) listMine(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, actor domain.Principal) ([]*domain.Event, error)) {
	actor, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	events, err := fn(r.Context(), actor)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}
