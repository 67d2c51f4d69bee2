package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"venuebooking/internal/delivery/http/helpers"
	"venuebooking/internal/domain"
)

// VenueRequest is the request body for POST /venues and PUT /venues/{venueID}. Updates replace every field.
type VenueRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Capacity int    `json:"capacity"`
}

// Validate implements Validator.
func (v VenueRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(v.Name) == "" {
		errs = append(errs, "name is required")
	}
	if v.Capacity <= 0 {
		errs = append(errs, "capacity must be a positive integer")
	}
	return errs
}

func (v VenueRequest) fields() domain.VenueFields {
	return domain.VenueFields{Name: v.Name, Location: v.Location, Capacity: v.Capacity}
}

type VenueController struct {
	Logger  *slog.Logger
	Service domain.VenueService
}

func NewVenueController(logger *slog.Logger, svc domain.VenueService) *VenueController {
	return &VenueController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateVenue godoc
// @Summary Create a venue
// @Description Administrators only.
// @Tags venues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param venue body VenueRequest true "Venue data"
// @Success 201 {object} helpers.APIResponse "data contains the created venue"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /venues [post]
func (c *VenueController) CreateVenue(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req VenueRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	venue, err := c.Service.CreateVenue(r.Context(), actor, req.fields())
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, venue)
}

// ListVenues godoc
// @Summary List venues
// @Tags venues
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains the venues"
// @Router /venues [get]
func (c *VenueController) ListVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := c.Service.ListVenues(r.Context())
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, venues)
}

// GetVenue godoc
// @Summary Get a venue
// @Tags venues
// @Produce json
// @Param venueID path string true "Venue ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the venue"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /venues/{venueID} [get]
func (c *VenueController) GetVenue(w http.ResponseWriter, r *http.Request) {
	venueID, ok := pathUUID(w, r, "venueID")
	if !ok {
		return
	}
	venue, err := c.Service.GetVenue(r.Context(), venueID)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, venue)
}

// UpdateVenue godoc
// @Summary Replace a venue
// @Description Administrators only. Capacity cannot drop below the largest participant roster of an event at the venue.
// @Tags venues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param venueID path string true "Venue ID (UUID)"
// @Param venue body VenueRequest true "Venue data"
// @Success 200 {object} helpers.APIResponse "data contains the updated venue"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /venues/{venueID} [put]
func (c *VenueController) UpdateVenue(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	venueID, ok := pathUUID(w, r, "venueID")
	if !ok {
		return
	}
	var req VenueRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	venue, err := c.Service.UpdateVenue(r.Context(), actor, venueID, req.fields())
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, venue)
}

// DeleteVenue godoc
// @Summary Delete a venue
// @Description Administrators only. Events at the venue are deleted with it.
// @Tags venues
// @Security BearerAuth
// @Param venueID path string true "Venue ID (UUID)"
// @Success 204
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /venues/{venueID} [delete]
func (c *VenueController) DeleteVenue(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	venueID, ok := pathUUID(w, r, "venueID")
	if !ok {
		return
	}
	if err := c.Service.DeleteVenue(r.Context(), actor, venueID); err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
