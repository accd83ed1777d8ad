package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"medtransport/internal/common/apperr"
	"medtransport/internal/common/auth"
	"medtransport/internal/common/httpx"
	"medtransport/internal/common/pagination"
	"medtransport/internal/location/service"
)

type LocationHandler struct {
	svc *service.LocationService
}

func NewLocationHandler(svc *service.LocationService) *LocationHandler {
	return &LocationHandler{svc: svc}
}

func (h *LocationHandler) Routes(r chi.Router) {
	r.Post("/locations", h.Record)
	r.Get("/locations/drivers", h.Snapshot)
	r.Get("/locations/{driverID}/latest", h.Latest)
	r.Get("/locations/{driverID}/history", h.History)
}

func (h *LocationHandler) Record(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromRequest(r)
	if !ok {
		httpx.Error(w, apperr.Forbidden("authentication required"))
		return
	}

	var req struct {
		DriverID     string  `json:"driver_id"`
		Latitude     float64 `json:"latitude"`
		Longitude    float64 `json:"longitude"`
		AssignmentID *string `json:"assignment_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, apperr.InvalidInput("invalid JSON body"))
		return
	}
	if req.DriverID == "" && actor.IsDriver() {
		req.DriverID = actor.ID
	}

	loc, err := h.svc.Record(r.Context(), actor, req.DriverID, req.Latitude, req.Longitude, req.AssignmentID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, loc)
}

func (h *LocationHandler) Latest(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromRequest(r)
	if !ok {
		httpx.Error(w, apperr.Forbidden("authentication required"))
		return
	}

	view, err := h.svc.Latest(r.Context(), actor, chi.URLParam(r, "driverID"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *LocationHandler) History(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromRequest(r)
	if !ok {
		httpx.Error(w, apperr.Forbidden("authentication required"))
		return
	}

	page, size := pagination.Normalize(httpx.QueryInt(r, "page", 1), httpx.QueryInt(r, "size", pagination.DefaultSize))
	locs, total, err := h.svc.History(r.Context(), actor, chi.URLParam(r, "driverID"), page, size)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pagination.New(locs, total, page, size))
}

func (h *LocationHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromRequest(r)
	if !ok {
		httpx.Error(w, apperr.Forbidden("authentication required"))
		return
	}

	records, err := h.svc.Snapshot(r.Context(), actor)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, records)
}
