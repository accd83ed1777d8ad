package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"medtransport/internal/common/apperr"
	"medtransport/internal/common/auth"
	"medtransport/internal/common/httpx"
	"medtransport/internal/common/pagination"
	"medtransport/internal/vehicle/service"
)

type VehicleHandler struct {
	svc *service.VehicleService
}

func NewVehicleHandler(svc *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{svc: svc}
}

func (h *VehicleHandler) Routes(r chi.Router) {
	r.Get("/vehicles", h.List)
	r.Get("/vehicles/{vehicleID}", h.Get)
}

func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromRequest(r)
	if !ok {
		httpx.Error(w, apperr.Forbidden("authentication required"))
		return
	}

	page, size := pagination.Normalize(httpx.QueryInt(r, "page", 1), httpx.QueryInt(r, "size", pagination.DefaultSize))
	vehicles, total, err := h.svc.List(r.Context(), actor, page, size)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pagination.New(vehicles, total, page, size))
}

func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromRequest(r)
	if !ok {
		httpx.Error(w, apperr.Forbidden("authentication required"))
		return
	}

	v, err := h.svc.Get(r.Context(), actor, chi.URLParam(r, "vehicleID"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}
