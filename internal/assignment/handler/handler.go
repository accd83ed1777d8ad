package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"medtransport/internal/assignment/service"
	"medtransport/internal/common/apperr"
	"medtransport/internal/common/auth"
	"medtransport/internal/common/httpx"
	"medtransport/internal/common/pagination"
)

type AssignmentHandler struct {
	svc *service.AssignmentService
}

func NewAssignmentHandler(svc *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{svc: svc}
}

func (h *AssignmentHandler) Routes(r chi.Router) {
	r.Post("/assignments", h.Create)
	r.Get("/assignments", h.List)
	r.Get("/assignments/{assignmentID}", h.Get)
	r.Get("/assignments/driver/{driverID}", h.ListByDriver)
	r.Patch("/assignments/{assignmentID}", h.Update)
	r.Delete("/assignments/{assignmentID}", h.Delete)
}

func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromRequest(r)
	if !ok {
		httpx.Error(w, apperr.Forbidden("authentication required"))
		return
	}

	var req struct {
		ReportID string `json:"report_id"`
		DriverID string `json:"driver_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, apperr.InvalidInput("invalid JSON body"))
		return
	}

	view, err := h.svc.Create(r.Context(), actor, req.ReportID, req.DriverID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, view)
}

func (h *AssignmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromRequest(r)
	if !ok {
		httpx.Error(w, apperr.Forbidden("authentication required"))
		return
	}

	view, err := h.svc.Get(r.Context(), actor, chi.URLParam(r, "assignmentID"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromRequest(r)
	if !ok {
		httpx.Error(w, apperr.Forbidden("authentication required"))
		return
	}

	page, size := pagination.Normalize(httpx.QueryInt(r, "page", 1), httpx.QueryInt(r, "size", pagination.DefaultSize))
	views, total, err := h.svc.List(r.Context(), actor, page, size)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pagination.New(views, total, page, size))
}

func (h *AssignmentHandler) ListByDriver(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromRequest(r)
	if !ok {
		httpx.Error(w, apperr.Forbidden("authentication required"))
		return
	}

	page, size := pagination.Normalize(httpx.QueryInt(r, "page", 1), httpx.QueryInt(r, "size", pagination.DefaultSize))
	views, total, err := h.svc.ListByDriver(r.Context(), actor, chi.URLParam(r, "driverID"), page, size)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pagination.New(views, total, page, size))
}

func (h *AssignmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromRequest(r)
	if !ok {
		httpx.Error(w, apperr.Forbidden("authentication required"))
		return
	}

	var req service.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, apperr.InvalidInput("invalid JSON body"))
		return
	}

	view, err := h.svc.Update(r.Context(), actor, chi.URLParam(r, "assignmentID"), req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *AssignmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromRequest(r)
	if !ok {
		httpx.Error(w, apperr.Forbidden("authentication required"))
		return
	}

	id := chi.URLParam(r, "assignmentID")
	if err := h.svc.Delete(r.Context(), actor, id); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"id": id})
}
