package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"medtransport/internal/common/apperr"
	"medtransport/internal/common/auth"
	"medtransport/internal/common/httpx"
	"medtransport/internal/common/pagination"
	"medtransport/internal/report/model"
	"medtransport/internal/report/service"
)

type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

func (h *ReportHandler) Routes(r chi.Router) {
	r.Post("/reports", h.Create)
	r.Get("/reports", h.List)
	r.Get("/reports/{reportID}", h.Get)
	r.Patch("/reports/{reportID}/status", h.SetStatus)
}

func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromRequest(r)
	if !ok {
		httpx.Error(w, apperr.Forbidden("authentication required"))
		return
	}

	var req model.Report
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, apperr.InvalidInput("invalid JSON body"))
		return
	}

	rep, err := h.svc.Create(r.Context(), actor, &req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rep)
}

func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromRequest(r)
	if !ok {
		httpx.Error(w, apperr.Forbidden("authentication required"))
		return
	}

	rep, err := h.svc.Get(r.Context(), actor, chi.URLParam(r, "reportID"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rep)
}

func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromRequest(r)
	if !ok {
		httpx.Error(w, apperr.Forbidden("authentication required"))
		return
	}

	page, size := pagination.Normalize(httpx.QueryInt(r, "page", 1), httpx.QueryInt(r, "size", pagination.DefaultSize))
	reports, total, err := h.svc.List(r.Context(), actor, page, size)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pagination.New(reports, total, page, size))
}

func (h *ReportHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromRequest(r)
	if !ok {
		httpx.Error(w, apperr.Forbidden("authentication required"))
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, apperr.InvalidInput("invalid JSON body"))
		return
	}

	rep, err := h.svc.SetStatus(r.Context(), actor, chi.URLParam(r, "reportID"), req.Status)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rep)
}
