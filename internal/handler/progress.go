package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pv-site-manager/internal/model"
	"github.com/iliyamo/pv-site-manager/internal/service"
)

// ProgressHandler serves milestone KPIs and the project dashboard.
type ProgressHandler struct {
	Progress *service.ProgressService
}

func NewProgressHandler(s *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{Progress: s}
}

type kpiReq struct {
	KPIName         string    `json:"kpi_name"`
	ProgressPercent *float64  `json:"progress_percent"`
	TargetDate      *dateTime `json:"target_date"`
	ActualDate      *dateTime `json:"actual_date"`
	Notes           *string   `json:"notes"`
}

type kpiUpdateReq struct {
	ProgressPercent nullable[float64]  `json:"progress_percent"`
	TargetDate      nullable[dateTime] `json:"target_date"`
	ActualDate      nullable[dateTime] `json:"actual_date"`
	Notes           nullable[string]   `json:"notes"`
}

type progressResp struct {
	KPIs             []model.ProgressKPI `json:"kpis"`
	DashboardSummary service.Summary     `json:"dashboard_summary"`
}

func (h *ProgressHandler) Create(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	var req kpiReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	if req.ProgressPercent == nil {
		return badRequest("progress_percent is required")
	}
	kpiID, err := h.Progress.Create(c.Request().Context(), id, service.KPIInput{
		KPIName:         req.KPIName,
		ProgressPercent: *req.ProgressPercent,
		TargetDate:      req.TargetDate.ptr(),
		ActualDate:      req.ActualDate.ptr(),
		Notes:           req.Notes,
	})
	if err != nil {
		return err
	}
	return created(c, "KPI created", kpiID)
}

// List returns a page of KPIs with the dashboard over every KPI.
func (h *ProgressHandler) List(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	pg, err := pageFrom(c)
	if err != nil {
		return err
	}
	view, err := h.Progress.List(c.Request().Context(), id, pg)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, progressResp{
		KPIs:             listOf(view.KPIs),
		DashboardSummary: view.Dashboard,
	})
}

func (h *ProgressHandler) Update(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	kpiID, err := idParam(c)
	if err != nil {
		return err
	}
	var req kpiUpdateReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	if req.ProgressPercent.Set && req.ProgressPercent.Value == nil {
		return badRequest("progress_percent must not be null")
	}
	if err := h.Progress.Update(c.Request().Context(), id, kpiID, service.KPIUpdate{
		ProgressPercent: req.ProgressPercent.Value,
		TargetDate:      dateField(req.TargetDate),
		ActualDate:      dateField(req.ActualDate),
		Notes:           req.Notes.field(),
	}); err != nil {
		return err
	}
	return done(c, "KPI updated", kpiID)
}
