package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pv-site-manager/internal/service"
)

// LogHandler serves daily logs. Each identity only sees its own.
type LogHandler struct {
	Logs *service.LogService
}

func NewLogHandler(s *service.LogService) *LogHandler { return &LogHandler{Logs: s} }

// Every field is required; pointers tell a missing field from a zero.
type logReq struct {
	WorkersCount  *int     `json:"workers_count"`
	Tasks         *string  `json:"tasks"`
	HoursWorked   *float64 `json:"hours_worked"`
	EquipmentUsed *string  `json:"equipment_used"`
	FuelConsumed  *float64 `json:"fuel_consumed"`
}

func (r logReq) missing() string {
	switch {
	case r.WorkersCount == nil:
		return "workers_count"
	case r.Tasks == nil:
		return "tasks"
	case r.HoursWorked == nil:
		return "hours_worked"
	case r.EquipmentUsed == nil:
		return "equipment_used"
	case r.FuelConsumed == nil:
		return "fuel_consumed"
	}
	return ""
}

func (h *LogHandler) Create(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	var req logReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	if field := req.missing(); field != "" {
		return badRequest(field + " is required")
	}
	logID, err := h.Logs.Create(c.Request().Context(), id, service.LogInput{
		WorkersCount:  *req.WorkersCount,
		Tasks:         *req.Tasks,
		HoursWorked:   *req.HoursWorked,
		EquipmentUsed: *req.EquipmentUsed,
		FuelConsumed:  *req.FuelConsumed,
	})
	if err != nil {
		return err
	}
	return created(c, "Log created", logID)
}

func (h *LogHandler) List(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	pg, err := pageFrom(c)
	if err != nil {
		return err
	}
	logs, err := h.Logs.List(c.Request().Context(), id, pg)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listOf(logs))
}

func (h *LogHandler) Get(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	logID, err := idParam(c)
	if err != nil {
		return err
	}
	l, err := h.Logs.Get(c.Request().Context(), id, logID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, l)
}
