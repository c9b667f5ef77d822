package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pv-site-manager/internal/model"
	"github.com/iliyamo/pv-site-manager/internal/service"
)

// MaterialHandler serves shipments and OCR intake of delivery notes.
type MaterialHandler struct {
	Materials *service.MaterialService
}

func NewMaterialHandler(s *service.MaterialService) *MaterialHandler {
	return &MaterialHandler{Materials: s}
}

type materialReq struct {
	DDTNumber     string  `json:"ddt_number"`
	PackingList   *string `json:"packing_list"`
	ContainerID   *string `json:"container_id"`
	BatchNumber   string  `json:"batch_number"`
	NonConformity bool    `json:"non_conformity"`
	Notes         *string `json:"notes"`
}

type materialUpdateReq struct {
	NonConformity nullable[bool]   `json:"non_conformity"`
	Notes         nullable[string] `json:"notes"`
}

// materialSummary is the list projection.
type materialSummary struct {
	ID            uint64 `json:"id"`
	DDTNumber     string `json:"ddt_number"`
	BatchNumber   string `json:"batch_number"`
	NonConformity bool   `json:"non_conformity"`
}

func (h *MaterialHandler) Create(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	var req materialReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	matID, err := h.Materials.Create(c.Request().Context(), id, service.MaterialInput{
		DDTNumber:     req.DDTNumber,
		PackingList:   req.PackingList,
		ContainerID:   req.ContainerID,
		BatchNumber:   req.BatchNumber,
		NonConformity: req.NonConformity,
		Notes:         req.Notes,
	})
	if err != nil {
		return err
	}
	return created(c, "Material created", matID)
}

// CreateFromOCR accepts a photographed delivery note as multipart "file".
func (h *MaterialHandler) CreateFromOCR(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	name, content, err := readUpload(c)
	if err != nil {
		return err
	}
	res, err := h.Materials.CreateFromOCR(c.Request().Context(), id, name, content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":      "Material created",
		"id":           res.ID,
		"ddt_number":   res.DDTNumber,
		"batch_number": res.BatchNumber,
	})
}

func (h *MaterialHandler) List(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	pg, err := pageFrom(c)
	if err != nil {
		return err
	}
	items, err := h.Materials.List(c.Request().Context(), id, pg)
	if err != nil {
		return err
	}
	out := make([]materialSummary, 0, len(items))
	for _, m := range items {
		out = append(out, summarize(m))
	}
	return c.JSON(http.StatusOK, out)
}

func summarize(m model.Material) materialSummary {
	return materialSummary{
		ID:            m.ID,
		DDTNumber:     m.DDTNumber,
		BatchNumber:   m.BatchNumber,
		NonConformity: m.NonConformity,
	}
}

func (h *MaterialHandler) Get(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	matID, err := idParam(c)
	if err != nil {
		return err
	}
	m, err := h.Materials.Get(c.Request().Context(), id, matID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *MaterialHandler) Update(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	matID, err := idParam(c)
	if err != nil {
		return err
	}
	var req materialUpdateReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	if req.NonConformity.Set && req.NonConformity.Value == nil {
		return badRequest("non_conformity must not be null")
	}
	if err := h.Materials.Update(c.Request().Context(), id, matID, service.MaterialUpdate{
		NonConformity: req.NonConformity.Value,
		Notes:         req.Notes.field(),
	}); err != nil {
		return err
	}
	return done(c, "Material updated", matID)
}
