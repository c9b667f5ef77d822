package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pv-site-manager/internal/service"
)

// DocumentHandler serves uploaded photos and PDFs.
type DocumentHandler struct {
	Documents *service.DocumentService
}

func NewDocumentHandler(s *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{Documents: s}
}

// Upload takes multipart "file" plus optional log_id, material_id and
// notes form fields.
func (h *DocumentHandler) Upload(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	logID, err := optionalID(c.FormValue("log_id"), "log_id")
	if err != nil {
		return err
	}
	materialID, err := optionalID(c.FormValue("material_id"), "material_id")
	if err != nil {
		return err
	}
	name, content, err := readUpload(c)
	if err != nil {
		return err
	}
	doc, err := h.Documents.Upload(c.Request().Context(), id, service.UploadInput{
		Filename:   name,
		Content:    content,
		LogID:      logID,
		MaterialID: materialID,
		Notes:      optionalString(c.FormValue("notes")),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":   "Document uploaded",
		"id":        doc.ID,
		"file_path": doc.FilePath,
	})
}

func (h *DocumentHandler) List(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	pg, err := pageFrom(c)
	if err != nil {
		return err
	}
	docs, err := h.Documents.List(c.Request().Context(), id, pg)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listOf(docs))
}

func (h *DocumentHandler) Get(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	docID, err := idParam(c)
	if err != nil {
		return err
	}
	d, err := h.Documents.Get(c.Request().Context(), id, docID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// Delete removes the document record; the stored file is kept.
func (h *DocumentHandler) Delete(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	docID, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.Documents.Delete(c.Request().Context(), id, docID); err != nil {
		return err
	}
	return done(c, "Document deleted", docID)
}
