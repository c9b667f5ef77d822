package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pv-site-manager/internal/middleware"
	"github.com/iliyamo/pv-site-manager/internal/model"
	"github.com/iliyamo/pv-site-manager/internal/service"
)

// maxUpload bounds the bytes read from one multipart file.
const maxUpload = 20 << 20

func badRequest(msg string) error {
	return &service.Error{Kind: service.KindValidation, Message: msg}
}

// caller returns the identity set by JWTAuth.
func caller(c echo.Context) (model.Identity, error) {
	id, ok := middleware.Identity(c)
	if !ok {
		return model.Identity{}, &service.Error{Kind: service.KindAuthentication, Message: "could not validate credentials"}
	}
	return id, nil
}

// pageFrom reads ?skip=&limit=. Absent values are zero and left to the
// service defaults.
func pageFrom(c echo.Context) (service.Page, error) {
	var pg service.Page
	for name, dst := range map[string]*int{"skip": &pg.Skip, "limit": &pg.Limit} {
		raw := strings.TrimSpace(c.QueryParam(name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return service.Page{}, badRequest(name + " must be an integer")
		}
		*dst = n
	}
	return pg, nil
}

func idParam(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest("invalid id")
	}
	return id, nil
}

func optionalID(raw, name string) (*uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, badRequest(name + " must be a positive integer")
	}
	return &id, nil
}

func optionalString(raw string) *string {
	if raw == "" {
		return nil
	}
	return &raw
}

func created(c echo.Context, msg string, id uint64) error {
	return c.JSON(http.StatusCreated, echo.Map{"message": msg, "id": id})
}

func done(c echo.Context, msg string, id uint64) error {
	return c.JSON(http.StatusOK, echo.Map{"message": msg, "id": id})
}

// dateTime accepts RFC 3339 timestamps as well as zone-less
// "2006-01-02T15:04:05" and plain dates, all read as UTC.
type dateTime struct{ time.Time }

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func (d *dateTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return badRequest("invalid date " + strconv.Quote(s))
}

func (d *dateTime) ptr() *time.Time {
	if d == nil || d.Time.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// nullable tells an absent JSON field (Set false) from an explicit null
// (Set true, Value nil).
type nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n nullable[T]) field() service.Field[T] {
	return service.Field[T]{Set: n.Set, Value: n.Value}
}

func dateField(n nullable[dateTime]) service.Field[time.Time] {
	if !n.Set {
		return service.Field[time.Time]{}
	}
	return service.Field[time.Time]{Set: true, Value: n.Value.ptr()}
}

// listOf keeps empty listings serialised as [] rather than null.
func listOf[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// readUpload returns the name and bytes of the multipart field "file".
func readUpload(c echo.Context) (string, []byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", nil, badRequest("multipart field \"file\" is required")
	}
	if fh.Size > maxUpload {
		return "", nil, badRequest("file too large")
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	content, err := io.ReadAll(io.LimitReader(f, maxUpload+1))
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	if len(content) > maxUpload {
		return "", nil, badRequest("file too large")
	}
	return fh.Filename, content, nil
}
