package service

import (
	"time"

	"github.com/iliyamo/pv-site-manager/internal/model"
)

// Minimum role per operation.
const (
	roleRead           = model.RoleOperator
	roleLogCreate      = model.RoleOperator
	roleMaterialCreate = model.RoleOperator
	roleMaterialUpdate = model.RoleSiteManager
	roleProgressCreate = model.RolePM
	roleProgressUpdate = model.RoleSiteManager
	roleDocumentUpload = model.RoleOperator
	roleDocumentDelete = model.RolePM
)

func authorize(caller model.Identity, min model.Role) error {
	if !caller.Role.Satisfies(min) {
		return errInsufficientRole
	}
	return nil
}

// Page selects a window of a listing. Limit 0 means the configured default.
type Page struct {
	Skip  int
	Limit int
}

// Paging holds listing bounds shared by all managers.
type Paging struct {
	Default int
	Max     int
}

// DefaultPaging matches the out-of-the-box configuration.
var DefaultPaging = Paging{Default: 100, Max: 500}

func (p Paging) normalize(pg Page) (Page, error) {
	if pg.Skip < 0 {
		return Page{}, validationf("skip must not be negative")
	}
	if pg.Limit < 0 {
		return Page{}, validationf("limit must not be negative")
	}
	if pg.Limit == 0 {
		pg.Limit = p.Default
	}
	if p.Max > 0 && pg.Limit > p.Max {
		pg.Limit = p.Max
	}
	return pg, nil
}

type clock func() time.Time

func (c clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}
