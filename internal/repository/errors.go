// Package repository holds the raw-SQL data access layer. Queries use '?'
// placeholders and epoch-millisecond timestamps so the same statements run
// on both MySQL and SQLite.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/iliyamo/pv-site-manager/internal/model"
)

var (
	// ErrUserNotFound aliases the model sentinel so token verification can
	// recognise it without importing this package.
	ErrUserNotFound     = model.ErrIdentityNotFound
	ErrUsernameExists   = errors.New("username already exists")
	ErrLogNotFound      = errors.New("daily log not found")
	ErrMaterialNotFound = errors.New("material not found")
	ErrDuplicateDDT     = errors.New("DDT number already exists")
	ErrProgressNotFound = errors.New("progress KPI not found")
	ErrDocumentNotFound = errors.New("document not found")
)

const mysqlDuplicateEntry = 1062

// isDuplicateKey reports whether err is a unique or primary key violation
// from either supported driver.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var liteErr *msqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return false
}
