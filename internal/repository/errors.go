// Package repository implements the MySQL persistence layer. Each
// aggregate gets one repository sharing a *sql.DB; reservation
// mutations additionally run through a transactional unit so the
// booking engine can compose conflict checks and writes
// atomically. Sentinel errors defined here let handlers
// distinguish failure scenarios without string matching.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a requested row does not exist or
// is filtered out by its active flag. Handlers translate this into
// an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as deleting a venue
// that still has active reservations. Handlers should translate
// this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// duplicateKeyErrNumber is the MySQL error code for a unique
// constraint violation.
const duplicateKeyErrNumber = 1062

// rowReferencedErrNumber is the MySQL error code for deleting a
// row that other rows still reference through a foreign key.
const rowReferencedErrNumber = 1451

// isDuplicateKey reports whether err is a MySQL duplicate-key
// error. Used to turn constraint violations into typed errors
// instead of opaque 500s.
func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == duplicateKeyErrNumber
}

// isRowReferenced reports whether err is a MySQL foreign-key
// restriction on delete.
func isRowReferenced(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == rowReferencedErrNumber
}
