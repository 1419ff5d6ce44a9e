// Package repository contains data access logic separated from HTTP
// handlers. Each repository wraps a *sql.DB and issues hand-written SQL.
//
// The sentinel errors below let higher layers tell failure scenarios apart
// without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when a lookup, update or delete matches no row.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert or update violates the unique
// index on users.email.
var ErrEmailExists = errors.New("email already exists")

// ErrInvalidReference is returned when a foreign key points at a row that
// does not exist.
var ErrInvalidReference = errors.New("invalid reference")

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
