// Package repository implements MySQL persistence for bookings, users,
// contact messages and refresh tokens.  Sentinel errors defined here
// let handlers map failure scenarios onto HTTP responses without
// inspecting driver error strings themselves.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a lookup matches no row.  Handlers
// translate it into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an update cannot proceed because of
// conflicting state, such as assigning a technician who already holds
// a booking in the same slot.  Handlers translate it into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned when registration collides on the unique
// email index.
var ErrEmailExists = errors.New("email already exists")

// dupKeyName extracts the index name from a MySQL duplicate-entry
// error (code 1062).  The driver message ends with `for key
// 'table.index_name'`; an empty string means the error was not a
// duplicate-key violation.
func dupKeyName(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if !strings.Contains(msg, "1062") && !strings.Contains(msg, "Duplicate entry") {
		return ""
	}
	i := strings.LastIndex(msg, "for key '")
	if i < 0 {
		return "duplicate"
	}
	key := msg[i+len("for key '"):]
	key = strings.TrimSuffix(strings.TrimSpace(key), "'")
	if j := strings.LastIndex(key, "."); j >= 0 {
		key = key[j+1:]
	}
	return key
}
