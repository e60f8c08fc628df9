package store

import "errors"

// ErrNotFound is returned by any Get method when no row matches the given
// id. Callers check for this sentinel with errors.Is to distinguish "not
// found" (404 at the HTTP surface) from a genuine database error.
var ErrNotFound = errors.New("record not found")
