// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

package auth

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// DuplicateField identifies which unique column a duplicate insert violated.
type DuplicateField string

// Unique user columns.
const (
	DuplicateUsername DuplicateField = "username"
	DuplicateEmail    DuplicateField = "email"
)

// DuplicateError is returned by UserRepository.Create when a unique
// constraint is violated. The storage-layer constraint is the source of
// truth for uniqueness; the service's pre-insert lookups only exist to
// produce a friendlier message.
type DuplicateError struct {
	Field DuplicateField
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s", e.Field)
}

// AsDuplicate returns the DuplicateError in err's chain, if any.
func AsDuplicate(err error) (*DuplicateError, bool) {
	var dup *DuplicateError
	if errors.As(err, &dup) {
		return dup, true
	}
	return nil, false
}
