package repository

import "errors"

// ErrNotFound is returned when a requested record is not found in the repository.
// This abstracts away the underlying storage implementation (SQL, NoSQL, etc.)
// from the service layer.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert collides with a unique key,
// such as a second vote from the same voter or a taken username.
var ErrDuplicate = errors.New("duplicate record")
