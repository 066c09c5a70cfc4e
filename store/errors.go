package store

import "errors"

// Sentinel errors returned by store implementations. The service layer maps
// them onto the application error taxonomy.
var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)
