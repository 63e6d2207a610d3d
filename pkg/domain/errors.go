package domain

import "errors"

// ErrDraftNotFound is returned by stores when no record exists under a key.
var ErrDraftNotFound = errors.New("draft not found")

// ErrMalformedDraft is returned when a stored record cannot be decoded.
var ErrMalformedDraft = errors.New("malformed draft record")

// ErrEmptyID is returned when an operation needs a draft id and none was given.
var ErrEmptyID = errors.New("draft id cannot be empty")
