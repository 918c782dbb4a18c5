package domain

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrNoResults   = errors.New("no results")
	ErrUnavailable = errors.New("service unavailable")
)
