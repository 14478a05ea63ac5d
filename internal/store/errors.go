package store

import "errors"

var (
	ErrNotFound    = errors.New("record not found")
	ErrInvalidSeed = errors.New("invalid seed record")
)
