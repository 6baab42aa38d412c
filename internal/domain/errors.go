package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrNoProduct         = errors.New("no product selected")
	ErrInvalidTransition = errors.New("invalid navigation transition")
	ErrMissingColumn     = errors.New("missing column")
	ErrMalformed         = errors.New("malformed sheet")
	ErrSinkRejected      = errors.New("order sink rejected")
	ErrInvalidOrder      = errors.New("invalid order")
)
