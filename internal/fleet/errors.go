package fleet

import "errors"

var (
	ErrBadRequest    = errors.New("missing required parameter")
	ErrNotRegistered = errors.New("server not registered")
	ErrUnauthorized  = errors.New("invalid token")
	ErrStore         = errors.New("store failure")
)
