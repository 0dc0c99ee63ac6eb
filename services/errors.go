package services

import "errors"

// Error taxonomy shared by the graph, merge and ledger services. Handlers
// map these onto HTTP statuses; anything unwrapped is a 500.
var (
	ErrValidation   = errors.New("invalid request")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("not allowed")
)
