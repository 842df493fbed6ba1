package domain

import "errors"

var (
	ErrLineNotFound     = errors.New("line not found")
	ErrEmptyOwner       = errors.New("ownerID is empty")
	ErrCurrencyMismatch = errors.New("currency mismatch")
)
