package models

import "errors"

var (
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
	ErrUnknownProvider   = errors.New("unknown mobile money provider")
)
