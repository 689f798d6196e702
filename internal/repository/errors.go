package repository

import "errors"

var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicate       = errors.New("record already exists")
	ErrInvalidState    = errors.New("record is not in a state that allows this change")
	ErrSlotUnavailable = errors.New("parking slot is not available")
	ErrTypeMismatch    = errors.New("parking slot does not fit the vehicle type")
)
