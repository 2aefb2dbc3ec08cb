package domain

import "errors"

var (
	// ErrFileNotFound is returned when a data file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidState is returned when a state code does not occur in a year's data.
	ErrInvalidState = errors.New("invalid state")

	// ErrMissingColumns is returned when a data file lacks a required column.
	ErrMissingColumns = errors.New("missing required columns")
)
