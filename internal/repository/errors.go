// Package repository holds errors shared by storage implementations.
package repository

import "errors"

var (
	// ErrProductNotFound is returned when a tracked product does not exist.
	ErrProductNotFound = errors.New("tracked product not found")
	// ErrAlertNotFound is returned when a price alert does not exist.
	ErrAlertNotFound = errors.New("price alert not found")
)
