package storage

import "errors"

// Errores comunes de los adapters; los servicios los traducen a sus propios errores.
var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrVersionConflict = errors.New("version conflict")
)
