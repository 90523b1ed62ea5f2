package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// La capa HTTP los traduce a códigos de estado; el motor solo produce el tipo.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrValidation   = errors.New("entrada inválida")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrUnauthorized = errors.New("no autorizado")
)
