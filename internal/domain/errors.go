package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrConcurrentModification = errors.New("la partición fue modificada por otro escritor")
	ErrLedgerContention       = errors.New("contención persistente en la partición del ledger")
	ErrConsistencyViolation   = errors.New("invariante del ledger violado")
)
