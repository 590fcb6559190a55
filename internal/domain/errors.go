package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrCalculationFailed = errors.New("error al calcular la revisión")
)

// TransitionError describe una transición pedida sobre una revisión en un estado que no la admite.
// Envuelve ErrConflict: errors.Is(err, ErrConflict) es true.
type TransitionError struct {
	Action  string
	Status  string
	Allowed []string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("no se puede %s una revisión en estado %q: estados permitidos [%s]",
		e.Action, e.Status, strings.Join(e.Allowed, ", "))
}

func (e *TransitionError) Unwrap() error { return ErrConflict }

// PermissionError describe un actor sin permiso para una acción. Envuelve ErrForbidden.
type PermissionError struct {
	Action string
	Reason string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("sin permiso para %s: %s", e.Action, e.Reason)
}

func (e *PermissionError) Unwrap() error { return ErrForbidden }
