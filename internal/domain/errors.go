package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrUnauthenticated   = errors.New("no autenticado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrConcurrentUpdate  = errors.New("la cantidad fue modificada por otra operación")
	ErrNoEntriesReviewed = errors.New("la revisión no tiene ítems revisados")
	ErrSessionNotFound   = errors.New("sesión de revisión no encontrada o expirada")
	ErrSessionFinalized  = errors.New("la sesión de revisión ya fue finalizada")

	// ErrMovementNotRecorded: falló el registro del movimiento y la cantidad fue revertida.
	ErrMovementNotRecorded = errors.New("movimiento no registrado; stock revertido")
	// ErrInconsistentState: falló el registro del movimiento y también la reversión.
	// Stock y libro de movimientos quedan inconsistentes hasta intervención manual.
	ErrInconsistentState = errors.New("stock y libro de movimientos inconsistentes")
)

// ValidationError describe un campo inválido. errors.Is(err, ErrInvalidInput) es true.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidation construye un error de validación para un campo.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// ForbiddenError indica que el actor está autenticado pero le falta una capacidad.
type ForbiddenError struct {
	Capability string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("permiso %q requerido", e.Capability)
}

func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

// InsufficientStockError detalla una salida que dejaría la cantidad negativa.
type InsufficientStockError struct {
	ItemID    string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: solicitado %s, disponible %s",
		e.ItemID, e.Requested.String(), e.Available.String())
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// CommitOutcome resultado de la compensación tras fallar la fase 2 de un movimiento.
type CommitOutcome string

const (
	OutcomeReverted     CommitOutcome = "reverted"
	OutcomeRevertFailed CommitOutcome = "revert_failed"
)

// CommitError se devuelve cuando la cantidad se escribió pero el movimiento no pudo
// registrarse. Outcome distingue si la compensación tuvo éxito.
type CommitError struct {
	ItemID    string
	Outcome   CommitOutcome
	Cause     error
	RevertErr error
}

func (e *CommitError) Error() string {
	if e.Outcome == OutcomeRevertFailed {
		return fmt.Sprintf("item %s: registrar movimiento: %v; revertir stock: %v", e.ItemID, e.Cause, e.RevertErr)
	}
	return fmt.Sprintf("item %s: registrar movimiento: %v (stock revertido)", e.ItemID, e.Cause)
}

func (e *CommitError) Unwrap() error { return e.Cause }

func (e *CommitError) Is(target error) bool {
	switch target {
	case ErrMovementNotRecorded:
		return e.Outcome == OutcomeReverted
	case ErrInconsistentState:
		return e.Outcome == OutcomeRevertFailed
	}
	return false
}
