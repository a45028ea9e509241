package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento del libro.
type MovementType string

// Tipos de movimiento de inventario.
const (
	MovementTypeInflow  MovementType = "entrada"
	MovementTypeOutflow MovementType = "saida"
)

// Valid informa si el tipo es uno de los dos valores admitidos.
func (t MovementType) Valid() bool {
	return t == MovementTypeInflow || t == MovementTypeOutflow
}

// Sign devuelve +1 para entrada y -1 para salida.
func (t MovementType) Sign() int64 {
	if t == MovementTypeOutflow {
		return -1
	}
	return 1
}

// Movement es un registro inmutable del libro de movimientos.
// Quantity siempre es positiva; el signo lo aporta Type.
type Movement struct {
	ID           string
	Type         MovementType
	ItemID       string
	ItemName     string // copia del nombre al momento del movimiento
	Quantity     decimal.Decimal
	Date         time.Time
	Notes        *string
	Responsible  *string
	Sector       *string
	TicketNumber *string
	ActorID      string
	ActorName    string
	CreatedAt    time.Time
}

// Signed devuelve la cantidad con signo según el tipo.
func (m *Movement) Signed() decimal.Decimal {
	if m.Type == MovementTypeOutflow {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
