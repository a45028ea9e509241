package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationStatus estado de una revisión. Enum abierto.
type ReconciliationStatus string

const (
	ReconciliationInProgress ReconciliationStatus = "em_andamento"
	ReconciliationFinalized  ReconciliationStatus = "finalizada"
)

// Classification resultado del conteo de un ítem. El valor cero significa "no revisado".
type Classification string

const (
	ClassificationUnreviewed Classification = ""
	ClassificationCorrect    Classification = "certo"
	ClassificationDiscrepant Classification = "errado"
)

// Reviewed informa si la entrada ya tiene una clasificación explícita.
func (c Classification) Reviewed() bool {
	return c == ClassificationCorrect || c == ClassificationDiscrepant
}

// Classify: correcto solo si el conteo coincide exactamente con el sistema.
func Classify(system, counted decimal.Decimal) Classification {
	if counted.Equal(system) {
		return ClassificationCorrect
	}
	return ClassificationDiscrepant
}

// ReconciliationEntry línea de una revisión: cantidad del sistema al iniciar y cantidad contada.
type ReconciliationEntry struct {
	ItemID          string           `json:"item_id"`
	ItemName        string           `json:"item_name"`
	SystemQuantity  decimal.Decimal  `json:"system_quantity"`
	CountedQuantity *decimal.Decimal `json:"counted_quantity"`
	Classification  Classification   `json:"classification"`
}

// Difference devuelve contado - sistema; cero si la entrada no fue contada.
func (e ReconciliationEntry) Difference() decimal.Decimal {
	if e.CountedQuantity == nil {
		return decimal.Zero
	}
	return e.CountedQuantity.Sub(e.SystemQuantity)
}

// Reconciliation informe sellado de una revisión física del almacén.
type Reconciliation struct {
	ID           string
	Month        int
	Year         int
	StartedAt    time.Time
	EndedAt      time.Time
	OperatorID   string
	OperatorName string
	Status       ReconciliationStatus
	Entries      []ReconciliationEntry
	CreatedAt    time.Time
}
