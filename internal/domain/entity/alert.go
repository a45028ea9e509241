package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InconsistencyAlert alerta operativa: la cantidad se escribió, el movimiento no se
// registró y la reversión también falló. Requiere intervención manual.
type InconsistencyAlert struct {
	ItemID            string          `json:"item_id"`
	ItemName          string          `json:"item_name"`
	MovementType      MovementType    `json:"movement_type"`
	Quantity          decimal.Decimal `json:"quantity"`
	PreviousQuantity  decimal.Decimal `json:"previous_quantity"`
	AttemptedQuantity decimal.Decimal `json:"attempted_quantity"`
	Phase             string          `json:"phase"`
	Cause             string          `json:"cause"`
	RevertCause       string          `json:"revert_cause"`
	ActorID           string          `json:"actor_id"`
	OccurredAt        time.Time       `json:"occurred_at"`
}
