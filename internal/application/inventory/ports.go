package inventory

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Se usa para crear un ítem y su movimiento inicial de forma atómica.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		items repository.StockItemRepository,
		movements repository.MovementRepository,
	) error) error
}

// AlertPublisher canal operativo para inconsistencias entre stock y libro.
type AlertPublisher interface {
	PublishInconsistency(ctx context.Context, alert entity.InconsistencyAlert) error
}

// EventPublisher notifica movimientos confirmados. Un fallo no invalida el movimiento.
type EventPublisher interface {
	PublishMovement(ctx context.Context, m *entity.Movement) error
}
