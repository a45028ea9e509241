package repository

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// ReconciliationRepository persiste informes de revisión sellados (inmutables).
type ReconciliationRepository interface {
	Create(ctx context.Context, r *entity.Reconciliation) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Reconciliation, error)
	// List ordena por año y mes descendentes.
	List(ctx context.Context) ([]*entity.Reconciliation, error)
}
