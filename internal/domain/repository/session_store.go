package repository

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/domain/reconciliation"
)

// SessionStore guarda los borradores de revisión en curso. Get devuelve
// domain.ErrSessionNotFound si la sesión no existe o expiró.
type SessionStore interface {
	Save(ctx context.Context, s *reconciliation.Session) error
	Get(ctx context.Context, id string) (*reconciliation.Session, error)
	Delete(ctx context.Context, id string) error
}
