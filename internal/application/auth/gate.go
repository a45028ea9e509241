package auth

import (
	"context"
	"fmt"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// Gate resuelve la identidad autenticada y verifica capacidades (Permission Gate).
type Gate struct {
	users repository.UserRepository
}

// NewGate construye el gate sobre el repositorio de usuarios.
func NewGate(users repository.UserRepository) *Gate {
	return &Gate{users: users}
}

// Resolve carga el usuario del token. Un usuario inexistente o sin login se trata como
// no autenticado.
func (g *Gate) Resolve(ctx context.Context, userID string) (entity.Actor, error) {
	if userID == "" {
		return entity.Actor{}, domain.ErrUnauthenticated
	}
	u, err := g.users.GetByID(ctx, userID)
	if err != nil {
		return entity.Actor{}, fmt.Errorf("resolver usuario: %w", err)
	}
	if u == nil {
		return entity.Actor{}, domain.ErrUnauthenticated
	}
	caps := u.Permission.Capabilities()
	if !caps.View {
		return entity.Actor{}, domain.ErrUnauthenticated
	}
	name := u.DisplayName
	if name == "" {
		name = u.Username
	}
	return entity.Actor{ID: u.ID, Name: name, Capabilities: caps}, nil
}

// Require devuelve *domain.ForbiddenError si el actor no tiene la capacidad.
func Require(actor entity.Actor, capability entity.Capability) error {
	if actor.ID == "" {
		return domain.ErrUnauthenticated
	}
	if !actor.Capabilities.Has(capability) {
		return &domain.ForbiddenError{Capability: string(capability)}
	}
	return nil
}

// CapabilityFor capacidad requerida para registrar un movimiento del tipo dado.
func CapabilityFor(t entity.MovementType) entity.Capability {
	if t == entity.MovementTypeInflow {
		return entity.CapabilityInflow
	}
	return entity.CapabilityOutflow
}
