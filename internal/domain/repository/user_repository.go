package repository

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// UserRepository puerto de lectura de usuarios. El permiso llega ya normalizado.
type UserRepository interface {
	// GetByID devuelve (nil, nil) si el usuario no existe.
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// Upsert crea o actualiza el usuario por nombre de usuario (herramienta de carga).
	Upsert(ctx context.Context, user *entity.User) error
}
