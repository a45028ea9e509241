package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// GetByID obtiene un usuario por ID con el permiso normalizado.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	query := `
		SELECT id, username, display_name, permission, created_at, updated_at
		FROM users WHERE id = $1`
	var (
		u   entity.User
		raw []byte
	)
	err := r.q.QueryRow(ctx, query, id).Scan(&u.ID, &u.Username, &u.DisplayName, &raw, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	perm, err := entity.ParsePermission(raw)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", u.ID, err)
	}
	u.Permission = perm
	return &u, nil
}

// Upsert crea el usuario o actualiza nombre y permiso si el username ya existe.
// Rellena user.ID con el ID almacenado.
func (r *UserRepo) Upsert(ctx context.Context, user *entity.User) error {
	perm, err := json.Marshal(user.Permission)
	if err != nil {
		return fmt.Errorf("encode permission: %w", err)
	}
	query := `
		INSERT INTO users (id, username, display_name, permission, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (username) DO UPDATE
		SET display_name = EXCLUDED.display_name, permission = EXCLUDED.permission, updated_at = EXCLUDED.updated_at
		RETURNING id`
	err = r.q.QueryRow(ctx, query,
		user.ID, user.Username, user.DisplayName, perm, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}
