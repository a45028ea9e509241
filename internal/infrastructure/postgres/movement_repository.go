package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// MovementRepo libro de movimientos sobre PostgreSQL. Solo inserta y lee; la tabla
// rechaza UPDATE y DELETE por trigger.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador (pool o tx).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

type movementRow struct {
	ID           string          `db:"id"`
	Type         string          `db:"type"`
	ItemID       string          `db:"item_id"`
	ItemName     string          `db:"item_name"`
	Quantity     decimal.Decimal `db:"quantity"`
	Date         time.Time       `db:"date"`
	Notes        *string         `db:"notes"`
	Responsible  *string         `db:"responsible"`
	Sector       *string         `db:"sector"`
	TicketNumber *string         `db:"ticket_number"`
	ActorID      string          `db:"actor_id"`
	ActorName    string          `db:"actor_name"`
	CreatedAt    time.Time       `db:"created_at"`
}

func (r movementRow) toEntity() *entity.Movement {
	return &entity.Movement{
		ID:           r.ID,
		Type:         entity.MovementType(r.Type),
		ItemID:       r.ItemID,
		ItemName:     r.ItemName,
		Quantity:     r.Quantity,
		Date:         r.Date,
		Notes:        r.Notes,
		Responsible:  r.Responsible,
		Sector:       r.Sector,
		TicketNumber: r.TicketNumber,
		ActorID:      r.ActorID,
		ActorName:    r.ActorName,
		CreatedAt:    r.CreatedAt,
	}
}

// Append inserta un movimiento.
func (r *MovementRepo) Append(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO stock_movements (id, type, item_id, item_name, quantity, date, notes, responsible,
			sector, ticket_number, actor_id, actor_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		m.ID, string(m.Type), m.ItemID, m.ItemName, m.Quantity, m.Date, m.Notes, m.Responsible,
		m.Sector, m.TicketNumber, m.ActorID, m.ActorName, m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// ListRecent devuelve movimientos filtrados, más recientes primero.
func (r *MovementRepo) ListRecent(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, error) {
	q := psql.Select("id", "type", "item_id", "item_name", "quantity", "date", "notes", "responsible",
		"sector", "ticket_number", "actor_id", "actor_name", "created_at").
		From("stock_movements")

	if filter.ItemID != "" {
		q = q.Where(squirrel.Eq{"item_id": filter.ItemID})
	}
	if filter.Type != "" {
		q = q.Where(squirrel.Eq{"type": string(filter.Type)})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.To})
	}
	q = q.OrderBy("date DESC", "created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build movements query: %w", err)
	}
	var rows []movementRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	list := make([]*entity.Movement, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.toEntity())
	}
	return list, nil
}

// NetByItem suma entradas menos salidas del ítem.
func (r *MovementRepo) NetByItem(ctx context.Context, itemID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN type = 'saida' THEN -quantity ELSE quantity END), 0)
		FROM stock_movements WHERE item_id = $1`
	var net decimal.Decimal
	if err := r.q.QueryRow(ctx, query, itemID).Scan(&net); err != nil {
		return decimal.Zero, fmt.Errorf("net movements: %w", err)
	}
	return net, nil
}
