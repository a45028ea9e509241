package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ repository.StockItemRepository = (*StockItemRepo)(nil)

const stockItemColumns = `id, name, category, unit, quantity, initial_quantity, minimum_quantity,
	description, supplier, price, location, created_at, updated_at`

// StockItemRepo implementación del almacén de cantidades sobre PostgreSQL.
type StockItemRepo struct {
	q Querier
}

// NewStockItemRepository construye el adaptador (pool o tx).
func NewStockItemRepository(q Querier) *StockItemRepo {
	return &StockItemRepo{q: q}
}

type stockItemRow struct {
	ID              string           `db:"id"`
	Name            string           `db:"name"`
	Category        string           `db:"category"`
	Unit            string           `db:"unit"`
	Quantity        decimal.Decimal  `db:"quantity"`
	InitialQuantity decimal.Decimal  `db:"initial_quantity"`
	MinimumQuantity *decimal.Decimal `db:"minimum_quantity"`
	Description     string           `db:"description"`
	Supplier        string           `db:"supplier"`
	Price           decimal.Decimal  `db:"price"`
	Location        string           `db:"location"`
	CreatedAt       time.Time        `db:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at"`
}

func (r stockItemRow) toEntity() *entity.StockItem {
	return &entity.StockItem{
		ID:              r.ID,
		Name:            r.Name,
		Category:        r.Category,
		Unit:            r.Unit,
		Quantity:        r.Quantity,
		InitialQuantity: r.InitialQuantity,
		MinimumQuantity: r.MinimumQuantity,
		Description:     r.Description,
		Supplier:        r.Supplier,
		Price:           r.Price,
		Location:        r.Location,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// GetByID obtiene un ítem por ID.
func (r *StockItemRepo) GetByID(ctx context.Context, id string) (*entity.StockItem, error) {
	return r.getOne(ctx, `SELECT `+stockItemColumns+` FROM stock_items WHERE id = $1`, id)
}

// GetByName obtiene un ítem por nombre exacto.
func (r *StockItemRepo) GetByName(ctx context.Context, name string) (*entity.StockItem, error) {
	return r.getOne(ctx, `SELECT `+stockItemColumns+` FROM stock_items WHERE name = $1`, name)
}

func (r *StockItemRepo) getOne(ctx context.Context, query string, arg any) (*entity.StockItem, error) {
	var row stockItemRow
	if err := pgxscan.Get(ctx, r.q, &row, query, arg); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock item: %w", err)
	}
	return row.toEntity(), nil
}

// List devuelve el catálogo ordenado por nombre.
func (r *StockItemRepo) List(ctx context.Context) ([]*entity.StockItem, error) {
	var rows []stockItemRow
	if err := pgxscan.Select(ctx, r.q, &rows, `SELECT `+stockItemColumns+` FROM stock_items ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list stock items: %w", err)
	}
	list := make([]*entity.StockItem, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.toEntity())
	}
	return list, nil
}

// Create persiste un ítem nuevo.
func (r *StockItemRepo) Create(ctx context.Context, item *entity.StockItem) error {
	query := `
		INSERT INTO stock_items (id, name, category, unit, quantity, initial_quantity, minimum_quantity,
			description, supplier, price, location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.Name, item.Category, item.Unit, item.Quantity, item.InitialQuantity, item.MinimumQuantity,
		item.Description, item.Supplier, item.Price, item.Location, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert stock item: %w", err)
	}
	return nil
}

// UpdateQuantity escritura condicional: solo aplica si quantity sigue siendo expected.
func (r *StockItemRepo) UpdateQuantity(ctx context.Context, id string, expected, newQty decimal.Decimal, newMinimum *decimal.Decimal) error {
	query := `
		UPDATE stock_items
		SET quantity = $3, minimum_quantity = COALESCE($4, minimum_quantity), updated_at = now()
		WHERE id = $1 AND quantity = $2`
	tag, err := r.q.Exec(ctx, query, id, expected, newQty, newMinimum)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("update stock quantity: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	return r.missOrConflict(ctx, id)
}

// RestoreMinimum reescribe el umbral sin tocar la cantidad.
func (r *StockItemRepo) RestoreMinimum(ctx context.Context, id string, minimum *decimal.Decimal) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE stock_items SET minimum_quantity = $2, updated_at = now() WHERE id = $1`, id, minimum)
	if err != nil {
		return fmt.Errorf("restore minimum: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *StockItemRepo) missOrConflict(ctx context.Context, id string) error {
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM stock_items WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check stock item: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrConcurrentUpdate
}
