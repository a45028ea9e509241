package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ repository.ReconciliationRepository = (*ReconciliationRepo)(nil)

const reconciliationColumns = `id, month, year, started_at, ended_at, operator_id, operator_name, status, entries, created_at`

// ReconciliationRepo informes de revisión sobre PostgreSQL; las entradas van en JSONB.
type ReconciliationRepo struct {
	q Querier
}

// NewReconciliationRepository construye el adaptador.
func NewReconciliationRepository(q Querier) *ReconciliationRepo {
	return &ReconciliationRepo{q: q}
}

type reconciliationRow struct {
	ID           string    `db:"id"`
	Month        int       `db:"month"`
	Year         int       `db:"year"`
	StartedAt    time.Time `db:"started_at"`
	EndedAt      time.Time `db:"ended_at"`
	OperatorID   string    `db:"operator_id"`
	OperatorName string    `db:"operator_name"`
	Status       string    `db:"status"`
	Entries      []byte    `db:"entries"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r reconciliationRow) toEntity() (*entity.Reconciliation, error) {
	var entries []entity.ReconciliationEntry
	if err := json.Unmarshal(r.Entries, &entries); err != nil {
		return nil, fmt.Errorf("decode entries of %s: %w", r.ID, err)
	}
	return &entity.Reconciliation{
		ID:           r.ID,
		Month:        r.Month,
		Year:         r.Year,
		StartedAt:    r.StartedAt,
		EndedAt:      r.EndedAt,
		OperatorID:   r.OperatorID,
		OperatorName: r.OperatorName,
		Status:       entity.ReconciliationStatus(r.Status),
		Entries:      entries,
		CreatedAt:    r.CreatedAt,
	}, nil
}

// Create persiste un informe sellado.
func (r *ReconciliationRepo) Create(ctx context.Context, rec *entity.Reconciliation) error {
	entries, err := json.Marshal(rec.Entries)
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}
	query := `
		INSERT INTO reconciliations (id, month, year, started_at, ended_at, operator_id, operator_name, status, entries, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.q.Exec(ctx, query,
		rec.ID, rec.Month, rec.Year, rec.StartedAt, rec.EndedAt, rec.OperatorID, rec.OperatorName,
		string(rec.Status), entries, rec.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert reconciliation: %w", err)
	}
	return nil
}

// GetByID obtiene un informe por ID.
func (r *ReconciliationRepo) GetByID(ctx context.Context, id string) (*entity.Reconciliation, error) {
	var row reconciliationRow
	err := pgxscan.Get(ctx, r.q, &row, `SELECT `+reconciliationColumns+` FROM reconciliations WHERE id = $1`, id)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reconciliation: %w", err)
	}
	return row.toEntity()
}

// List devuelve los informes del más reciente al más antiguo.
func (r *ReconciliationRepo) List(ctx context.Context) ([]*entity.Reconciliation, error) {
	var rows []reconciliationRow
	query := `SELECT ` + reconciliationColumns + ` FROM reconciliations ORDER BY year DESC, month DESC, ended_at DESC`
	if err := pgxscan.Select(ctx, r.q, &rows, query); err != nil {
		return nil, fmt.Errorf("list reconciliations: %w", err)
	}
	list := make([]*entity.Reconciliation, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, nil
}
