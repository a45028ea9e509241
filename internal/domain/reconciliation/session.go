package reconciliation

import (
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
)

// Session borrador de una revisión física en curso. Se serializa como JSON en el
// almacén de borradores; solo Finalize produce un registro persistente.
type Session struct {
	ID           string                       `json:"id"`
	OperatorID   string                       `json:"operator_id"`
	OperatorName string                       `json:"operator_name"`
	StartedAt    time.Time                    `json:"started_at"`
	Cursor       int                          `json:"cursor"`
	Status       entity.ReconciliationStatus  `json:"status"`
	Entries      []entity.ReconciliationEntry `json:"entries"`
}

// Start toma una foto de la cantidad de cada ítem del catálogo, ordenada por nombre.
// Con coll nil se ordena por bytes.
func Start(id string, operator entity.Actor, items []*entity.StockItem, now time.Time, coll *collate.Collator) *Session {
	entries := make([]entity.ReconciliationEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, entity.ReconciliationEntry{
			ItemID:         it.ID,
			ItemName:       it.Name,
			SystemQuantity: it.Quantity,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if coll != nil {
			return coll.CompareString(entries[i].ItemName, entries[j].ItemName) < 0
		}
		return entries[i].ItemName < entries[j].ItemName
	})
	return &Session{
		ID:           id,
		OperatorID:   operator.ID,
		OperatorName: operator.Name,
		StartedAt:    now,
		Status:       entity.ReconciliationInProgress,
		Entries:      entries,
	}
}

// Current devuelve la entrada bajo el cursor, o nil si la lista está vacía.
func (s *Session) Current() *entity.ReconciliationEntry {
	if s.Cursor < 0 || s.Cursor >= len(s.Entries) {
		return nil
	}
	return &s.Entries[s.Cursor]
}

// AtEnd informa si el cursor está en la última entrada (o no hay entradas).
func (s *Session) AtEnd() bool {
	return s.Cursor >= len(s.Entries)-1
}

// SubmitCount registra el conteo de la entrada index y la clasifica. Reenviar un conteo
// sobrescribe la clasificación previa. El cursor se posiciona en index.
func (s *Session) SubmitCount(index int, counted decimal.Decimal) (entity.Classification, error) {
	if s.Status == entity.ReconciliationFinalized {
		return entity.ClassificationUnreviewed, domain.ErrSessionFinalized
	}
	if index < 0 || index >= len(s.Entries) {
		return entity.ClassificationUnreviewed, domain.NewValidation("index", fmt.Sprintf("fuera de rango (0..%d)", len(s.Entries)-1))
	}
	if counted.IsNegative() {
		return entity.ClassificationUnreviewed, domain.NewValidation("counted_quantity", "no puede ser negativo")
	}
	if counted.GreaterThan(inventory.MaxQuantity) {
		return entity.ClassificationUnreviewed, domain.NewValidation("counted_quantity", "no puede superar "+inventory.MaxQuantity.String())
	}
	e := &s.Entries[index]
	c := counted
	e.CountedQuantity = &c
	e.Classification = entity.Classify(e.SystemQuantity, counted)
	s.Cursor = index
	return e.Classification, nil
}

// Advance mueve el cursor una posición. Devuelve true si ya estaba en la última entrada;
// en ese caso el cursor no cambia.
func (s *Session) Advance() (atEnd bool, err error) {
	if s.Status == entity.ReconciliationFinalized {
		return false, domain.ErrSessionFinalized
	}
	if s.AtEnd() {
		return true, nil
	}
	s.Cursor++
	return false, nil
}

// Retreat mueve el cursor una posición hacia atrás; en la primera entrada no hace nada.
func (s *Session) Retreat() error {
	if s.Status == entity.ReconciliationFinalized {
		return domain.ErrSessionFinalized
	}
	if s.Cursor > 0 {
		s.Cursor--
	}
	return nil
}

// Reviewed devuelve copia de las entradas con clasificación explícita, en orden.
func (s *Session) Reviewed() []entity.ReconciliationEntry {
	out := make([]entity.ReconciliationEntry, 0, len(s.Entries))
	for _, e := range s.Entries {
		if e.Classification.Reviewed() {
			out = append(out, e)
		}
	}
	return out
}

// Finalize sella la sesión en un informe con solo las entradas revisadas. Mes y año
// salen de la hora de cierre. Sin entradas revisadas devuelve domain.ErrNoEntriesReviewed
// y la sesión sigue abierta.
func (s *Session) Finalize(reportID string, now time.Time) (*entity.Reconciliation, error) {
	if s.Status == entity.ReconciliationFinalized {
		return nil, domain.ErrSessionFinalized
	}
	reviewed := s.Reviewed()
	if len(reviewed) == 0 {
		return nil, domain.ErrNoEntriesReviewed
	}
	if now.Before(s.StartedAt) {
		now = s.StartedAt
	}
	month, year := periodOf(now)
	s.Status = entity.ReconciliationFinalized
	return &entity.Reconciliation{
		ID:           reportID,
		Month:        month,
		Year:         year,
		StartedAt:    s.StartedAt,
		EndedAt:      now,
		OperatorID:   s.OperatorID,
		OperatorName: s.OperatorName,
		Status:       entity.ReconciliationFinalized,
		Entries:      reviewed,
		CreatedAt:    now,
	}, nil
}
