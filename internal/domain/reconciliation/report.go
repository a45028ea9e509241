package reconciliation

import (
	"time"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// Límites de calendario de un informe.
const (
	MinYear = 1900
	MaxYear = 2100
)

// Summary totales de un informe.
type Summary struct {
	Reviewed        int
	Correct         int
	Discrepant      int
	TotalDifference decimal.Decimal // suma de (contado - sistema) de las entradas con error
}

// Summarize calcula los totales sobre las entradas revisadas.
func Summarize(entries []entity.ReconciliationEntry) Summary {
	sum := Summary{TotalDifference: decimal.Zero}
	for _, e := range entries {
		switch e.Classification {
		case entity.ClassificationCorrect:
			sum.Reviewed++
			sum.Correct++
		case entity.ClassificationDiscrepant:
			sum.Reviewed++
			sum.Discrepant++
			sum.TotalDifference = sum.TotalDifference.Add(e.Difference())
		}
	}
	return sum
}

// ValidateReport valida un informe enviado completo por el cliente y lo deja solo con
// las entradas revisadas. Una entrada "certo" debe tener conteo igual al sistema, y toda
// entrada revisada necesita conteo.
func ValidateReport(r *entity.Reconciliation) error {
	if r.Month < 1 || r.Month > 12 {
		return domain.NewValidation("month", "debe estar entre 1 y 12")
	}
	if r.Year < MinYear || r.Year > MaxYear {
		return domain.NewValidation("year", "debe estar entre 1900 y 2100")
	}
	if r.StartedAt.IsZero() || r.EndedAt.IsZero() {
		return domain.NewValidation("started_at", "inicio y fin son obligatorios")
	}
	if r.EndedAt.Before(r.StartedAt) {
		return domain.NewValidation("ended_at", "no puede ser anterior al inicio")
	}
	if len(r.Entries) == 0 {
		return domain.ErrNoEntriesReviewed
	}

	reviewed := make([]entity.ReconciliationEntry, 0, len(r.Entries))
	for _, e := range r.Entries {
		if e.ItemID == "" {
			return domain.NewValidation("entries.item_id", "es obligatorio")
		}
		if e.SystemQuantity.IsNegative() {
			return domain.NewValidation("entries.system_quantity", "no puede ser negativo")
		}
		if e.CountedQuantity != nil && (e.CountedQuantity.IsNegative() || e.CountedQuantity.GreaterThan(inventory.MaxQuantity)) {
			return domain.NewValidation("entries.counted_quantity", "debe estar entre 0 y "+inventory.MaxQuantity.String())
		}
		switch e.Classification {
		case entity.ClassificationUnreviewed:
			continue
		case entity.ClassificationCorrect, entity.ClassificationDiscrepant:
			if e.CountedQuantity == nil {
				return domain.NewValidation("entries.counted_quantity", "obligatorio para "+e.ItemName)
			}
			if e.Classification != entity.Classify(e.SystemQuantity, *e.CountedQuantity) {
				return domain.NewValidation("entries.classification", "no coincide con el conteo de "+e.ItemName)
			}
		default:
			return domain.NewValidation("entries.classification", "valor desconocido: "+string(e.Classification))
		}
		reviewed = append(reviewed, e)
	}
	if len(reviewed) == 0 {
		return domain.ErrNoEntriesReviewed
	}
	r.Entries = reviewed
	if r.Status == "" {
		r.Status = entity.ReconciliationFinalized
	}
	return nil
}

// periodOf mes y año de un instante.
func periodOf(t time.Time) (int, int) {
	return int(t.Month()), t.Year()
}
