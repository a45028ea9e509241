package reconciliation_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/reconciliation"
)

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func informeValido() *entity.Reconciliation {
	return &entity.Reconciliation{
		Month:     3,
		Year:      2024,
		StartedAt: inicio,
		EndedAt:   inicio.Add(2 * time.Hour),
		Entries: []entity.ReconciliationEntry{
			{ItemID: "a", ItemName: "A", SystemQuantity: dec(12), CountedQuantity: ptr(dec(12)), Classification: entity.ClassificationCorrect},
			{ItemID: "b", ItemName: "B", SystemQuantity: dec(3), CountedQuantity: ptr(dec(1)), Classification: entity.ClassificationDiscrepant},
			{ItemID: "c", ItemName: "C", SystemQuantity: dec(8)},
		},
	}
}

func TestValidateReport_FiltraNoRevisados(t *testing.T) {
	r := informeValido()
	require.NoError(t, reconciliation.ValidateReport(r))
	assert.Len(t, r.Entries, 2)
	assert.Equal(t, entity.ReconciliationFinalized, r.Status)
}

func TestValidateReport_Rechazos(t *testing.T) {
	cases := map[string]struct {
		mutar func(r *entity.Reconciliation)
		want  error
	}{
		"mes invalido":       {func(r *entity.Reconciliation) { r.Month = 13 }, domain.ErrInvalidInput},
		"año invalido":       {func(r *entity.Reconciliation) { r.Year = 1899 }, domain.ErrInvalidInput},
		"fin antes inicio":   {func(r *entity.Reconciliation) { r.EndedAt = r.StartedAt.Add(-time.Second) }, domain.ErrInvalidInput},
		"sin entradas":       {func(r *entity.Reconciliation) { r.Entries = nil }, domain.ErrNoEntriesReviewed},
		"ninguna revisada":   {func(r *entity.Reconciliation) { r.Entries = r.Entries[2:] }, domain.ErrNoEntriesReviewed},
		"certo con diferencia": {func(r *entity.Reconciliation) {
			r.Entries[1].Classification = entity.ClassificationCorrect
		}, domain.ErrInvalidInput},
		"revisada sin conteo": {func(r *entity.Reconciliation) { r.Entries[0].CountedQuantity = nil }, domain.ErrInvalidInput},
		"conteo negativo":     {func(r *entity.Reconciliation) { r.Entries[0].CountedQuantity = ptr(dec(-1)) }, domain.ErrInvalidInput},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := informeValido()
			tc.mutar(r)
			err := reconciliation.ValidateReport(r)
			assert.True(t, errors.Is(err, tc.want), "err=%v", err)
		})
	}
}
