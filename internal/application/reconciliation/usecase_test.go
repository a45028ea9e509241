package reconciliation_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apprec "github.com/jhoicas/estoque-api/internal/application/reconciliation"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/infrastructure/memory"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

type fakeCatalog struct{ items []*entity.StockItem }

func (f *fakeCatalog) GetByID(context.Context, string) (*entity.StockItem, error)   { return nil, nil }
func (f *fakeCatalog) GetByName(context.Context, string) (*entity.StockItem, error) { return nil, nil }
func (f *fakeCatalog) List(context.Context) ([]*entity.StockItem, error)            { return f.items, nil }
func (f *fakeCatalog) Create(context.Context, *entity.StockItem) error              { return nil }
func (f *fakeCatalog) UpdateQuantity(context.Context, string, decimal.Decimal, decimal.Decimal, *decimal.Decimal) error {
	return nil
}
func (f *fakeCatalog) RestoreMinimum(context.Context, string, *decimal.Decimal) error { return nil }

type fakeReports struct {
	mu        sync.Mutex
	byID      map[string]*entity.Reconciliation
	createErr error
}

func (f *fakeReports) Create(_ context.Context, r *entity.Reconciliation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byID[r.ID]; ok {
		return domain.ErrDuplicate
	}
	f.byID[r.ID] = r
	return nil
}

func (f *fakeReports) GetByID(_ context.Context, id string) (*entity.Reconciliation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id], nil
}

func (f *fakeReports) List(context.Context) ([]*entity.Reconciliation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.Reconciliation, 0, len(f.byID))
	for _, r := range f.byID {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndedAt.After(out[j].EndedAt) })
	return out, nil
}

var (
	operador = entity.Actor{ID: "u-1", Name: "Maria", Capabilities: entity.Capabilities{View: true}}
	inicio   = time.Date(2024, time.June, 30, 23, 0, 0, 0, time.UTC)
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func nuevo(t *testing.T) (*apprec.UseCase, *fakeReports, *memory.SessionStore, *time.Time) {
	t.Helper()
	catalogo := &fakeCatalog{items: []*entity.StockItem{
		{ID: "m", Name: "Masks", Quantity: dec(5)},
		{ID: "g", Name: "Gloves", Quantity: dec(5)},
		{ID: "s", Name: "seringa", Quantity: dec(0)},
	}}
	reports := &fakeReports{byID: map[string]*entity.Reconciliation{}}
	store := memory.NewSessionStore(time.Hour)
	uc := apprec.NewUseCase(catalogo, store, reports, logger.Nop(), "pt-BR")
	now := inicio
	uc.SetClock(func() time.Time { return now })
	return uc, reports, store, &now
}

func TestSesionCompleta(t *testing.T) {
	uc, reports, store, now := nuevo(t)
	ctx := context.Background()

	s, err := uc.StartSession(ctx, operador)
	require.NoError(t, err)
	require.Len(t, s.Entries, 3)
	assert.Equal(t, []string{"Gloves", "Masks", "seringa"},
		[]string{s.Entries[0].ItemName, s.Entries[1].ItemName, s.Entries[2].ItemName})

	c, _, err := uc.SubmitCount(ctx, operador, s.ID, 0, dec(5))
	require.NoError(t, err)
	assert.Equal(t, entity.ClassificationCorrect, c)

	got, atEnd, err := uc.Advance(ctx, operador, s.ID)
	require.NoError(t, err)
	assert.False(t, atEnd)
	assert.Equal(t, 1, got.Cursor)

	c, _, err = uc.SubmitCount(ctx, operador, s.ID, 1, dec(7))
	require.NoError(t, err)
	assert.Equal(t, entity.ClassificationDiscrepant, c)

	// La tercera entrada queda sin revisar.
	_, _, err = uc.Advance(ctx, operador, s.ID)
	require.NoError(t, err)
	_, atEnd, err = uc.Advance(ctx, operador, s.ID)
	require.NoError(t, err)
	assert.True(t, atEnd)

	*now = inicio.Add(2 * time.Hour)
	rep, err := uc.FinalizeSession(ctx, operador, s.ID)
	require.NoError(t, err)
	assert.Len(t, rep.Entries, 2, "solo las entradas revisadas")
	assert.Equal(t, 7, rep.Month, "el cierre cae en julio")
	assert.Equal(t, "Maria", rep.OperatorName)
	assert.Contains(t, reports.byID, rep.ID)

	_, err = store.Get(ctx, s.ID)
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound), "el borrador se descarta")

	detalle, err := uc.GetByID(ctx, operador, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, rep, detalle)
}

func TestFinalizeSession_SinRevisados(t *testing.T) {
	uc, reports, store, _ := nuevo(t)
	ctx := context.Background()
	s, err := uc.StartSession(ctx, operador)
	require.NoError(t, err)

	_, err = uc.FinalizeSession(ctx, operador, s.ID)
	assert.True(t, errors.Is(err, domain.ErrNoEntriesReviewed))
	assert.Empty(t, reports.byID)

	_, err = store.Get(ctx, s.ID)
	assert.NoError(t, err, "la sesión sigue abierta")
}

func TestFinalizeSession_FallaGuardarConservaBorrador(t *testing.T) {
	uc, reports, store, _ := nuevo(t)
	ctx := context.Background()
	s, err := uc.StartSession(ctx, operador)
	require.NoError(t, err)
	_, _, err = uc.SubmitCount(ctx, operador, s.ID, 0, dec(1))
	require.NoError(t, err)

	reports.createErr = errors.New("db caída")
	_, err = uc.FinalizeSession(ctx, operador, s.ID)
	require.Error(t, err)

	borrador, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReconciliationInProgress, borrador.Status)

	reports.createErr = nil
	_, err = uc.FinalizeSession(ctx, operador, s.ID)
	assert.NoError(t, err)
}

// borradorPersistente no consigue descartar borradores.
type borradorPersistente struct {
	*memory.SessionStore
}

func (borradorPersistente) Delete(context.Context, string) error {
	return errors.New("redis no disponible")
}

func TestFinalizeSession_SellaUnaSolaVezAunqueElBorradorSobreviva(t *testing.T) {
	catalogo := &fakeCatalog{items: []*entity.StockItem{{ID: "g", Name: "Gloves", Quantity: dec(5)}}}
	reports := &fakeReports{byID: map[string]*entity.Reconciliation{}}
	store := borradorPersistente{memory.NewSessionStore(time.Hour)}
	uc := apprec.NewUseCase(catalogo, store, reports, logger.Nop(), "pt-BR")
	uc.SetClock(func() time.Time { return inicio })
	ctx := context.Background()

	s, err := uc.StartSession(ctx, operador)
	require.NoError(t, err)
	_, _, err = uc.SubmitCount(ctx, operador, s.ID, 0, dec(5))
	require.NoError(t, err)

	rep, err := uc.FinalizeSession(ctx, operador, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, rep.ID)

	_, err = uc.FinalizeSession(ctx, operador, s.ID)
	assert.True(t, errors.Is(err, domain.ErrSessionFinalized))
	assert.Len(t, reports.byID, 1)
}

func TestFinalizeSession_Concurrente(t *testing.T) {
	uc, reports, _, _ := nuevo(t)
	ctx := context.Background()
	s, err := uc.StartSession(ctx, operador)
	require.NoError(t, err)
	_, _, err = uc.SubmitCount(ctx, operador, s.ID, 0, dec(5))
	require.NoError(t, err)

	const n = 8
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.FinalizeSession(ctx, operador, s.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t,
			errors.Is(err, domain.ErrSessionFinalized) || errors.Is(err, domain.ErrSessionNotFound),
			"error inesperado: %v", err)
	}
	assert.Equal(t, 1, ok)
	assert.Len(t, reports.byID, 1)
}

func TestSubmitCount_SesionInexistente(t *testing.T) {
	uc, _, _, _ := nuevo(t)
	_, _, err := uc.SubmitCount(context.Background(), operador, "nope", 0, dec(1))
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))
}

func TestSubmitCount_NegativoNoGuarda(t *testing.T) {
	uc, _, store, _ := nuevo(t)
	ctx := context.Background()
	s, err := uc.StartSession(ctx, operador)
	require.NoError(t, err)

	_, _, err = uc.SubmitCount(ctx, operador, s.ID, 0, dec(-2))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	borrador, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, borrador.Entries[0].CountedQuantity)
}

func TestRetreat_MuestraConteoPrevio(t *testing.T) {
	uc, _, _, _ := nuevo(t)
	ctx := context.Background()
	s, err := uc.StartSession(ctx, operador)
	require.NoError(t, err)
	_, _, err = uc.SubmitCount(ctx, operador, s.ID, 0, dec(3))
	require.NoError(t, err)
	_, _, err = uc.Advance(ctx, operador, s.ID)
	require.NoError(t, err)

	got, err := uc.Retreat(ctx, operador, s.ID)
	require.NoError(t, err)
	assert.True(t, got.Current().CountedQuantity.Equal(dec(3)))
}

func TestSubmit_InformeDelCliente(t *testing.T) {
	uc, reports, _, _ := nuevo(t)
	contado := dec(2)
	r := &entity.Reconciliation{
		Month: 6, Year: 2024, StartedAt: inicio, EndedAt: inicio.Add(time.Hour),
		Entries: []entity.ReconciliationEntry{
			{ItemID: "g", ItemName: "Gloves", SystemQuantity: dec(5), CountedQuantity: &contado, Classification: entity.ClassificationDiscrepant},
			{ItemID: "m", ItemName: "Masks", SystemQuantity: dec(5)},
		},
	}
	saved, err := uc.Submit(context.Background(), operador, r)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Len(t, saved.Entries, 1)
	assert.Equal(t, "u-1", saved.OperatorID)
	assert.Equal(t, entity.ReconciliationFinalized, saved.Status)
	assert.Len(t, reports.byID, 1)

	_, err = uc.Submit(context.Background(), operador, &entity.Reconciliation{
		Month: 6, Year: 2024, StartedAt: inicio, EndedAt: inicio,
	})
	assert.True(t, errors.Is(err, domain.ErrNoEntriesReviewed))
}

func TestGetByID_NoEncontrado(t *testing.T) {
	uc, _, _, _ := nuevo(t)
	_, err := uc.GetByID(context.Background(), operador, "0b7e6f5c-5c52-4b8f-8a0e-2d9c6e2f7a11")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRequiereAutenticacion(t *testing.T) {
	uc, _, _, _ := nuevo(t)
	_, err := uc.StartSession(context.Background(), entity.Actor{})
	assert.True(t, errors.Is(err, domain.ErrUnauthenticated))
}
