package inventory_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var errDB = errors.New("conexión perdida")

// fakeItems almacén de cantidades en memoria con escritura condicional real.
type fakeItems struct {
	mu    sync.Mutex
	byID  map[string]*entity.StockItem
	calls int

	// beforeUpdate se ejecuta antes de cada UpdateQuantity (simula escritores concurrentes).
	beforeUpdate func(call int)
	// updateErr falla la n-ésima llamada a UpdateQuantity (1-based) con el error dado.
	updateErr map[int]error
	minErr    error
}

func newFakeItems(items ...*entity.StockItem) *fakeItems {
	f := &fakeItems{byID: map[string]*entity.StockItem{}, updateErr: map[int]error{}}
	for _, it := range items {
		f.byID[it.ID] = it
	}
	return f
}

func (f *fakeItems) GetByID(_ context.Context, id string) (*entity.StockItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (f *fakeItems) GetByName(_ context.Context, name string) (*entity.StockItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.byID {
		if it.Name == name {
			cp := *it
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeItems) List(_ context.Context) ([]*entity.StockItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.StockItem, 0, len(f.byID))
	for _, it := range f.byID {
		cp := *it
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeItems) Create(_ context.Context, item *entity.StockItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.byID {
		if it.Name == item.Name {
			return domain.ErrDuplicate
		}
	}
	cp := *item
	f.byID[item.ID] = &cp
	return nil
}

func (f *fakeItems) UpdateQuantity(_ context.Context, id string, expected, newQty decimal.Decimal, newMinimum *decimal.Decimal) error {
	f.mu.Lock()
	f.calls++
	call := f.calls
	hook := f.beforeUpdate
	f.mu.Unlock()
	if hook != nil {
		hook(call)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.updateErr[call]; err != nil {
		return err
	}
	it, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !it.Quantity.Equal(expected) {
		return domain.ErrConcurrentUpdate
	}
	it.Quantity = newQty
	if newMinimum != nil {
		m := *newMinimum
		it.MinimumQuantity = &m
	}
	return nil
}

func (f *fakeItems) RestoreMinimum(_ context.Context, id string, minimum *decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.minErr != nil {
		return f.minErr
	}
	it, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	it.MinimumQuantity = minimum
	return nil
}

// bump modifica la cantidad directamente (otro escritor).
func (f *fakeItems) bump(id string, delta int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[id].Quantity = f.byID[id].Quantity.Add(decimal.NewFromInt(delta))
}

func (f *fakeItems) quantity(id string) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id].Quantity
}

type fakeMovements struct {
	mu        sync.Mutex
	list      []*entity.Movement
	appendErr error
}

func (f *fakeMovements) Append(_ context.Context, m *entity.Movement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	cp := *m
	f.list = append(f.list, &cp)
	return nil
}

func (f *fakeMovements) ListRecent(_ context.Context, filter repository.MovementFilter) ([]*entity.Movement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*entity.Movement{}
	for i := len(f.list) - 1; i >= 0 && len(out) < filter.Limit; i-- {
		m := f.list[i]
		if filter.ItemID != "" && m.ItemID != filter.ItemID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeMovements) NetByItem(_ context.Context, itemID string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	net := decimal.Zero
	for _, m := range f.list {
		if m.ItemID == itemID {
			net = net.Add(m.Signed())
		}
	}
	return net, nil
}

// fakeTx ejecuta fn sobre los mismos fakes y deshace los cambios si fn falla.
type fakeTx struct {
	items     *fakeItems
	movements *fakeMovements
}

func (t *fakeTx) Run(ctx context.Context, fn func(repository.StockItemRepository, repository.MovementRepository) error) error {
	t.items.mu.Lock()
	snapshot := make(map[string]*entity.StockItem, len(t.items.byID))
	for k, v := range t.items.byID {
		snapshot[k] = v
	}
	t.items.mu.Unlock()
	t.movements.mu.Lock()
	n := len(t.movements.list)
	t.movements.mu.Unlock()

	if err := fn(t.items, t.movements); err != nil {
		t.items.mu.Lock()
		t.items.byID = snapshot
		t.items.mu.Unlock()
		t.movements.mu.Lock()
		t.movements.list = t.movements.list[:n]
		t.movements.mu.Unlock()
		return err
	}
	return nil
}

type fakeAlerts struct {
	mu   sync.Mutex
	sent []entity.InconsistencyAlert
}

func (f *fakeAlerts) PublishInconsistency(_ context.Context, a entity.InconsistencyAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, a)
	return nil
}

type fakeEvents struct {
	mu   sync.Mutex
	sent []*entity.Movement
	err  error
}

func (f *fakeEvents) PublishMovement(_ context.Context, m *entity.Movement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m)
	return f.err
}
