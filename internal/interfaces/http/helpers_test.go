package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/application/auth"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/application/reconciliation"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/estoque-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/estoque-api/pkg/jwt"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "estoque-api-test"

	adminID   = "00000000-0000-0000-0000-00000000000a"
	balcaoID  = "00000000-0000-0000-0000-00000000000b"
	leitorID  = "00000000-0000-0000-0000-00000000000c"
	semLogin  = "00000000-0000-0000-0000-00000000000d"
	glovesID  = "5b0c7a7e-4c44-4f3e-9a63-1f2f1c9d0a01"
	swabsID   = "5b0c7a7e-4c44-4f3e-9a63-1f2f1c9d0a02"
	missingID = "5b0c7a7e-4c44-4f3e-9a63-1f2f1c9d0aff"
)

func boolPtr(b bool) *bool { return &b }

// ── fakes ────────────────────────────────────────────────────────────────────

type memUsers struct{ byID map[string]*entity.User }

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	return m.byID[id], nil
}

func (m *memUsers) Upsert(_ context.Context, u *entity.User) error {
	m.byID[u.ID] = u
	return nil
}

type memItems struct {
	mu   sync.Mutex
	byID map[string]*entity.StockItem
}

func (m *memItems) GetByID(_ context.Context, id string) (*entity.StockItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if it, ok := m.byID[id]; ok {
		cp := *it
		return &cp, nil
	}
	return nil, nil
}

func (m *memItems) GetByName(_ context.Context, name string) (*entity.StockItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.byID {
		if it.Name == name {
			cp := *it
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memItems) List(_ context.Context) ([]*entity.StockItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.StockItem, 0, len(m.byID))
	for _, it := range m.byID {
		cp := *it
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memItems) Create(_ context.Context, item *entity.StockItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.byID {
		if it.Name == item.Name {
			return domain.ErrDuplicate
		}
	}
	cp := *item
	m.byID[item.ID] = &cp
	return nil
}

func (m *memItems) UpdateQuantity(_ context.Context, id string, expected, newQty decimal.Decimal, newMinimum *decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !it.Quantity.Equal(expected) {
		return domain.ErrConcurrentUpdate
	}
	it.Quantity = newQty
	if newMinimum != nil {
		v := *newMinimum
		it.MinimumQuantity = &v
	}
	return nil
}

func (m *memItems) RestoreMinimum(_ context.Context, id string, minimum *decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	it.MinimumQuantity = minimum
	return nil
}

type memMovements struct {
	mu        sync.Mutex
	list      []*entity.Movement
	appendErr error
}

func (m *memMovements) Append(_ context.Context, mov *entity.Movement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	cp := *mov
	m.list = append(m.list, &cp)
	return nil
}

func (m *memMovements) ListRecent(_ context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*entity.Movement{}
	for i := len(m.list) - 1; i >= 0 && len(out) < f.Limit; i-- {
		if f.ItemID != "" && m.list[i].ItemID != f.ItemID {
			continue
		}
		if f.Type != "" && m.list[i].Type != f.Type {
			continue
		}
		out = append(out, m.list[i])
	}
	return out, nil
}

func (m *memMovements) NetByItem(_ context.Context, itemID string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	net := decimal.Zero
	for _, mov := range m.list {
		if mov.ItemID == itemID {
			net = net.Add(mov.Signed())
		}
	}
	return net, nil
}

type directTx struct {
	items     *memItems
	movements *memMovements
}

func (t directTx) Run(_ context.Context, fn func(repository.StockItemRepository, repository.MovementRepository) error) error {
	return fn(t.items, t.movements)
}

type memReports struct {
	mu   sync.Mutex
	byID map[string]*entity.Reconciliation
}

func (m *memReports) Create(_ context.Context, r *entity.Reconciliation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[r.ID]; ok {
		return domain.ErrDuplicate
	}
	m.byID[r.ID] = r
	return nil
}

func (m *memReports) GetByID(_ context.Context, id string) (*entity.Reconciliation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id], nil
}

func (m *memReports) List(_ context.Context) ([]*entity.Reconciliation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.Reconciliation, 0, len(m.byID))
	for _, r := range m.byID {
		out = append(out, r)
	}
	return out, nil
}

type nopPublisher struct{}

func (nopPublisher) PublishInconsistency(context.Context, entity.InconsistencyAlert) error { return nil }
func (nopPublisher) PublishMovement(context.Context, *entity.Movement) error              { return nil }

// ── app de prueba ────────────────────────────────────────────────────────────

type testEnv struct {
	app       *fiber.App
	items     *memItems
	movements *memMovements
	reports   *memReports
}

// newTestEnv arma la API completa con "Gloves" (50, mínimo 10) y "Swabs" (5, mínimo 10).
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	users := &memUsers{byID: map[string]*entity.User{
		adminID:  {ID: adminID, Username: "admin", DisplayName: "Administração", Permission: entity.Permission{Login: true, IsAdmin: true}},
		balcaoID: {ID: balcaoID, Username: "balcao", Permission: entity.Permission{Login: true}},
		leitorID: {ID: leitorID, Username: "leitor", Permission: entity.Permission{Login: true, Outflow: boolPtr(false)}},
		semLogin: {ID: semLogin, Username: "bloqueado", Permission: entity.Permission{Login: false}},
	}}
	items := &memItems{byID: map[string]*entity.StockItem{
		glovesID: {ID: glovesID, Name: "Gloves", Category: "EPI", Unit: "cx", Quantity: decimal.NewFromInt(50), InitialQuantity: decimal.NewFromInt(50), MinimumQuantity: decPtr(10)},
		swabsID:  {ID: swabsID, Name: "Swabs", Category: "Coleta", Unit: "un", Quantity: decimal.NewFromInt(5), InitialQuantity: decimal.NewFromInt(5), MinimumQuantity: decPtr(10)},
	}}
	movements := &memMovements{}
	reports := &memReports{byID: map[string]*entity.Reconciliation{}}
	log := logger.Nop()

	ledger := inventory.NewLedgerUseCase(items, movements, directTx{items: items, movements: movements}, nopPublisher{}, nopPublisher{}, log)
	catalog := inventory.NewCatalogUseCase(items)
	recUC := reconciliation.NewUseCase(items, memory.NewSessionStore(time.Hour), reports, log, "pt-BR")

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger:         ledger,
		Catalog:        catalog,
		Reconciliation: recUC,
		Actors:         auth.NewGate(users),
		JWTSecret:      testJWTSecret,
		Log:            log,
	})
	return &testEnv{app: app, items: items, movements: movements, reports: reports}
}

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// bearer genera un JWT válido para el usuario.
func bearer(t *testing.T, userID string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, "user-"+userID[len(userID)-1:], testIssuer, 60)
	require.NoError(t, err)
	return "Bearer " + tok
}

// call hace la petición y devuelve status y cuerpo decodificado en out (si no es nil).
func call(t *testing.T, app *fiber.App, method, path, authHeader string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out), "cuerpo: %s", raw)
	}
	return resp.StatusCode
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field"`
}
