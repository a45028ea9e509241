package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/application/auth"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/inventory"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// DefaultMaxRetries intentos de escritura condicional ante modificaciones concurrentes.
const DefaultMaxRetries = 3

// MaxListLimit tope del listado de movimientos.
const MaxListLimit = 100

// MovementMetadata campos opcionales de un movimiento.
type MovementMetadata struct {
	Date         *time.Time
	Notes        *string
	Responsible  *string
	Sector       *string
	TicketNumber *string
}

// MovementInput entrada para registrar un movimiento sobre un ítem existente.
type MovementInput struct {
	ItemID          string
	Type            entity.MovementType
	Quantity        decimal.Decimal
	MinimumQuantity *decimal.Decimal // solo se aplica en entradas
	MovementMetadata
}

// Consistency resultado de reconstruir la cantidad de un ítem desde el libro.
type Consistency struct {
	ItemID          string
	InitialQuantity decimal.Decimal
	NetMovements    decimal.Decimal
	Expected        decimal.Decimal
	Recorded        decimal.Decimal
	Consistent      bool
}

// LedgerUseCase libro de movimientos: aplica entradas y salidas contra el almacén de
// cantidades y registra cada una en el libro.
//
// La cantidad se escribe con una actualización condicional sobre el valor leído
// (fase 1) y luego se inserta el movimiento (fase 2). Si la fase 2 falla se revierte la
// cantidad; si la reversión también falla se devuelve un CommitError revert_failed y se
// publica una alerta.
type LedgerUseCase struct {
	items      repository.StockItemRepository
	movements  repository.MovementRepository
	tx         TxRunner
	alerts     AlertPublisher
	events     EventPublisher
	log        *logger.Logger
	maxRetries int
	now        func() time.Time
	newID      func() string
}

// LedgerOption configura el caso de uso.
type LedgerOption func(*LedgerUseCase)

// WithMaxRetries cambia el número de intentos ante ErrConcurrentUpdate.
func WithMaxRetries(n int) LedgerOption {
	return func(uc *LedgerUseCase) {
		if n > 0 {
			uc.maxRetries = n
		}
	}
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) LedgerOption {
	return func(uc *LedgerUseCase) { uc.now = now }
}

// WithIDGenerator reemplaza el generador de ids (tests).
func WithIDGenerator(newID func() string) LedgerOption {
	return func(uc *LedgerUseCase) { uc.newID = newID }
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	items repository.StockItemRepository,
	movements repository.MovementRepository,
	tx TxRunner,
	alerts AlertPublisher,
	events EventPublisher,
	log *logger.Logger,
	opts ...LedgerOption,
) *LedgerUseCase {
	uc := &LedgerUseCase{
		items:      items,
		movements:  movements,
		tx:         tx,
		alerts:     alerts,
		events:     events,
		log:        log,
		maxRetries: DefaultMaxRetries,
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ApplyMovement valida, autoriza y aplica un movimiento. Devuelve el movimiento persistido.
func (uc *LedgerUseCase) ApplyMovement(ctx context.Context, actor entity.Actor, in MovementInput) (*entity.Movement, error) {
	if !in.Type.Valid() {
		return nil, domain.NewValidation("type", "debe ser entrada o saida")
	}
	if err := inventory.ValidateMovementQuantity(in.Quantity); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(in.ItemID); err != nil {
		return nil, domain.NewValidation("item_id", "identificador inválido")
	}
	date, err := uc.resolveDate(in.Date)
	if err != nil {
		return nil, err
	}
	if err := auth.Require(actor, auth.CapabilityFor(in.Type)); err != nil {
		return nil, err
	}

	// Fase 1: escritura condicional, reintentando si otra operación cambió la cantidad.
	var (
		prev    *entity.StockItem
		newQty  decimal.Decimal
		newMin  *decimal.Decimal
		written bool
	)
	for attempt := 1; attempt <= uc.maxRetries; attempt++ {
		prev, err = uc.items.GetByID(ctx, in.ItemID)
		if err != nil {
			return nil, fmt.Errorf("leer ítem: %w", err)
		}
		if prev == nil {
			return nil, domain.ErrNotFound
		}
		newQty, err = inventory.ApplyDelta(prev.ID, prev.Quantity, in.Type, in.Quantity)
		if err != nil {
			return nil, err
		}
		newMin = nil
		if in.Type == entity.MovementTypeInflow && in.MinimumQuantity != nil {
			if err := inventory.ValidateMinimum(in.MinimumQuantity, newQty); err != nil {
				return nil, err
			}
			newMin = in.MinimumQuantity
		}
		err = uc.items.UpdateQuantity(ctx, prev.ID, prev.Quantity, newQty, newMin)
		if err == nil {
			written = true
			break
		}
		if !errors.Is(err, domain.ErrConcurrentUpdate) {
			return nil, fmt.Errorf("actualizar cantidad: %w", err)
		}
		uc.log.Debug().Str("item_id", prev.ID).Int("attempt", attempt).Msg("cantidad modificada concurrentemente; reintentando")
	}
	if !written {
		return nil, domain.ErrConcurrentUpdate
	}

	// Fase 2: registrar el movimiento.
	mov := &entity.Movement{
		ID:           uc.newID(),
		Type:         in.Type,
		ItemID:       prev.ID,
		ItemName:     prev.Name,
		Quantity:     in.Quantity,
		Date:         date,
		Notes:        in.Notes,
		Responsible:  in.Responsible,
		Sector:       in.Sector,
		TicketNumber: in.TicketNumber,
		ActorID:      actor.ID,
		ActorName:    actor.Name,
		CreatedAt:    uc.now(),
	}
	if err := uc.movements.Append(ctx, mov); err != nil {
		return nil, uc.compensate(ctx, prev, newQty, newMin != nil, mov, err)
	}

	uc.publish(ctx, mov)
	return mov, nil
}

// compensate revierte la fase 1 aplicando el delta inverso con la misma escritura
// condicional, y restaura el umbral si se había cambiado.
func (uc *LedgerUseCase) compensate(ctx context.Context, prev *entity.StockItem, attempted decimal.Decimal, minChanged bool, mov *entity.Movement, cause error) error {
	// La reversión no depende de que el request siga vivo.
	rctx := context.WithoutCancel(ctx)
	revertErr := uc.revert(rctx, prev, mov, minChanged)

	if revertErr == nil {
		uc.log.Error().Err(cause).
			Str("item_id", prev.ID).
			Str("phase", "append").
			Str("outcome", string(domain.OutcomeReverted)).
			Str("previous_quantity", prev.Quantity.String()).
			Str("attempted_quantity", attempted.String()).
			Msg("movimiento no registrado; cantidad revertida")
		return &domain.CommitError{ItemID: prev.ID, Outcome: domain.OutcomeReverted, Cause: cause}
	}

	uc.log.Error().Err(cause).
		Bool("alert", true).
		Str("item_id", prev.ID).
		Str("phase", "append").
		Str("outcome", string(domain.OutcomeRevertFailed)).
		Str("previous_quantity", prev.Quantity.String()).
		Str("attempted_quantity", attempted.String()).
		AnErr("revert_error", revertErr).
		Msg("stock y libro de movimientos inconsistentes")

	alert := entity.InconsistencyAlert{
		ItemID:            prev.ID,
		ItemName:          prev.Name,
		MovementType:      mov.Type,
		Quantity:          mov.Quantity,
		PreviousQuantity:  prev.Quantity,
		AttemptedQuantity: attempted,
		Phase:             "append",
		Cause:             cause.Error(),
		RevertCause:       revertErr.Error(),
		ActorID:           mov.ActorID,
		OccurredAt:        uc.now(),
	}
	if err := uc.alerts.PublishInconsistency(rctx, alert); err != nil {
		uc.log.Error().Err(err).Bool("alert", true).Str("item_id", prev.ID).Msg("no se pudo publicar la alerta de inconsistencia")
	}
	return &domain.CommitError{ItemID: prev.ID, Outcome: domain.OutcomeRevertFailed, Cause: cause, RevertErr: revertErr}
}

func (uc *LedgerUseCase) revert(ctx context.Context, prev *entity.StockItem, mov *entity.Movement, minChanged bool) error {
	inverse := mov.Signed().Neg()
	reverted := false
	for attempt := 1; attempt <= uc.maxRetries; attempt++ {
		cur, err := uc.items.GetByID(ctx, prev.ID)
		if err != nil {
			return fmt.Errorf("leer ítem: %w", err)
		}
		if cur == nil {
			return domain.ErrNotFound
		}
		restored := cur.Quantity.Add(inverse)
		if restored.IsNegative() {
			return fmt.Errorf("la reversión dejaría la cantidad en %s", restored.String())
		}
		err = uc.items.UpdateQuantity(ctx, prev.ID, cur.Quantity, restored, nil)
		if err == nil {
			reverted = true
			break
		}
		if !errors.Is(err, domain.ErrConcurrentUpdate) {
			return fmt.Errorf("restaurar cantidad: %w", err)
		}
	}
	if !reverted {
		return domain.ErrConcurrentUpdate
	}
	if minChanged {
		if err := uc.items.RestoreMinimum(ctx, prev.ID, prev.MinimumQuantity); err != nil {
			return fmt.Errorf("restaurar mínimo: %w", err)
		}
	}
	return nil
}

// RegisterNewItem crea un ítem y su movimiento de entrada inicial en una sola transacción.
// El ítem queda con cantidad inicial 0 y el movimiento aporta toda la cantidad, de modo
// que cantidad = inicial + suma del libro. Un nombre existente devuelve ErrDuplicate
// antes de registrar nada.
func (uc *LedgerUseCase) RegisterNewItem(ctx context.Context, actor entity.Actor, item *entity.StockItem, meta MovementMetadata) (*entity.StockItem, *entity.Movement, error) {
	if err := inventory.NormalizeItem(item); err != nil {
		return nil, nil, err
	}
	if err := inventory.ValidateMovementQuantity(item.Quantity); err != nil {
		return nil, nil, err
	}
	date, err := uc.resolveDate(meta.Date)
	if err != nil {
		return nil, nil, err
	}
	if err := auth.Require(actor, entity.CapabilityInflow); err != nil {
		return nil, nil, err
	}

	now := uc.now()
	item.ID = uc.newID()
	item.InitialQuantity = decimal.Zero
	item.CreatedAt = now
	item.UpdatedAt = now
	mov := &entity.Movement{
		ID:           uc.newID(),
		Type:         entity.MovementTypeInflow,
		ItemID:       item.ID,
		ItemName:     item.Name,
		Quantity:     item.Quantity,
		Date:         date,
		Notes:        meta.Notes,
		Responsible:  meta.Responsible,
		Sector:       meta.Sector,
		TicketNumber: meta.TicketNumber,
		ActorID:      actor.ID,
		ActorName:    actor.Name,
		CreatedAt:    now,
	}

	err = uc.tx.Run(ctx, func(items repository.StockItemRepository, movements repository.MovementRepository) error {
		existing, err := items.GetByName(ctx, item.Name)
		if err != nil {
			return fmt.Errorf("buscar nombre: %w", err)
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		if err := items.Create(ctx, item); err != nil {
			return err
		}
		return movements.Append(ctx, mov)
	})
	if err != nil {
		if !errors.Is(err, domain.ErrDuplicate) {
			uc.log.Error().Err(err).Str("item_name", item.Name).Msg("registrar ítem con entrada inicial")
		}
		return nil, nil, err
	}

	uc.publish(ctx, mov)
	return item, mov, nil
}

// ListMovements devuelve los movimientos más recientes primero, como máximo MaxListLimit.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, error) {
	if filter.Limit <= 0 || filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, domain.NewValidation("type", "debe ser entrada o saida")
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, domain.NewValidation("to", "no puede ser anterior a from")
	}
	return uc.movements.ListRecent(ctx, filter)
}

// CheckConsistency compara la cantidad registrada con inicial + suma del libro.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context, itemID string) (*Consistency, error) {
	if _, err := uuid.Parse(itemID); err != nil {
		return nil, domain.NewValidation("id", "identificador inválido")
	}
	item, err := uc.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	net, err := uc.movements.NetByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	expected := item.InitialQuantity.Add(net)
	c := &Consistency{
		ItemID:          item.ID,
		InitialQuantity: item.InitialQuantity,
		NetMovements:    net,
		Expected:        expected,
		Recorded:        item.Quantity,
		Consistent:      expected.Equal(item.Quantity),
	}
	if !c.Consistent {
		uc.log.Warn().Str("item_id", item.ID).
			Str("expected", expected.String()).
			Str("recorded", item.Quantity.String()).
			Msg("cantidad no coincide con el libro de movimientos")
	}
	return c, nil
}

func (uc *LedgerUseCase) resolveDate(d *time.Time) (time.Time, error) {
	if d == nil {
		return uc.now(), nil
	}
	if d.IsZero() {
		return time.Time{}, domain.NewValidation("date", "fecha inválida")
	}
	return *d, nil
}

func (uc *LedgerUseCase) publish(ctx context.Context, m *entity.Movement) {
	if err := uc.events.PublishMovement(ctx, m); err != nil {
		uc.log.Warn().Err(err).Str("movement_id", m.ID).Msg("publicar evento de movimiento")
	}
}
