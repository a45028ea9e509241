package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jhoicas/estoque-api/internal/application/auth"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/reconciliation"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// UseCase revisión física del almacén: sesión en curso (borrador) e informes sellados.
// La revisión no modifica cantidades.
type UseCase struct {
	items    repository.StockItemRepository
	sessions repository.SessionStore
	reports  repository.ReconciliationRepository
	log      *logger.Logger
	locale   language.Tag
	now      func() time.Time
	newID    func() string
}

// NewUseCase construye el caso de uso. locale define el orden alfabético de la sesión
// (ej. "pt-BR"); un valor inválido ordena por bytes.
func NewUseCase(
	items repository.StockItemRepository,
	sessions repository.SessionStore,
	reports repository.ReconciliationRepository,
	log *logger.Logger,
	locale string,
) *UseCase {
	tag, err := language.Parse(locale)
	if err != nil {
		log.Warn().Err(err).Str("locale", locale).Msg("locale inválido; orden por bytes")
		tag = language.Und
	}
	return &UseCase{
		items:    items,
		sessions: sessions,
		reports:  reports,
		log:      log,
		locale:   tag,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// SetClock reemplaza el reloj (tests).
func (uc *UseCase) SetClock(now func() time.Time) { uc.now = now }

func (uc *UseCase) collator() *collate.Collator {
	if uc.locale == language.Und {
		return nil
	}
	// Collator no es seguro para uso concurrente: uno por sesión.
	return collate.New(uc.locale, collate.IgnoreCase)
}

// StartSession toma la foto del catálogo y guarda el borrador.
func (uc *UseCase) StartSession(ctx context.Context, actor entity.Actor) (*reconciliation.Session, error) {
	if err := auth.Require(actor, entity.CapabilityView); err != nil {
		return nil, err
	}
	items, err := uc.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar catálogo: %w", err)
	}
	s := reconciliation.Start(uc.newID(), actor, items, uc.now(), uc.collator())
	if err := uc.sessions.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("guardar sesión: %w", err)
	}
	uc.log.Info().Str("session_id", s.ID).Str("operator_id", actor.ID).Int("entries", len(s.Entries)).Msg("revisión iniciada")
	return s, nil
}

// GetSession devuelve el borrador; domain.ErrSessionNotFound si no existe o expiró.
func (uc *UseCase) GetSession(ctx context.Context, actor entity.Actor, id string) (*reconciliation.Session, error) {
	if err := auth.Require(actor, entity.CapabilityView); err != nil {
		return nil, err
	}
	return uc.sessions.Get(ctx, id)
}

// SubmitCount registra el conteo de una entrada y guarda el borrador.
func (uc *UseCase) SubmitCount(ctx context.Context, actor entity.Actor, id string, index int, counted decimal.Decimal) (entity.Classification, *reconciliation.Session, error) {
	s, err := uc.GetSession(ctx, actor, id)
	if err != nil {
		return entity.ClassificationUnreviewed, nil, err
	}
	c, err := s.SubmitCount(index, counted)
	if err != nil {
		return entity.ClassificationUnreviewed, nil, err
	}
	if err := uc.sessions.Save(ctx, s); err != nil {
		return entity.ClassificationUnreviewed, nil, fmt.Errorf("guardar sesión: %w", err)
	}
	return c, s, nil
}

// Advance mueve el cursor; atEnd indica que ya no hay más entradas.
func (uc *UseCase) Advance(ctx context.Context, actor entity.Actor, id string) (*reconciliation.Session, bool, error) {
	s, err := uc.GetSession(ctx, actor, id)
	if err != nil {
		return nil, false, err
	}
	atEnd, err := s.Advance()
	if err != nil {
		return nil, false, err
	}
	if !atEnd {
		if err := uc.sessions.Save(ctx, s); err != nil {
			return nil, false, fmt.Errorf("guardar sesión: %w", err)
		}
	}
	return s, atEnd, nil
}

// Retreat mueve el cursor una posición hacia atrás.
func (uc *UseCase) Retreat(ctx context.Context, actor entity.Actor, id string) (*reconciliation.Session, error) {
	s, err := uc.GetSession(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.Retreat(); err != nil {
		return nil, err
	}
	if err := uc.sessions.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("guardar sesión: %w", err)
	}
	return s, nil
}

// FinalizeSession sella la sesión en un informe persistido y descarta el borrador.
// El informe hereda el ID de la sesión: un segundo cierre de la misma sesión (reintento o
// petición concurrente) choca con el informe ya guardado y devuelve domain.ErrSessionFinalized.
// Si el informe no se puede guardar el borrador queda intacto para reintentar.
func (uc *UseCase) FinalizeSession(ctx context.Context, actor entity.Actor, id string) (*entity.Reconciliation, error) {
	s, err := uc.GetSession(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	report, err := s.Finalize(s.ID, uc.now())
	if err != nil {
		return nil, err
	}
	if err := uc.reports.Create(ctx, report); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			uc.discardDraft(ctx, id)
			return nil, domain.ErrSessionFinalized
		}
		return nil, fmt.Errorf("guardar informe: %w", err)
	}
	uc.discardDraft(ctx, id)
	uc.log.Info().Str("reconciliation_id", report.ID).Str("session_id", id).Int("reviewed", len(report.Entries)).Msg("revisión finalizada")
	return report, nil
}

func (uc *UseCase) discardDraft(ctx context.Context, id string) {
	if err := uc.sessions.Delete(ctx, id); err != nil {
		uc.log.Warn().Err(err).Str("session_id", id).Msg("no se pudo descartar el borrador finalizado")
	}
}

// Submit persiste un informe completo enviado por el cliente. Se conservan solo las
// entradas revisadas; sin ninguna devuelve domain.ErrNoEntriesReviewed.
func (uc *UseCase) Submit(ctx context.Context, actor entity.Actor, r *entity.Reconciliation) (*entity.Reconciliation, error) {
	if err := auth.Require(actor, entity.CapabilityView); err != nil {
		return nil, err
	}
	if err := reconciliation.ValidateReport(r); err != nil {
		return nil, err
	}
	r.ID = uc.newID()
	r.OperatorID = actor.ID
	r.OperatorName = actor.Name
	r.CreatedAt = uc.now()
	if err := uc.reports.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("guardar informe: %w", err)
	}
	return r, nil
}

// List devuelve los informes, más recientes primero.
func (uc *UseCase) List(ctx context.Context, actor entity.Actor) ([]*entity.Reconciliation, error) {
	if err := auth.Require(actor, entity.CapabilityView); err != nil {
		return nil, err
	}
	return uc.reports.List(ctx)
}

// GetByID devuelve domain.ErrNotFound si el informe no existe.
func (uc *UseCase) GetByID(ctx context.Context, actor entity.Actor, id string) (*entity.Reconciliation, error) {
	if err := auth.Require(actor, entity.CapabilityView); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NewValidation("id", "identificador inválido")
	}
	r, err := uc.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	return r, nil
}
