package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/reconciliation"
)

// ReconciliationEntryDTO línea de revisión. Classification null significa no revisada.
type ReconciliationEntryDTO struct {
	ItemID          string           `json:"item_id" validate:"required"`
	ItemName        string           `json:"item_name"`
	SystemQuantity  decimal.Decimal  `json:"system_quantity"`
	CountedQuantity *decimal.Decimal `json:"counted_quantity"`
	Classification  *string          `json:"classification" validate:"omitempty,oneof=certo errado"`
}

// SubmitReconciliationRequest body para POST /api/reconciliations (informe completo del cliente).
type SubmitReconciliationRequest struct {
	Month     int                      `json:"month" validate:"required,min=1,max=12"`
	Year      int                      `json:"year" validate:"required,min=1900,max=2100"`
	StartedAt time.Time                `json:"started_at" validate:"required"`
	EndedAt   time.Time                `json:"ended_at" validate:"required,gtefield=StartedAt"`
	Status    string                   `json:"status" validate:"omitempty,max=50"`
	Entries   []ReconciliationEntryDTO `json:"entries" validate:"required,min=1,dive"`
}

// ToEntity construye el informe; el id y el operador los asigna el caso de uso.
func (r SubmitReconciliationRequest) ToEntity() *entity.Reconciliation {
	entries := make([]entity.ReconciliationEntry, 0, len(r.Entries))
	for _, e := range r.Entries {
		var c entity.Classification
		if e.Classification != nil {
			c = entity.Classification(*e.Classification)
		}
		entries = append(entries, entity.ReconciliationEntry{
			ItemID:          e.ItemID,
			ItemName:        e.ItemName,
			SystemQuantity:  e.SystemQuantity,
			CountedQuantity: e.CountedQuantity,
			Classification:  c,
		})
	}
	return &entity.Reconciliation{
		Month:     r.Month,
		Year:      r.Year,
		StartedAt: r.StartedAt,
		EndedAt:   r.EndedAt,
		Status:    entity.ReconciliationStatus(r.Status),
		Entries:   entries,
	}
}

// SubmitCountRequest body para PUT /api/reconciliations/sessions/:id/entries/:index.
type SubmitCountRequest struct {
	CountedQuantity *decimal.Decimal `json:"counted_quantity" validate:"required"`
}

// SummaryDTO totales de un informe.
type SummaryDTO struct {
	Reviewed        int             `json:"reviewed"`
	Correct         int             `json:"correct"`
	Discrepant      int             `json:"discrepant"`
	TotalDifference decimal.Decimal `json:"total_difference"`
}

// EntryStatusDTO línea reducida para el historial.
type EntryStatusDTO struct {
	ItemID         string  `json:"item_id"`
	ItemName       string  `json:"item_name"`
	Classification *string `json:"classification"`
}

// ReconciliationSummaryResponse elemento de GET /api/reconciliations.
type ReconciliationSummaryResponse struct {
	ID           string           `json:"id"`
	Month        int              `json:"month"`
	Year         int              `json:"year"`
	EndedAt      time.Time        `json:"ended_at"`
	OperatorName string           `json:"operator_name"`
	Status       string           `json:"status"`
	Entries      []EntryStatusDTO `json:"entries"`
	Summary      SummaryDTO       `json:"summary"`
}

// ReconciliationResponse detalle de un informe.
type ReconciliationResponse struct {
	ID           string                   `json:"id"`
	Month        int                      `json:"month"`
	Year         int                      `json:"year"`
	StartedAt    time.Time                `json:"started_at"`
	EndedAt      time.Time                `json:"ended_at"`
	OperatorName string                   `json:"operator_name"`
	Status       string                   `json:"status"`
	Entries      []ReconciliationEntryDTO `json:"entries"`
	Summary      SummaryDTO               `json:"summary"`
	CreatedAt    time.Time                `json:"created_at"`
}

// SessionResponse estado de una sesión de revisión en curso.
type SessionResponse struct {
	ID           string                   `json:"id"`
	OperatorName string                   `json:"operator_name"`
	StartedAt    time.Time                `json:"started_at"`
	Status       string                   `json:"status"`
	Cursor       int                      `json:"cursor"`
	Total        int                      `json:"total"`
	Current      *ReconciliationEntryDTO  `json:"current"`
	AtEnd        bool                     `json:"at_end"`
	Entries      []ReconciliationEntryDTO `json:"entries"`
	Summary      SummaryDTO               `json:"summary"`
}

// SubmitCountResponse clasificación resultante más el estado de la sesión.
type SubmitCountResponse struct {
	Classification string          `json:"classification"`
	Session        SessionResponse `json:"session"`
}

func newEntryDTO(e entity.ReconciliationEntry) ReconciliationEntryDTO {
	return ReconciliationEntryDTO{
		ItemID:          e.ItemID,
		ItemName:        e.ItemName,
		SystemQuantity:  e.SystemQuantity,
		CountedQuantity: e.CountedQuantity,
		Classification:  classificationPtr(e.Classification),
	}
}

func classificationPtr(c entity.Classification) *string {
	if !c.Reviewed() {
		return nil
	}
	s := string(c)
	return &s
}

func newSummaryDTO(entries []entity.ReconciliationEntry) SummaryDTO {
	s := reconciliation.Summarize(entries)
	return SummaryDTO{
		Reviewed:        s.Reviewed,
		Correct:         s.Correct,
		Discrepant:      s.Discrepant,
		TotalDifference: s.TotalDifference,
	}
}

// NewReconciliationResponse mapea el informe completo.
func NewReconciliationResponse(r *entity.Reconciliation) ReconciliationResponse {
	entries := make([]ReconciliationEntryDTO, 0, len(r.Entries))
	for _, e := range r.Entries {
		entries = append(entries, newEntryDTO(e))
	}
	return ReconciliationResponse{
		ID:           r.ID,
		Month:        r.Month,
		Year:         r.Year,
		StartedAt:    r.StartedAt,
		EndedAt:      r.EndedAt,
		OperatorName: r.OperatorName,
		Status:       string(r.Status),
		Entries:      entries,
		Summary:      newSummaryDTO(r.Entries),
		CreatedAt:    r.CreatedAt,
	}
}

// NewReconciliationSummaryResponse mapea el informe para el historial (sin cantidades).
func NewReconciliationSummaryResponse(r *entity.Reconciliation) ReconciliationSummaryResponse {
	entries := make([]EntryStatusDTO, 0, len(r.Entries))
	for _, e := range r.Entries {
		entries = append(entries, EntryStatusDTO{
			ItemID:         e.ItemID,
			ItemName:       e.ItemName,
			Classification: classificationPtr(e.Classification),
		})
	}
	return ReconciliationSummaryResponse{
		ID:           r.ID,
		Month:        r.Month,
		Year:         r.Year,
		EndedAt:      r.EndedAt,
		OperatorName: r.OperatorName,
		Status:       string(r.Status),
		Entries:      entries,
		Summary:      newSummaryDTO(r.Entries),
	}
}

// NewSessionResponse mapea el borrador de revisión.
func NewSessionResponse(s *reconciliation.Session) SessionResponse {
	entries := make([]ReconciliationEntryDTO, 0, len(s.Entries))
	for _, e := range s.Entries {
		entries = append(entries, newEntryDTO(e))
	}
	var current *ReconciliationEntryDTO
	if e := s.Current(); e != nil {
		c := newEntryDTO(*e)
		current = &c
	}
	return SessionResponse{
		ID:           s.ID,
		OperatorName: s.OperatorName,
		StartedAt:    s.StartedAt,
		Status:       string(s.Status),
		Cursor:       s.Cursor,
		Total:        len(s.Entries),
		Current:      current,
		AtEnd:        s.AtEnd(),
		Entries:      entries,
		Summary:      newSummaryDTO(s.Entries),
	}
}
