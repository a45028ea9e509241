package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/pkg/config"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

var (
	_ inventory.AlertPublisher = (*Publisher)(nil)
	_ inventory.EventPublisher = (*Publisher)(nil)
)

const (
	eventTypeHeader   = "event-type"
	eventInconsistent = "stock.inconsistency"
	eventMovement     = "movement.recorded"
	writeTimeout      = 5 * time.Second
)

// MessageWriter lo que el publicador necesita de *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher publica alertas de inconsistencia y movimientos confirmados. Sin brokers
// configurados solo registra en el log.
type Publisher struct {
	alerts    MessageWriter
	movements MessageWriter
	log       *logger.Logger
}

// NewPublisher construye el publicador a partir de la configuración.
func NewPublisher(cfg config.KafkaConfig, log *logger.Logger) *Publisher {
	p := &Publisher{log: log}
	if len(cfg.Brokers) == 0 {
		return p
	}
	p.alerts = newWriter(cfg.Brokers, cfg.AlertTopic)
	p.movements = newWriter(cfg.Brokers, cfg.MovementTopic)
	return p
}

// NewPublisherWithWriters inyecta los writers (tests).
func NewPublisherWithWriters(alerts, movements MessageWriter, log *logger.Logger) *Publisher {
	return &Publisher{alerts: alerts, movements: movements, log: log}
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Compression:  kafka.Snappy,
	}
}

// PublishInconsistency publica la alerta con clave = ID del ítem.
func (p *Publisher) PublishInconsistency(ctx context.Context, alert entity.InconsistencyAlert) error {
	if p.alerts == nil {
		p.log.Warn().Str("item_id", alert.ItemID).Str("phase", alert.Phase).Msg("alerta sin kafka configurado")
		return nil
	}
	return p.write(ctx, p.alerts, alert.ItemID, eventInconsistent, alert.OccurredAt, alert)
}

// PublishMovement publica un movimiento confirmado con clave = ID del ítem.
func (p *Publisher) PublishMovement(ctx context.Context, m *entity.Movement) error {
	if p.movements == nil {
		p.log.Debug().Str("movement_id", m.ID).Str("item_id", m.ItemID).Msg("movimiento (sin kafka)")
		return nil
	}
	return p.write(ctx, p.movements, m.ItemID, eventMovement, m.CreatedAt, movementEvent{
		ID:           m.ID,
		Type:         string(m.Type),
		ItemID:       m.ItemID,
		ItemName:     m.ItemName,
		Quantity:     m.Quantity.String(),
		Date:         m.Date,
		Responsible:  m.Responsible,
		Sector:       m.Sector,
		TicketNumber: m.TicketNumber,
		ActorID:      m.ActorID,
	})
}

type movementEvent struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	ItemID       string    `json:"item_id"`
	ItemName     string    `json:"item_name"`
	Quantity     string    `json:"quantity"`
	Date         time.Time `json:"date"`
	Responsible  *string   `json:"responsible,omitempty"`
	Sector       *string   `json:"sector,omitempty"`
	TicketNumber *string   `json:"ticket_number,omitempty"`
	ActorID      string    `json:"actor_id"`
}

func (p *Publisher) write(ctx context.Context, w MessageWriter, key, eventType string, at time.Time, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventType, err)
	}
	msg := kafka.Message{
		Key:     []byte(key),
		Value:   value,
		Time:    at,
		Headers: []kafka.Header{{Key: eventTypeHeader, Value: []byte(eventType)}},
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s: %w", eventType, err)
	}
	return nil
}

// Close cierra los writers.
func (p *Publisher) Close() error {
	var first error
	for _, w := range []MessageWriter{p.alerts, p.movements} {
		if w == nil {
			continue
		}
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
