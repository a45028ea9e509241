package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/reconciliation"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ repository.SessionStore = (*SessionStore)(nil)

type record struct {
	payload   []byte
	expiresAt time.Time
}

// SessionStore almacén de borradores en proceso, con expiración. Guarda copias
// serializadas, igual que el almacén Redis, para que el llamador no comparta estado.
type SessionStore struct {
	mu   sync.Mutex
	data map[string]record
	ttl  time.Duration
	now  func() time.Time
}

// NewSessionStore crea el almacén con el TTL dado.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{data: map[string]record{}, ttl: ttl, now: time.Now}
}

// SetClock reemplaza el reloj (tests).
func (s *SessionStore) SetClock(now func() time.Time) { s.now = now }

// Save guarda el borrador y renueva su expiración.
func (s *SessionStore) Save(_ context.Context, sess *reconciliation.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("serializar sesión: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sess.ID] = record{payload: payload, expiresAt: s.now().Add(s.ttl)}
	return nil
}

// Get devuelve domain.ErrSessionNotFound si no existe o expiró.
func (s *SessionStore) Get(_ context.Context, id string) (*reconciliation.Session, error) {
	s.mu.Lock()
	rec, ok := s.data[id]
	if ok && !s.now().Before(rec.expiresAt) {
		delete(s.data, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	var sess reconciliation.Session
	if err := json.Unmarshal(rec.payload, &sess); err != nil {
		return nil, fmt.Errorf("leer sesión: %w", err)
	}
	return &sess, nil
}

// Delete descarta el borrador. Borrar uno inexistente no es error.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}
