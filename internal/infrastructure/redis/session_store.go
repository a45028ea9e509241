package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/reconciliation"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/pkg/config"
)

var _ repository.SessionStore = (*SessionStore)(nil)

const sessionKeyPrefix = "reconciliation:session:"

// NewClient abre el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// SessionStore borradores de revisión en Redis, un JSON por clave con TTL.
type SessionStore struct {
	rdb goredis.Cmdable
	ttl time.Duration
}

// NewSessionStore construye el almacén sobre un cliente, cluster o pipeline de go-redis.
func NewSessionStore(rdb goredis.Cmdable, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

// SessionKey clave Redis de una sesión.
func SessionKey(id string) string {
	return sessionKeyPrefix + id
}

// Save guarda el borrador y renueva el TTL.
func (s *SessionStore) Save(ctx context.Context, sess *reconciliation.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("serializar sesión: %w", err)
	}
	if err := s.rdb.Set(ctx, SessionKey(sess.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("guardar sesión: %w", err)
	}
	return nil
}

// Get devuelve domain.ErrSessionNotFound si la clave no existe o expiró.
func (s *SessionStore) Get(ctx context.Context, id string) (*reconciliation.Session, error) {
	payload, err := s.rdb.Get(ctx, SessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("leer sesión: %w", err)
	}
	var sess reconciliation.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("decodificar sesión: %w", err)
	}
	return &sess, nil
}

// Delete descarta el borrador.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, SessionKey(id)).Err(); err != nil {
		return fmt.Errorf("borrar sesión: %w", err)
	}
	return nil
}
