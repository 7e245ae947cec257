// Package favorites persists each identity's favorite recipe IDs and
// reconciles them with recipe summaries fetched from the catalog.
package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/pageza/mealquest/backend/internal/identity"
)

// ErrCorrupt marks a persisted payload that could not be decoded.
var ErrCorrupt = errors.New("corrupt favorites payload")

// Store is a durable mapping from a storage key to an ordered ID sequence.
//
// Fetch distinguishes "unreadable" (ErrCorrupt) from "unavailable" (any
// other error). Load never fails: both cases come back as an empty sequence.
type Store interface {
	Load(ctx context.Context, key identity.StorageKey) []string
	Fetch(ctx context.Context, key identity.StorageKey) ([]string, error)
	Save(ctx context.Context, key identity.StorageKey, ids []string) error
}

func loadSoft(ctx context.Context, s Store, log logrus.FieldLogger, key identity.StorageKey) []string {
	ids, err := s.Fetch(ctx, key)
	if err != nil {
		log.WithError(err).WithField("key", key.String()).Warn("favorites unreadable, treating as empty")
		return []string{}
	}
	return ids
}

// encodeIDs renders ids as a JSON array, dropping blanks and duplicates.
func encodeIDs(ids []string) (string, error) {
	data, err := json.Marshal(normalize(ids))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeIDs parses a stored payload. An empty payload is an empty set.
func decodeIDs(payload string) ([]string, error) {
	if strings.TrimSpace(payload) == "" {
		return []string{}, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(payload), &ids); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return normalize(ids), nil
}

func normalize(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// MemoryStore keeps encoded payloads in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]string
	log     logrus.FieldLogger
}

func NewMemoryStore(log logrus.FieldLogger) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]string),
		log:     log,
	}
}

func (s *MemoryStore) Load(ctx context.Context, key identity.StorageKey) []string {
	return loadSoft(ctx, s, s.log, key)
}

func (s *MemoryStore) Fetch(_ context.Context, key identity.StorageKey) ([]string, error) {
	s.mu.RLock()
	payload, ok := s.records[key.String()]
	s.mu.RUnlock()
	if !ok {
		return []string{}, nil
	}
	return decodeIDs(payload)
}

func (s *MemoryStore) Save(_ context.Context, key identity.StorageKey, ids []string) error {
	payload, err := encodeIDs(ids)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.records[key.String()] = payload
	s.mu.Unlock()
	return nil
}

// PutRaw writes payload verbatim, bypassing encoding. Used to seed records
// written by older clients.
func (s *MemoryStore) PutRaw(key identity.StorageKey, payload string) {
	s.mu.Lock()
	s.records[key.String()] = payload
	s.mu.Unlock()
}
