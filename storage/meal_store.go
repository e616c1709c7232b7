package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/noamk2004/image-to-text/models"
)

// mealsKey is the single durable key the whole collection is serialized
// under, as one JSON array. No running totals or other derived state are
// persisted next to it.
const mealsKey = "meals"

// MealStore owns the ordered meal collection, newest first. Every mutation
// is written through to durable storage before it returns, so a process
// restart never loses a committed insert or delete. Callers get copies from
// List and must re-read after a mutation to observe current state.
type MealStore struct {
	mu      sync.Mutex
	kv      KV
	records []models.MealRecord
	log     *zap.Logger
}

func NewMealStore(kv KV, log *zap.Logger) *MealStore {
	return &MealStore{kv: kv, log: log}
}

// Load reads the persisted collection. A missing key means first use and an
// unparseable payload means the persisted state is corrupt; both start the
// collection empty. Corruption is logged but never surfaced as an error —
// it is a recoverable condition, not a failure.
func (s *MealStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok, err := s.kv.Get(ctx, mealsKey)
	if err != nil {
		return fmt.Errorf("load meals: %w", err)
	}
	if !ok {
		s.records = nil
		return nil
	}

	var records []models.MealRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.log.Warn("persisted meal collection is corrupt, starting empty",
			zap.Error(err))
		s.records = nil
		return nil
	}
	s.records = records
	return nil
}

// Insert prepends the record and saves. If the save fails the prepend is
// rolled back so memory never gets ahead of durable storage.
func (s *MealStore) Insert(ctx context.Context, rec models.MealRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append([]models.MealRecord{rec}, s.records...)
	if err := s.save(ctx); err != nil {
		s.records = s.records[1:]
		return err
	}
	return nil
}

// Delete removes the record with the given id, preserving the relative
// order of the rest. Deleting an id that is not present is a no-op and
// does not touch durable storage.
func (s *MealStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, r := range s.records {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}

	removed := s.records[idx]
	s.records = append(s.records[:idx:idx], s.records[idx+1:]...)
	if err := s.save(ctx); err != nil {
		rest := append([]models.MealRecord{removed}, s.records[idx:]...)
		s.records = append(s.records[:idx:idx], rest...)
		return err
	}
	return nil
}

// List returns a copy of the collection, newest first.
func (s *MealStore) List() []models.MealRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.MealRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Has reports whether a record with the given id exists.
func (s *MealStore) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.ID == id {
			return true
		}
	}
	return false
}

// save overwrites the single durable key with the full ordered collection.
// Callers must hold s.mu.
func (s *MealStore) save(ctx context.Context) error {
	records := s.records
	if records == nil {
		records = []models.MealRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal meals: %w", err)
	}
	if err := s.kv.Put(ctx, mealsKey, data); err != nil {
		return fmt.Errorf("save meals: %w", err)
	}
	return nil
}
