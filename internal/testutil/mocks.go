package testutil

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/armory/internal/db"
	"github.com/udisondev/armory/internal/model"
	"github.com/udisondev/armory/internal/physics"
)

type loadoutKey struct {
	bearer uuid.UUID
	weapon string
}

// MockLoadoutStore is an in-memory loadout store for unit tests.
// Mirrors db.LoadoutRepository semantics without PostgreSQL.
type MockLoadoutStore struct {
	mu       sync.RWMutex
	loadouts map[loadoutKey]db.Loadout
	saves    int
}

// NewMockLoadoutStore creates an empty store.
func NewMockLoadoutStore() *MockLoadoutStore {
	return &MockLoadoutStore{loadouts: make(map[loadoutKey]db.Loadout)}
}

// Save replaces the stored loadout.
func (m *MockLoadoutStore) Save(_ context.Context, l db.Loadout) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saves++
	key := loadoutKey{l.BearerID, l.Weapon}
	if len(l.Parts) == 0 {
		delete(m.loadouts, key)
		return nil
	}
	l.Parts = maps.Clone(l.Parts)
	l.UpdatedAt = time.Now().UTC()
	m.loadouts[key] = l
	return nil
}

// Load returns a copy of the stored loadout or db.ErrLoadoutNotFound.
func (m *MockLoadoutStore) Load(_ context.Context, bearerID uuid.UUID, weapon string) (db.Loadout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.loadouts[loadoutKey{bearerID, weapon}]
	if !ok {
		return db.Loadout{}, fmt.Errorf("loadout %s/%s: %w", bearerID, weapon, db.ErrLoadoutNotFound)
	}
	l.Parts = maps.Clone(l.Parts)
	return l, nil
}

// Saves returns number of Save calls.
func (m *MockLoadoutStore) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// DamageEvent is one ApplyDamage call recorded by DamageLog.
type DamageEvent struct {
	Amount float64
	Point  model.Vec3
	Cause  physics.Cause
}

// DamageLog records damage it receives.
type DamageLog struct {
	mu     sync.Mutex
	events []DamageEvent
}

// ApplyDamage implements physics.DamageReceiver.
func (d *DamageLog) ApplyDamage(amount float64, point, _ model.Vec3, cause physics.Cause) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, DamageEvent{Amount: amount, Point: point, Cause: cause})
}

// Events returns a copy of recorded damage.
func (d *DamageLog) Events() []DamageEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]DamageEvent(nil), d.events...)
}

// Total returns the sum of received damage.
func (d *DamageLog) Total() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	var sum float64
	for _, e := range d.events {
		sum += e.Amount
	}
	return sum
}
