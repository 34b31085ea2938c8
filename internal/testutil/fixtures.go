package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/dataset"
	"github.com/XavierBriggs/fortuna/services/player-explorer/pkg/models"
)

// ErrSlotUnavailable is returned by a failing MockSlot
var ErrSlotUnavailable = errors.New("slot unavailable")

// MockPlayer creates a test player record with the fields the filters read
func MockPlayer(name string, age float64, league, pos string, minutes float64) models.Player {
	return models.Player{
		models.FieldName:     name,
		models.FieldAge:      age,
		models.FieldLeague:   league,
		models.FieldPosition: pos,
		models.FieldSquad:    "Test FC",
		models.FieldMinutes:  minutes,
		models.FieldCategory: string(models.CategoryFromPosition(pos)),
	}
}

// WithStats returns a copy of p carrying extra fields
func WithStats(p models.Player, stats map[string]interface{}) models.Player {
	out := p.Clone()
	for k, v := range stats {
		out[k] = v
	}
	return out
}

// MockSquad returns a small mixed dataset:
//
//	Alpha  22 Premier League FW   1800 min
//	Bravo  30 La Liga        DF    900 min
//	Carlos 19 Premier League MFFW  450 min
//	Delta  34 Serie A        GK   2700 min
func MockSquad() []models.Player {
	return []models.Player{
		WithStats(MockPlayer("Alpha", 22, "Premier League", "FW", 1800), map[string]interface{}{
			models.FieldGoals: 0.5, models.FieldAssists: 0.2,
		}),
		WithStats(MockPlayer("Bravo", 30, "La Liga", "DF", 900), map[string]interface{}{
			models.FieldGoals: 0.1, models.FieldAssists: 0.1,
		}),
		WithStats(MockPlayer("Carlos", 19, "Premier League", "MFFW", 450), map[string]interface{}{
			models.FieldGoals: 0.8, models.FieldAssists: 0.4,
		}),
		WithStats(MockPlayer("Delta", 34, "Serie A", "GK", 2700), map[string]interface{}{
			models.FieldGoals: 0.0, models.FieldAssists: 0.0,
		}),
	}
}

// MockSlot is an in-memory selection slot that can be told to fail
type MockSlot struct {
	mu       sync.Mutex
	players  []models.Player
	saves    int
	failLoad bool
	failSave bool
}

// NewMockSlot creates a slot pre-filled with players
func NewMockSlot(players ...models.Player) *MockSlot {
	return &MockSlot{players: players}
}

func (m *MockSlot) Load(ctx context.Context) ([]models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLoad {
		return nil, ErrSlotUnavailable
	}
	return append([]models.Player{}, m.players...), nil
}

func (m *MockSlot) Save(ctx context.Context, players []models.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return ErrSlotUnavailable
	}
	m.players = append([]models.Player{}, players...)
	m.saves++
	return nil
}

// FailLoad makes every Load fail
func (m *MockSlot) FailLoad(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failLoad = fail
}

// FailSave makes every Save fail
func (m *MockSlot) FailSave(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSave = fail
}

// Saves returns how many saves succeeded
func (m *MockSlot) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Names returns the names currently stored
func (m *MockSlot) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.Names(m.players)
}

// MockLoader returns a fixed dataset or a fixed error
type MockLoader struct {
	Players []models.Player
	Err     error
	Calls   int
}

func (m *MockLoader) Load(ctx context.Context, source string, transforms dataset.Transforms) ([]models.Player, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Players, nil
}

// Float64Ptr returns a pointer to f
func Float64Ptr(f float64) *float64 {
	return &f
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
