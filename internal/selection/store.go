package selection

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/XavierBriggs/fortuna/services/player-explorer/pkg/models"
)

// DefaultKey is the durable slot name shared by every page instance
const DefaultKey = "selectedPlayers"

// Slot is the durable key-value slot holding the serialized selection.
// Implementations return an empty slice, not an error, for a slot never written.
type Slot interface {
	Load(ctx context.Context) ([]models.Player, error)
	Save(ctx context.Context, players []models.Player) error
}

// Store tracks the ordered set of locked players. Identity is the player name.
type Store struct {
	mu       sync.RWMutex
	selected []models.Player
	slot     Slot
}

// NewStore creates an empty selection backed by slot
func NewStore(slot Slot) *Store {
	return &Store{
		selected: []models.Player{},
		slot:     slot,
	}
}

// Toggle removes every entry named like p if one is present, otherwise appends p.
// The full set is persisted afterwards; a persist failure is returned but the
// in-memory change stays. Returns whether p is selected after the call.
func (s *Store) Toggle(ctx context.Context, p models.Player) (bool, error) {
	s.mu.Lock()
	name := p.Name()
	if indexOf(s.selected, name) >= 0 {
		s.selected = without(s.selected, name)
	} else {
		s.selected = append(append([]models.Player{}, s.selected...), p)
	}
	snapshot := s.selected
	locked := indexOf(snapshot, name) >= 0
	s.mu.Unlock()

	if err := s.persist(ctx, snapshot); err != nil {
		return locked, err
	}
	return locked, nil
}

// Selected returns the current selection in insertion order
func (s *Store) Selected() []models.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Player{}, s.selected...)
}

// Contains reports whether a player with name is selected
func (s *Store) Contains(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(s.selected, name) >= 0
}

// Persisted reads the durable slot. It can differ from Selected when another
// instance wrote the slot since this one last did.
func (s *Store) Persisted(ctx context.Context) ([]models.Player, error) {
	players, err := s.slot.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load selection slot: %w", err)
	}
	return players, nil
}

// Rehydrate reconciles the selection against a freshly loaded dataset. Locked
// players keep their order but are swapped for the fresh record with the same
// name, or dropped when fresh has none. Persisted players missing from memory
// are then appended the same way. The slot is rewritten only when the
// selection changed.
func (s *Store) Rehydrate(ctx context.Context, fresh []models.Player) error {
	persisted, loadErr := s.Persisted(ctx)

	s.mu.Lock()
	next := make([]models.Player, 0, len(s.selected)+len(persisted))
	changed := false
	for _, current := range s.selected {
		match, ok := models.FindByName(fresh, current.Name())
		if !ok {
			changed = true
			continue
		}
		if !reflect.DeepEqual(match, current) {
			changed = true
		}
		next = append(next, match)
	}
	refreshed, dropped := len(next), len(s.selected)-len(next)

	for _, stored := range persisted {
		name := stored.Name()
		if indexOf(next, name) >= 0 {
			continue
		}
		if match, ok := models.FindByName(fresh, name); ok {
			next = append(next, match)
			changed = true
		}
	}
	s.selected = next
	s.mu.Unlock()

	if loadErr != nil {
		return loadErr
	}
	if !changed {
		return nil
	}

	fmt.Printf("✓ Rehydrated %d locked players (%d kept, %d no longer in dataset)\n", len(next), refreshed, dropped)
	return s.persist(ctx, next)
}

// Clear empties the selection and the durable slot
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.selected = []models.Player{}
	s.mu.Unlock()

	return s.persist(ctx, []models.Player{})
}

func (s *Store) persist(ctx context.Context, players []models.Player) error {
	if err := s.slot.Save(ctx, players); err != nil {
		fmt.Printf("⚠️  Failed to persist selection: %v\n", err)
		return fmt.Errorf("save selection slot: %w", err)
	}
	return nil
}

func indexOf(players []models.Player, name string) int {
	for i, p := range players {
		if p.Name() == name {
			return i
		}
	}
	return -1
}

func without(players []models.Player, name string) []models.Player {
	out := make([]models.Player, 0, len(players))
	for _, p := range players {
		if p.Name() != name {
			out = append(out, p)
		}
	}
	return out
}
