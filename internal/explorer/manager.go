package explorer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/bus"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/dataset"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/derived"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/filter"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/selection"
	"github.com/XavierBriggs/fortuna/services/player-explorer/pkg/models"
)

// ErrPlayerNotFound is returned when a name does not match any loaded player
var ErrPlayerNotFound = errors.New("player not found")

// DatasetLoader fetches and prepares a dataset
type DatasetLoader interface {
	Load(ctx context.Context, source string, transforms dataset.Transforms) ([]models.Player, error)
}

// Manager owns the dataset, the filter configuration, the selection and the
// subscription buses for one dashboard. Each piece of state has one writer
// path: Load/Replace for the dataset, UpdateFilters for the filters, and
// Toggle/ClearSelection (plus rehydration on load) for the selection.
//
// Writers are serialized and listeners run before the writer returns, so a
// listener always sees the state as it stood when recomputation finished.
// Listeners must not call writer methods synchronously.
type Manager struct {
	writeMu sync.Mutex

	mu       sync.RWMutex
	full     []models.Player
	filtered []models.Player
	source   string
	loadedAt time.Time

	loader    DatasetLoader
	eval      *derived.Evaluator
	engine    *filter.Engine
	selection *selection.Store
	views     *bus.Bus
	selected  *bus.Bus
}

// NewManager creates a manager with an empty dataset
func NewManager(loader DatasetLoader, eval *derived.Evaluator, store *selection.Store, initial models.FilterConfig) *Manager {
	return &Manager{
		full:      []models.Player{},
		filtered:  []models.Player{},
		loader:    loader,
		eval:      eval,
		engine:    filter.NewEngine(eval, initial),
		selection: store,
		views:     bus.New(),
		selected:  bus.New(),
	}
}

// Load fetches source and replaces the dataset. On failure the error is logged
// and returned, the previous dataset stays in place and nobody is notified.
// Overlapping loads are not ordered: the last one to finish wins.
func (m *Manager) Load(ctx context.Context, source string, transforms dataset.Transforms) error {
	start := time.Now()

	players, err := m.loader.Load(ctx, source, transforms)
	if err != nil {
		fmt.Printf("❌ Error loading dataset from %s: %v\n", source, err)
		return fmt.Errorf("load dataset: %w", err)
	}

	fmt.Printf("✓ Loaded %d players from %s (%s)\n", len(players), source, time.Since(start).Round(time.Millisecond))

	m.install(ctx, source, players)
	return nil
}

// Replace installs players as the dataset, re-filters, rehydrates the
// selection against it and notifies listeners.
func (m *Manager) Replace(ctx context.Context, players []models.Player) {
	m.install(ctx, "", players)
}

// install commits players together with the source they came from. An empty
// source keeps the previous one.
func (m *Manager) install(ctx context.Context, source string, players []models.Player) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	if source != "" {
		m.source = source
	}
	m.full = players
	m.filtered = m.engine.Apply(players)
	m.loadedAt = time.Now()
	view := m.filtered
	m.mu.Unlock()

	if err := m.selection.Rehydrate(ctx, players); err != nil {
		fmt.Printf("⚠️  Selection rehydration failed: %v\n", err)
	}

	m.views.Publish(view)
	m.selected.Publish(m.selection.Selected())
}

// UpdateFilters merges update into the filter configuration, recomputes the
// filtered view and notifies listeners.
func (m *Manager) UpdateFilters(update models.FilterUpdate) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	if err := m.engine.Merge(update); err != nil {
		m.mu.Unlock()
		return err
	}
	m.filtered = m.engine.Apply(m.full)
	view := m.filtered
	m.mu.Unlock()

	m.views.Publish(view)
	return nil
}

// Toggle locks p if no player with its name is locked, unlocks it otherwise.
// The player does not need to be in the filtered view.
func (m *Manager) Toggle(ctx context.Context, p models.Player) (bool, error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	locked, err := m.selection.Toggle(ctx, p)
	m.selected.Publish(m.selection.Selected())
	return locked, err
}

// ToggleByName resolves name against the full dataset and toggles it
func (m *Manager) ToggleByName(ctx context.Context, name string) (bool, error) {
	p, ok := m.Find(name)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrPlayerNotFound, name)
	}
	return m.Toggle(ctx, p)
}

// ClearSelection unlocks everyone
func (m *Manager) ClearSelection(ctx context.Context) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	err := m.selection.Clear(ctx)
	m.selected.Publish(m.selection.Selected())
	return err
}

// Subscribe registers a filtered-view listener
func (m *Manager) Subscribe(l bus.Listener) {
	m.views.Subscribe(l)
}

// SubscribeSelection registers a listener for selection changes
func (m *Manager) SubscribeSelection(l bus.Listener) {
	m.selected.Subscribe(l)
}

// Filtered returns the last computed filtered view. The slice is shared and
// must not be modified; it is replaced, never mutated, on recomputation.
func (m *Manager) Filtered() []models.Player {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filtered
}

// Full returns the whole dataset, read-only like Filtered
func (m *Manager) Full() []models.Player {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.full
}

// Filters returns a copy of the current filter configuration
func (m *Manager) Filters() models.FilterConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.engine.Config()
}

// Selected returns the locked players in insertion order
func (m *Manager) Selected() []models.Player {
	return m.selection.Selected()
}

// Persisted reads the durable selection slot
func (m *Manager) Persisted(ctx context.Context) ([]models.Player, error) {
	return m.selection.Persisted(ctx)
}

// IsSelected reports whether name is locked
func (m *Manager) IsSelected(name string) bool {
	return m.selection.Contains(name)
}

// Pinned returns the filtered view with the selection pinned on top
func (m *Manager) Pinned() []models.Player {
	return selection.PinToTop(m.Selected(), m.Filtered())
}

// Find looks a player up by name in the full dataset
func (m *Manager) Find(name string) (models.Player, bool) {
	return models.FindByName(m.Full(), name)
}

// Evaluator returns the shared derived-metric evaluator
func (m *Manager) Evaluator() *derived.Evaluator {
	return m.eval
}

// Leagues returns the distinct leagues of the full dataset, sorted
func (m *Manager) Leagues() []string {
	seen := make(map[string]bool)
	leagues := make([]string, 0)
	for _, p := range m.Full() {
		l := p.String(models.FieldLeague)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		leagues = append(leagues, l)
	}
	sort.Strings(leagues)
	return leagues
}

// Stats returns counters for the metrics endpoint
func (m *Manager) Stats() map[string]interface{} {
	m.mu.RLock()
	total := len(m.full)
	filtered := len(m.filtered)
	source := m.source
	loadedAt := m.loadedAt
	m.mu.RUnlock()

	return map[string]interface{}{
		"players_total":    total,
		"players_filtered": filtered,
		"players_selected": len(m.Selected()),
		"listeners":        m.views.ListenerCount(),
		"publishes":        m.views.Published(),
		"dataset_source":   source,
		"loaded_at":        loadedAt,
	}
}
