package selection

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/XavierBriggs/fortuna/services/player-explorer/pkg/models"
	"github.com/redis/go-redis/v9"

	_ "modernc.org/sqlite"
)

// RedisSlot keeps the selection as a JSON string under a single key, with no TTL
type RedisSlot struct {
	client *redis.Client
	key    string
}

// NewRedisSlot creates a Redis-backed slot
func NewRedisSlot(client *redis.Client, key string) *RedisSlot {
	if key == "" {
		key = DefaultKey
	}
	return &RedisSlot{
		client: client,
		key:    key,
	}
}

// Load retrieves the stored selection
func (r *RedisSlot) Load(ctx context.Context) ([]models.Player, error) {
	data, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return []models.Player{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodePlayers([]byte(data))
}

// Save overwrites the stored selection
func (r *RedisSlot) Save(ctx context.Context, players []models.Player) error {
	data, err := encodePlayers(players)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, data, 0).Err()
}

// SQLiteSlot keeps the selection in a local SQLite file, one row per key
type SQLiteSlot struct {
	db  *sql.DB
	key string
}

// OpenSQLiteSlot opens (creating if needed) the slot database at path
func OpenSQLiteSlot(ctx context.Context, path, key string) (*SQLiteSlot, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS selection_slots (
			slot_key   TEXT PRIMARY KEY,
			payload    TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create selection_slots: %w", err)
	}

	if key == "" {
		key = DefaultKey
	}
	return &SQLiteSlot{db: db, key: key}, nil
}

// Load retrieves the stored selection
func (s *SQLiteSlot) Load(ctx context.Context) ([]models.Player, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM selection_slots WHERE slot_key = ?`, s.key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return []models.Player{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query selection slot: %w", err)
	}
	return decodePlayers([]byte(payload))
}

// Save overwrites the stored selection
func (s *SQLiteSlot) Save(ctx context.Context, players []models.Player) error {
	data, err := encodePlayers(players)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO selection_slots (slot_key, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(slot_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		s.key, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert selection slot: %w", err)
	}
	return nil
}

// Close releases the database handle
func (s *SQLiteSlot) Close() error {
	return s.db.Close()
}

// MemorySlot is a process-local slot. It stores the encoded form so readers
// never share records with the writer.
type MemorySlot struct {
	mu   sync.Mutex
	data []byte
}

// NewMemorySlot creates an empty in-memory slot
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

// Load retrieves the stored selection
func (m *MemorySlot) Load(ctx context.Context) ([]models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return []models.Player{}, nil
	}
	return decodePlayers(m.data)
}

// Save overwrites the stored selection
func (m *MemorySlot) Save(ctx context.Context, players []models.Player) error {
	data, err := encodePlayers(players)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	return nil
}

func encodePlayers(players []models.Player) ([]byte, error) {
	if players == nil {
		players = []models.Player{}
	}
	data, err := json.Marshal(players)
	if err != nil {
		return nil, fmt.Errorf("marshaling selection: %w", err)
	}
	return data, nil
}

func decodePlayers(data []byte) ([]models.Player, error) {
	var players []models.Player
	if err := json.Unmarshal(data, &players); err != nil {
		return nil, fmt.Errorf("unmarshaling selection: %w", err)
	}
	if players == nil {
		players = []models.Player{}
	}
	return players, nil
}
