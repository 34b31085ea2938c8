package dataset

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/XavierBriggs/fortuna/services/player-explorer/pkg/models"
	"github.com/lib/pq"
)

// ErrUnsupportedSource is returned for a source scheme the loader cannot fetch
var ErrUnsupportedSource = errors.New("unsupported dataset source")

// DefaultTable is the Postgres table read for postgres:// sources
const DefaultTable = "player_stats"

// Loader fetches and prepares the player dataset from a file, an HTTP(S)
// endpoint or a Postgres table. A call makes a single attempt.
type Loader struct {
	httpClient *http.Client
	userAgent  string
	table      string
}

// NewLoader creates a loader reading postgres:// sources from table
func NewLoader(table string) *Loader {
	if table == "" {
		table = DefaultTable
	}
	return &Loader{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: "player-explorer/1.0",
		table:     table,
	}
}

// Load fetches source, applies transforms and derives each player's category
func (l *Loader) Load(ctx context.Context, source string, transforms Transforms) ([]models.Player, error) {
	raw, err := l.fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	return Prepare(raw, transforms), nil
}

// Prepare copies every raw record, applies the transform for each field the
// record carries, and attaches the position category.
func Prepare(raw []map[string]interface{}, transforms Transforms) []models.Player {
	players := make([]models.Player, 0, len(raw))
	for _, rec := range raw {
		p := make(models.Player, len(rec)+1)
		for k, v := range rec {
			p[k] = v
		}

		for field, fn := range transforms {
			if v, ok := rec[field]; ok {
				p[field] = fn(v)
			}
		}

		pos, _ := rec[models.FieldPosition].(string)
		p[models.FieldCategory] = string(models.CategoryFromPosition(pos))
		players = append(players, p)
	}
	return players
}

func (l *Loader) fetch(ctx context.Context, source string) ([]map[string]interface{}, error) {
	u, err := url.Parse(source)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// bare paths, including Windows drive letters
		return l.fetchFile(source)
	}

	switch u.Scheme {
	case "file":
		return l.fetchFile(u.Path)
	case "http", "https":
		return l.fetchHTTP(ctx, source, u.Path)
	case "postgres", "postgresql":
		return l.fetchPostgres(ctx, source)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, u.Scheme)
	}
}

func (l *Loader) fetchFile(p string) ([]map[string]interface{}, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	return decode(data, p)
}

func (l *Loader) fetchHTTP(ctx context.Context, source, p string) ([]map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("dataset fetch error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "text/csv") {
		p += ".csv"
	}
	return decode(data, p)
}

// fetchPostgres reads every row of the configured table as one JSON object
func (l *Loader) fetchPostgres(ctx context.Context, dsn string) ([]map[string]interface{}, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	query := fmt.Sprintf(`SELECT row_to_json(t)::text FROM %s t`, quoteTable(l.table))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", l.table, err)
	}
	defer rows.Close()

	records := make([]map[string]interface{}, 0)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		var rec map[string]interface{}
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("decoding row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}

// quoteTable quotes a possibly schema-qualified table name
func quoteTable(table string) string {
	parts := strings.Split(table, ".")
	for i, part := range parts {
		parts[i] = pq.QuoteIdentifier(part)
	}
	return strings.Join(parts, ".")
}

func decode(data []byte, name string) ([]map[string]interface{}, error) {
	if strings.EqualFold(path.Ext(name), ".csv") {
		return DecodeCSV(data)
	}

	var records []map[string]interface{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding dataset: %w", err)
	}
	if records == nil {
		records = []map[string]interface{}{}
	}
	return records, nil
}
