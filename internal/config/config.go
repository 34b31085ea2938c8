package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/views"
	"github.com/XavierBriggs/fortuna/services/player-explorer/pkg/models"
	"gopkg.in/yaml.v3"
)

// Selection store kinds
const (
	SelectionStoreRedis  = "redis"
	SelectionStoreSQLite = "sqlite"
	SelectionStoreMemory = "memory"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// DatasetConfig describes where the player dataset comes from
type DatasetConfig struct {
	// File path, http(s) URL or postgres DSN
	Source string `yaml:"source"`

	// Table read for postgres sources
	Table string `yaml:"table"`

	// Field -> transform name (int, float, string, trim, lower)
	Transforms map[string]string `yaml:"transforms"`
}

// SelectionConfig describes the durable selection slot
type SelectionConfig struct {
	Store      string `yaml:"store"`
	Key        string `yaml:"key"`
	SQLitePath string `yaml:"sqlite_path"`
}

// ViewConfig holds defaults for the derived views
type ViewConfig struct {
	HeatmapLimit   int                 `yaml:"heatmap_limit"`
	ClippedDomains bool                `yaml:"clipped_domains"`
	RadarGroups    map[string][]string `yaml:"radar_groups"`
}

// Config holds all application configuration
type Config struct {
	Server    ServerConfig        `yaml:"server"`
	Redis     RedisConfig         `yaml:"redis"`
	Dataset   DatasetConfig       `yaml:"dataset"`
	Selection SelectionConfig     `yaml:"selection"`
	Views     ViewConfig          `yaml:"views"`
	Filters   models.FilterConfig `yaml:"-"`
}

// fileFilters is the YAML shape of the initial filter configuration
type fileFilters struct {
	MinAge           *float64 `yaml:"min_age"`
	MaxAge           *float64 `yaml:"max_age"`
	Leagues          []string `yaml:"leagues"`
	SearchTerm       *string  `yaml:"search_term"`
	PositionCategory *string  `yaml:"position_category"`
	MinMinutes       *float64 `yaml:"min_minutes"`
}

// Load reads configuration from the environment and, when DASHBOARD_CONFIG
// names a file, overlays it
func Load() (*Config, error) {
	cfg := LoadConfig()
	if path := os.Getenv("DASHBOARD_CONFIG"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        getEnv("SERVER_ADDR", ":8080"),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6380"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Dataset: DatasetConfig{
			Source:     getEnv("DATASET_SOURCE", "data/2022-2023_Football_Player_Stats.json"),
			Table:      getEnv("DATASET_TABLE", "player_stats"),
			Transforms: parseTransformList(getEnv("COLUMN_TRANSFORMS", "Age:int")),
		},
		Selection: SelectionConfig{
			Store:      getEnv("SELECTION_STORE", SelectionStoreRedis),
			Key:        getEnv("SELECTION_KEY", "selectedPlayers"),
			SQLitePath: getEnv("SELECTION_SQLITE_PATH", "player_explorer.db"),
		},
		Views: ViewConfig{
			HeatmapLimit:   getEnvInt("HEATMAP_LIMIT", views.DefaultHeatmapLimit),
			ClippedDomains: getEnvBool("CLIPPED_DOMAINS", false),
			RadarGroups:    copyGroups(views.DefaultRadarGroups),
		},
		Filters: models.DefaultFilterConfig(),
	}
}

// LoadFile overlays the YAML file at path. Keys absent from the file keep
// their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var doc struct {
		Config  `yaml:",inline"`
		Filters *fileFilters `yaml:"filters"`
	}
	doc.Config = *c
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	filters := c.Filters
	*c = doc.Config
	c.Filters = filters

	if f := doc.Filters; f != nil {
		if f.MinAge != nil {
			c.Filters.AgeRange.Min = *f.MinAge
		}
		if f.MaxAge != nil {
			c.Filters.AgeRange.Max = *f.MaxAge
		}
		if f.Leagues != nil {
			c.Filters.Leagues = f.Leagues
		}
		if f.SearchTerm != nil {
			c.Filters.SearchTerm = *f.SearchTerm
		}
		if f.PositionCategory != nil {
			c.Filters.PositionCategory = *f.PositionCategory
		}
		if f.MinMinutes != nil {
			c.Filters.MinMinutes = *f.MinMinutes
		}
	}

	return nil
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	switch c.Selection.Store {
	case SelectionStoreRedis, SelectionStoreSQLite, SelectionStoreMemory:
	default:
		return fmt.Errorf("invalid selection store %q (want redis, sqlite or memory)", c.Selection.Store)
	}
	if !models.ValidPositionCategory(c.Filters.PositionCategory) {
		return fmt.Errorf("invalid position category %q", c.Filters.PositionCategory)
	}
	if c.Dataset.Source == "" {
		return fmt.Errorf("dataset source is required")
	}
	return nil
}

// parseTransformList parses "Age:int,Min:float"
func parseTransformList(raw string) map[string]string {
	out := make(map[string]string)
	for _, item := range splitList(raw) {
		field, name, ok := strings.Cut(item, ":")
		if !ok {
			continue
		}
		field = strings.TrimSpace(field)
		name = strings.TrimSpace(name)
		if field != "" && name != "" {
			out[field] = name
		}
	}
	return out
}

// splitList splits a comma-separated value, dropping blanks
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func copyGroups(groups map[string][]string) map[string][]string {
	out := make(map[string][]string, len(groups))
	for k, v := range groups {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}
