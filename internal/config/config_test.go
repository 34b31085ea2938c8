package config_test

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/config"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/views"
	"github.com/XavierBriggs/fortuna/services/player-explorer/pkg/models"
)

var envKeys = []string{
	"SERVER_ADDR", "CORS_ORIGINS", "REDIS_URL", "REDIS_PASSWORD", "DATASET_SOURCE",
	"DATASET_TABLE", "COLUMN_TRANSFORMS", "SELECTION_STORE", "SELECTION_KEY",
	"SELECTION_SQLITE_PATH", "HEATMAP_LIMIT", "CLIPPED_DOMAINS", "DASHBOARD_CONFIG",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := config.LoadConfig()

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Expected default server addr ':8080', got '%s'", cfg.Server.Addr)
	}
	if len(cfg.Server.CORSOrigins) != 2 {
		t.Errorf("Expected 2 default CORS origins, got %v", cfg.Server.CORSOrigins)
	}
	if cfg.Redis.URL != "redis://localhost:6380" {
		t.Errorf("Expected default redis URL, got '%s'", cfg.Redis.URL)
	}
	if cfg.Dataset.Table != "player_stats" {
		t.Errorf("Expected default table 'player_stats', got '%s'", cfg.Dataset.Table)
	}
	if !reflect.DeepEqual(cfg.Dataset.Transforms, map[string]string{"Age": "int"}) {
		t.Errorf("Expected Age:int transform, got %v", cfg.Dataset.Transforms)
	}
	if cfg.Selection.Store != config.SelectionStoreRedis {
		t.Errorf("Expected redis selection store, got '%s'", cfg.Selection.Store)
	}
	if cfg.Selection.Key != "selectedPlayers" {
		t.Errorf("Expected key 'selectedPlayers', got '%s'", cfg.Selection.Key)
	}
	if cfg.Views.HeatmapLimit != views.DefaultHeatmapLimit {
		t.Errorf("Expected heatmap limit %d, got %d", views.DefaultHeatmapLimit, cfg.Views.HeatmapLimit)
	}
	if cfg.Views.ClippedDomains {
		t.Error("Expected clipped domains off by default")
	}
	if !cfg.Filters.AgeRange.Unbounded() || cfg.Filters.PositionCategory != models.PositionAll {
		t.Errorf("Expected pass-everything filters, got %+v", cfg.Filters)
	}
}

func TestLoadConfig_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("CORS_ORIGINS", "https://stats.example.com, ,https://admin.example.com")
	t.Setenv("COLUMN_TRANSFORMS", "Age:int, Squad:trim,broken")
	t.Setenv("SELECTION_STORE", "sqlite")
	t.Setenv("HEATMAP_LIMIT", "25")
	t.Setenv("CLIPPED_DOMAINS", "true")

	cfg := config.LoadConfig()

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Expected server addr ':9090', got '%s'", cfg.Server.Addr)
	}
	want := []string{"https://stats.example.com", "https://admin.example.com"}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, want) {
		t.Errorf("Expected origins %v, got %v", want, cfg.Server.CORSOrigins)
	}
	if !reflect.DeepEqual(cfg.Dataset.Transforms, map[string]string{"Age": "int", "Squad": "trim"}) {
		t.Errorf("Unexpected transforms %v", cfg.Dataset.Transforms)
	}
	if cfg.Selection.Store != config.SelectionStoreSQLite {
		t.Errorf("Expected sqlite store, got '%s'", cfg.Selection.Store)
	}
	if cfg.Views.HeatmapLimit != 25 || !cfg.Views.ClippedDomains {
		t.Errorf("Unexpected view config %+v", cfg.Views)
	}
}

func TestLoadConfig_InvalidNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("HEATMAP_LIMIT", "many")
	t.Setenv("CLIPPED_DOMAINS", "sometimes")

	cfg := config.LoadConfig()

	if cfg.Views.HeatmapLimit != views.DefaultHeatmapLimit || cfg.Views.ClippedDomains {
		t.Errorf("Expected defaults, got %+v", cfg.Views)
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
dataset:
  source: https://data.example.com/players.json
  transforms:
    Age: int
    Min: float
selection:
  store: memory
views:
  heatmap_limit: 15
  radar_groups:
    winger: [Crs, Dri, SCA]
filters:
  min_age: 18
  leagues: [Premier League]
  position_category: attacking
  min_minutes: 600
`)

	cfg := config.LoadConfig()
	if err := cfg.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	if cfg.Dataset.Source != "https://data.example.com/players.json" {
		t.Errorf("source = %s", cfg.Dataset.Source)
	}
	if cfg.Dataset.Table != "player_stats" {
		t.Errorf("table should keep its env value, got %s", cfg.Dataset.Table)
	}
	if cfg.Dataset.Transforms["Min"] != "float" {
		t.Errorf("transforms = %v", cfg.Dataset.Transforms)
	}
	if cfg.Selection.Store != config.SelectionStoreMemory || cfg.Selection.Key != "selectedPlayers" {
		t.Errorf("selection = %+v", cfg.Selection)
	}
	if cfg.Views.HeatmapLimit != 15 {
		t.Errorf("heatmap limit = %d", cfg.Views.HeatmapLimit)
	}
	if _, ok := cfg.Views.RadarGroups["winger"]; !ok {
		t.Errorf("radar groups = %v", cfg.Views.RadarGroups)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("server addr should keep its default, got %s", cfg.Server.Addr)
	}

	f := cfg.Filters
	if f.AgeRange.Min != 18 || !math.IsInf(f.AgeRange.Max, 1) {
		t.Errorf("age range = %+v", f.AgeRange)
	}
	if !reflect.DeepEqual(f.Leagues, []string{"Premier League"}) {
		t.Errorf("leagues = %v", f.Leagues)
	}
	if f.PositionCategory != "attacking" || f.MinMinutes != 600 {
		t.Errorf("filters = %+v", f)
	}
}

func TestLoad_FromEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("DASHBOARD_CONFIG", writeFile(t, "selection:\n  store: memory\n"))

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Selection.Store != config.SelectionStoreMemory {
		t.Errorf("store = %s", cfg.Selection.Store)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	clearEnv(t)
	cfg := config.LoadConfig()

	if err := cfg.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if err := cfg.LoadFile(writeFile(t, "dataset: [not, a, map]\n")); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *config.Config) {}, false},
		{"unknown store", func(c *config.Config) { c.Selection.Store = "s3" }, true},
		{"unknown category", func(c *config.Config) { c.Filters.PositionCategory = "winger" }, true},
		{"missing source", func(c *config.Config) { c.Dataset.Source = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg := config.LoadConfig()
			tt.mutate(cfg)

			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
