package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/derived"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/explorer"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/handlers"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/hub"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/selection"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/testutil"
	"github.com/XavierBriggs/fortuna/services/player-explorer/pkg/models"
)

type fixture struct {
	router  http.Handler
	manager *explorer.Manager
	loader  *testutil.MockLoader
	slot    *testutil.MockSlot
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	loader := &testutil.MockLoader{Players: testutil.MockSquad()}
	slot := testutil.NewMockSlot()
	m := explorer.NewManager(loader, derived.NewEvaluator(), selection.NewStore(slot), models.DefaultFilterConfig())
	if err := m.Load(context.Background(), "players.json", nil); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	h := handlers.NewHandler(context.Background(), m, hub.NewHub(), handlers.Options{
		Source:       "players.json",
		HeatmapLimit: 10,
	})

	return &fixture{
		router:  handlers.NewRouter(h, []string{"http://localhost:3000"}),
		manager: m,
		loader:  loader,
		slot:    slot,
	}
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

type playersResponse struct {
	Players []models.Player `json:"players"`
	Count   int             `json:"count"`
	Total   int             `json:"total"`
}

func TestHealthCheck(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, "GET", "/health", "")

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	decode(t, w, &response)
	if response["status"] != "healthy" {
		t.Errorf("expected status 'healthy', got %v", response["status"])
	}
	if response["players"].(float64) != 4 {
		t.Errorf("expected 4 players, got %v", response["players"])
	}
}

func TestMetrics(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, "GET", "/metrics", "")

	var response map[string]map[string]interface{}
	decode(t, w, &response)
	if response["explorer"]["players_total"].(float64) != 4 {
		t.Errorf("players_total = %v", response["explorer"]["players_total"])
	}
	if _, ok := response["hub"]["active_clients"]; !ok {
		t.Error("expected hub metrics")
	}
}

func TestGetPlayers(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, "GET", "/api/v1/players", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var response playersResponse
	decode(t, w, &response)
	if response.Count != 4 || response.Total != 4 {
		t.Errorf("count = %d, total = %d", response.Count, response.Total)
	}
}

func TestUpdateFilters(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "PATCH", "/api/v1/filters", `{"ageRange":{"min":18,"max":25},"leagues":["Premier League"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response struct {
		Filters models.FilterConfig `json:"filters"`
		Count   int                 `json:"count"`
	}
	decode(t, w, &response)
	if response.Count != 2 {
		t.Errorf("count = %d, want 2", response.Count)
	}
	if response.Filters.AgeRange.Max != 25 {
		t.Errorf("filters = %+v", response.Filters)
	}

	w = f.do(t, "GET", "/api/v1/filters", "")
	var cfg models.FilterConfig
	decode(t, w, &cfg)
	if !reflect.DeepEqual(cfg.Leagues, []string{"Premier League"}) {
		t.Errorf("leagues = %v", cfg.Leagues)
	}
}

func TestUpdateFilters_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"ageRange":`},
		{"unknown category", `{"positionCategory":"striker"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			w := f.do(t, "PATCH", "/api/v1/filters", tt.body)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", w.Code)
			}
			var errResp models.ErrorResponse
			decode(t, w, &errResp)
			if errResp.Code != http.StatusBadRequest {
				t.Errorf("error code = %d", errResp.Code)
			}
		})
	}
}

func TestToggleSelection(t *testing.T) {
	f := newFixture(t)

	// Bravo is filtered out first; locking still works
	f.do(t, "PATCH", "/api/v1/filters", `{"leagues":["Premier League"]}`)

	w := f.do(t, "POST", "/api/v1/selection/toggle", `{"name":"Bravo"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	decode(t, w, &response)
	if response["locked"] != true || response["persisted"] != true {
		t.Errorf("response = %v", response)
	}

	w = f.do(t, "GET", "/api/v1/players?pinned=true", "")
	var pinned playersResponse
	decode(t, w, &pinned)
	if got := models.Names(pinned.Players); !reflect.DeepEqual(got, []string{"Bravo", "Alpha", "Carlos"}) {
		t.Errorf("pinned = %v", got)
	}

	w = f.do(t, "GET", "/api/v1/selection/persisted", "")
	var persisted playersResponse
	decode(t, w, &persisted)
	if got := models.Names(persisted.Players); !reflect.DeepEqual(got, []string{"Bravo"}) {
		t.Errorf("persisted = %v", got)
	}
}

func TestToggleSelection_Errors(t *testing.T) {
	f := newFixture(t)

	if w := f.do(t, "POST", "/api/v1/selection/toggle", `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing name: expected 400, got %d", w.Code)
	}
	if w := f.do(t, "POST", "/api/v1/selection/toggle", `{"name":"Nobody"}`); w.Code != http.StatusNotFound {
		t.Errorf("unknown player: expected 404, got %d", w.Code)
	}
}

func TestToggleSelection_PersistFailure(t *testing.T) {
	f := newFixture(t)
	f.slot.FailSave(true)

	w := f.do(t, "POST", "/api/v1/selection/toggle", `{"name":"Alpha"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	decode(t, w, &response)
	if response["locked"] != true || response["persisted"] != false {
		t.Errorf("response = %v", response)
	}
}

func TestClearSelection(t *testing.T) {
	f := newFixture(t)
	f.do(t, "POST", "/api/v1/selection/toggle", `{"name":"Alpha"}`)

	if w := f.do(t, "DELETE", "/api/v1/selection", ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}

	w := f.do(t, "GET", "/api/v1/selection", "")
	var response playersResponse
	decode(t, w, &response)
	if response.Count != 0 {
		t.Errorf("selection count = %d after clear", response.Count)
	}
}

func TestGetLeagues(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, "GET", "/api/v1/leagues", "")

	var response struct {
		Leagues []string `json:"leagues"`
	}
	decode(t, w, &response)
	if !reflect.DeepEqual(response.Leagues, []string{"La Liga", "Premier League", "Serie A"}) {
		t.Errorf("leagues = %v", response.Leagues)
	}
}

func TestGetDerivedMetric(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "GET", "/api/v1/derived/abs_assists?player=Alpha", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var response map[string]interface{}
	decode(t, w, &response)
	if response["value"].(float64) != 4 {
		t.Errorf("value = %v, want 4", response["value"])
	}

	if w := f.do(t, "GET", "/api/v1/derived/xg?player=Alpha", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown metric: expected 404, got %d", w.Code)
	}
	if w := f.do(t, "GET", "/api/v1/derived/abs_goals?player=Nobody", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown player: expected 404, got %d", w.Code)
	}

	w = f.do(t, "GET", "/api/v1/derived", "")
	var list struct {
		Metrics []string `json:"metrics"`
	}
	decode(t, w, &list)
	if !reflect.DeepEqual(list.Metrics, []string{"abs_assists", "abs_goals"}) {
		t.Errorf("metrics = %v", list.Metrics)
	}
}

func TestGetHeatmap(t *testing.T) {
	f := newFixture(t)
	f.do(t, "POST", "/api/v1/selection/toggle", `{"name":"Delta"}`)

	w := f.do(t, "GET", "/api/v1/views/heatmap?sort=Age&order=asc&limit=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var response struct {
		Rows []struct {
			Name   string `json:"name"`
			Locked bool   `json:"locked"`
		} `json:"rows"`
		Total int `json:"total"`
	}
	decode(t, w, &response)

	var names []string
	for _, r := range response.Rows {
		names = append(names, r.Name)
	}
	if !reflect.DeepEqual(names, []string{"Delta", "Carlos", "Alpha"}) {
		t.Errorf("rows = %v", names)
	}
	if !response.Rows[0].Locked {
		t.Error("expected Delta to be locked")
	}

	if w := f.do(t, "GET", "/api/v1/views/heatmap?order=up", ""); w.Code != http.StatusBadRequest {
		t.Errorf("invalid order: expected 400, got %d", w.Code)
	}
}

func TestGetScatter(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "GET", "/api/v1/views/scatter?x=Age&y=Min&minX=20", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var response struct {
		Points []struct {
			Name string `json:"name"`
		} `json:"points"`
	}
	decode(t, w, &response)
	if len(response.Points) != 3 {
		t.Errorf("points = %v, want 3 players aged 20+", response.Points)
	}
}

func TestGetRadar(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "GET", "/api/v1/views/radar?group=striker&players=Alpha,Carlos", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response struct {
		Group   string `json:"group"`
		Players []struct {
			Name   string    `json:"name"`
			Values []float64 `json:"values"`
		} `json:"players"`
	}
	decode(t, w, &response)
	if response.Group != "striker" || len(response.Players) != 2 {
		t.Fatalf("response = %+v", response)
	}
	// Goals: Carlos 0.8 is the max, Alpha 0.5
	if response.Players[1].Values[0] != 100 {
		t.Errorf("Carlos goals = %v, want 100", response.Players[1].Values[0])
	}

	if w := f.do(t, "GET", "/api/v1/views/radar?group=winger", ""); w.Code != http.StatusBadRequest {
		t.Errorf("unknown group: expected 400, got %d", w.Code)
	}
	if w := f.do(t, "GET", "/api/v1/views/radar?players=Nobody", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown player: expected 404, got %d", w.Code)
	}
}

func TestReloadDataset(t *testing.T) {
	f := newFixture(t)

	f.loader.Players = testutil.MockSquad()[:2]
	if w := f.do(t, "POST", "/api/v1/dataset/reload", ""); w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if n := len(f.manager.Full()); n != 2 {
		t.Errorf("players = %d after reload, want 2", n)
	}

	f.loader.Err = errors.New("upstream down")
	if w := f.do(t, "POST", "/api/v1/dataset/reload", ""); w.Code != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", w.Code)
	}
	if n := len(f.manager.Full()); n != 2 {
		t.Errorf("failed reload replaced the dataset: %d players", n)
	}
}
