package views

import (
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/derived"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/selection"
	"github.com/XavierBriggs/fortuna/services/player-explorer/pkg/models"
)

// DefaultHeatmapColumns are the table columns shown when none are requested
var DefaultHeatmapColumns = []string{
	models.FieldName, models.FieldAge, models.FieldSquad, models.FieldPosition,
	"MP", models.FieldGoals, "SoT", "PasTotCmp%", models.FieldAssists, derived.AbsAssists,
}

// Defaults matching the table the dashboard opens with
const (
	DefaultHeatmapLimit = 10
	DefaultSortColumn   = models.FieldGoals
)

// HeatmapOptions controls sorting, row count and color scale mode
type HeatmapOptions struct {
	Columns    []string
	SortColumn string
	Order      derived.Order
	Limit      int
	Clipped    bool
}

// HeatmapRow is one table row. Values holds every numeric column, derived
// metrics included, evaluated once for display and coloring.
type HeatmapRow struct {
	Name   string             `json:"name"`
	Locked bool               `json:"locked"`
	Player models.Player      `json:"player"`
	Values map[string]float64 `json:"values"`
}

// Heatmap is the data behind the colored stats table
type Heatmap struct {
	Columns    []string                  `json:"columns"`
	SortColumn string                    `json:"sort_column"`
	Order      derived.Order             `json:"order"`
	Clipped    bool                      `json:"clipped"`
	Domains    map[string]derived.Domain `json:"domains"`
	Rows       []HeatmapRow              `json:"rows"`
	Total      int                       `json:"total"`
}

// BuildHeatmap sorts the filtered view, keeps the top rows and pins every
// locked player above them. Color domains span the whole filtered view.
func BuildHeatmap(eval *derived.Evaluator, filtered, selected []models.Player, opts HeatmapOptions) Heatmap {
	if len(opts.Columns) == 0 {
		opts.Columns = DefaultHeatmapColumns
	}
	if opts.SortColumn == "" {
		opts.SortColumn = DefaultSortColumn
		if opts.Order == "" {
			opts.Order = derived.Descending
		}
	}
	if opts.Order == "" {
		opts.Order = derived.Ascending
	}
	if opts.Limit == 0 {
		opts.Limit = DefaultHeatmapLimit
	}

	sorted := eval.Sort(filtered, opts.SortColumn, opts.Order)

	locked := make(map[string]bool, len(selected))
	for _, p := range selected {
		locked[p.Name()] = true
	}
	rest := make([]models.Player, 0, len(sorted))
	for _, p := range sorted {
		if !locked[p.Name()] {
			rest = append(rest, p)
		}
	}

	rows := selection.PinToTop(selected, derived.Top(rest, opts.Limit))

	hm := Heatmap{
		Columns:    opts.Columns,
		SortColumn: opts.SortColumn,
		Order:      opts.Order,
		Clipped:    opts.Clipped,
		Domains:    eval.Domains(filtered, opts.Columns, opts.Clipped),
		Rows:       make([]HeatmapRow, 0, len(rows)),
		Total:      len(filtered),
	}

	for _, p := range rows {
		values := make(map[string]float64, len(opts.Columns))
		for _, col := range opts.Columns {
			if v, ok := eval.Value(p, col); ok {
				values[col] = v
			}
		}
		hm.Rows = append(hm.Rows, HeatmapRow{
			Name:   p.Name(),
			Locked: locked[p.Name()],
			Player: p,
			Values: values,
		})
	}

	return hm
}
