package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/dataset"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/derived"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/explorer"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/selection"
	"github.com/XavierBriggs/fortuna/services/player-explorer/pkg/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [source]",
	Short: "Load a dataset, apply filters and list the matching players",
	Long: `Inspect loads a dataset (the configured source unless one is given),
applies the configured filters plus any filter flags and prints the names
of the players that pass.

Examples:
  player-explorer inspect
  player-explorer inspect stats.json --position attacking --min-age 20 --max-age 23
  player-explorer inspect --league "La Liga" --league "Serie A" --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

var (
	inspectLeagues    []string
	inspectSearch     string
	inspectPosition   string
	inspectMinAge     float64
	inspectMaxAge     float64
	inspectMinMinutes float64
	inspectFormat     string
)

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringSliceVar(&inspectLeagues, "league", nil, "Restrict to league (repeatable)")
	inspectCmd.Flags().StringVar(&inspectSearch, "search", "", "Case-insensitive name substring")
	inspectCmd.Flags().StringVar(&inspectPosition, "position", "", "Position category: all|defensive|midfield|keeper|attacking")
	inspectCmd.Flags().Float64Var(&inspectMinAge, "min-age", 0, "Minimum age (inclusive)")
	inspectCmd.Flags().Float64Var(&inspectMaxAge, "max-age", 0, "Maximum age (inclusive)")
	inspectCmd.Flags().Float64Var(&inspectMinMinutes, "min-minutes", 0, "Minimum minutes played")
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "yaml", "Output format: yaml|json")
}

// InspectOutput is what inspect prints
type InspectOutput struct {
	Source  string              `json:"source" yaml:"source"`
	Total   int                 `json:"total" yaml:"total"`
	Count   int                 `json:"count" yaml:"count"`
	Filters models.FilterConfig `json:"filters" yaml:"-"`
	Players []string            `json:"players" yaml:"players"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	source := cfg.Dataset.Source
	if len(args) == 1 {
		source = args[0]
	}

	transforms, err := dataset.ParseTransforms(cfg.Dataset.Transforms)
	if err != nil {
		return err
	}

	manager := explorer.NewManager(
		dataset.NewLoader(cfg.Dataset.Table),
		derived.NewEvaluator(),
		selection.NewStore(selection.NewMemorySlot()),
		cfg.Filters,
	)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, 60*time.Second)
	defer cancel()

	if err := manager.Load(ctx, source, transforms); err != nil {
		return err
	}

	if update := inspectUpdate(cmd, manager.Filters()); !update.Empty() {
		if err := manager.UpdateFilters(update); err != nil {
			return err
		}
	}

	filtered := manager.Filtered()
	out := InspectOutput{
		Source:  source,
		Total:   len(manager.Full()),
		Count:   len(filtered),
		Filters: manager.Filters(),
		Players: models.Names(filtered),
	}

	w := cmd.OutOrStdout()
	switch inspectFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(out)
	default:
		return fmt.Errorf("unknown format %q (want yaml or json)", inspectFormat)
	}
}

// inspectUpdate builds a filter update from the flags that were set
func inspectUpdate(cmd *cobra.Command, current models.FilterConfig) models.FilterUpdate {
	var u models.FilterUpdate
	flags := cmd.Flags()

	if flags.Changed("min-age") || flags.Changed("max-age") {
		ar := current.AgeRange
		if flags.Changed("min-age") {
			ar.Min = inspectMinAge
		}
		if flags.Changed("max-age") {
			ar.Max = inspectMaxAge
		}
		u.AgeRange = &ar
	}
	if flags.Changed("league") {
		leagues := inspectLeagues
		u.Leagues = &leagues
	}
	if flags.Changed("search") {
		u.SearchTerm = &inspectSearch
	}
	if flags.Changed("position") {
		u.PositionCategory = &inspectPosition
	}
	if flags.Changed("min-minutes") {
		u.MinMinutes = &inspectMinMinutes
	}
	return u
}
