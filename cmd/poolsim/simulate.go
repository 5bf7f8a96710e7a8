package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/playmatatu/poolsim/internal/config"
	"github.com/playmatatu/poolsim/internal/database"
	"github.com/playmatatu/poolsim/internal/game"
	"github.com/playmatatu/poolsim/internal/journal"
	"github.com/playmatatu/poolsim/internal/migrations"
)

type script struct {
	Shots []game.Shot `yaml:"shots"`
}

func newSimulateCommand() *cobra.Command {
	var (
		shotsFlag  string
		scriptPath string
		maxTicks   int
		dbURL      string
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "play a scripted list of shots to rest and print each turn result",
		Example: `  poolsim simulate --shots "3.1416:0.05,0.2:0.03"
  poolsim simulate --script break.yaml --db sqlite3://poolsim.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			physics, err := config.LoadPhysics(physicsPath)
			if err != nil {
				return err
			}

			var shots []game.Shot
			switch {
			case scriptPath != "":
				shots, err = loadScript(scriptPath)
			case shotsFlag != "":
				shots, err = parseShots(shotsFlag)
			default:
				err = errors.New("one of --shots or --script is required")
			}
			if err != nil {
				return err
			}

			var observers []game.Observer
			if dbURL != "" {
				db, err := database.Connect(dbURL)
				if err != nil {
					return fmt.Errorf("connect journal: %w", err)
				}
				defer db.Close()
				if err := migrations.Run(db); err != nil {
					return err
				}
				observers = append(observers, journal.New(db))
			}

			m := game.NewMatch(fmt.Sprintf("sim-%d", time.Now().Unix()), physics)
			results, err := simulate(cmd.Context(), m, shots, maxTicks, observers...)
			if writeErr := writeResults(cmd.OutOrStdout(), outputFormat, m.ID, results); writeErr != nil {
				return writeErr
			}
			return err
		},
	}

	cmd.Flags().StringVar(&shotsFlag, "shots", "", "comma separated angle:power pairs")
	cmd.Flags().StringVar(&scriptPath, "script", "", "yaml file with a shots list")
	cmd.Flags().IntVar(&maxTicks, "max-ticks", 50000, "tick limit per shot")
	cmd.Flags().StringVar(&dbURL, "db", "", "record the run in a match journal (postgres:// or sqlite3://)")
	return cmd
}

// simulate plays shots in order until they run out or the game ends.
func simulate(ctx context.Context, m *game.Match, shots []game.Shot, maxTicks int, observers ...game.Observer) ([]*game.ShotResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	notify := func(evs []game.Event) {
		for _, ev := range evs {
			for _, o := range observers {
				o.OnEvent(ctx, ev)
			}
		}
	}
	notify([]game.Event{{Type: game.EventReset, MatchID: m.ID, Rack: m.Rack, Player: m.CurrentPlayer, Message: m.Message, Time: time.Now()}})

	var results []*game.ShotResult
	for i, s := range shots {
		if m.GameOver {
			break
		}
		res, evs, err := game.PlayShot(m, s, maxTicks)
		notify(evs)
		if err != nil {
			return results, fmt.Errorf("shot %d: %w", i+1, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func parseShots(s string) ([]game.Shot, error) {
	var shots []game.Shot
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.Split(pair, ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid shot %q: want angle:power", pair)
		}
		angle, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid angle in %q: %w", pair, err)
		}
		power, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid power in %q: %w", pair, err)
		}
		shots = append(shots, game.Shot{Angle: angle, Power: power})
	}
	if len(shots) == 0 {
		return nil, errors.New("no shots given")
	}
	return shots, nil
}

func loadScript(path string) ([]game.Shot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc script
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(sc.Shots) == 0 {
		return nil, fmt.Errorf("%s has no shots", path)
	}
	return sc.Shots, nil
}

func writeResults(w io.Writer, format, matchID string, results []*game.ShotResult) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{"match_id": matchID, "results": results})
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SHOT\tPLAYER\tPOCKETED\tFOUL\tSCORES\tMESSAGE")
	for _, r := range results {
		foul := "-"
		if r.Foul != nil {
			foul = r.Foul.Type
		}
		fmt.Fprintf(tw, "%d\t%d\t%v\t%s\t%d-%d\t%s\n", r.ShotNumber, r.Player, r.PocketedBalls, foul, r.Scores[0], r.Scores[1], r.Message)
	}
	return tw.Flush()
}
