package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hayaneofficial/soccer-career-sim/internal/api"
	"github.com/hayaneofficial/soccer-career-sim/internal/engine"
	"github.com/hayaneofficial/soccer-career-sim/internal/intake"
	"github.com/hayaneofficial/soccer-career-sim/internal/roster"
	"github.com/hayaneofficial/soccer-career-sim/internal/session"
	"github.com/hayaneofficial/soccer-career-sim/internal/valuation"
)

func newNewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new career",
		Long: `Start a new career for one player.

Seed rosters are JSON files of known squad members; missing members are
generated. Without --attributes the content generator (or the built-in rule
book) proposes starting attributes from the background.

Examples:
  careersim new --name "Haruto Kiyota" --position CF --background "fast striker"
  careersim new --name "Ren Oda" --category Professional --seeds squad.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			name, _ := cmd.Flags().GetString("name")
			position, _ := cmd.Flags().GetString("position")
			age, _ := cmd.Flags().GetInt("age")
			category, _ := cmd.Flags().GetString("category")
			formation, _ := cmd.Flags().GetString("formation")
			background, _ := cmd.Flags().GetString("background")
			seed, _ := cmd.Flags().GetInt64("seed")
			seedsPath, _ := cmd.Flags().GetString("seeds")
			editedPath, _ := cmd.Flags().GetString("edited")
			attrsPath, _ := cmd.Flags().GetString("attributes")

			if category == "" {
				category = a.cfg.Simulation.Category
			}
			if formation == "" {
				formation = a.cfg.Simulation.Formation
			}
			req := session.CreateRequest{
				Name:       name,
				Position:   position,
				Age:        age,
				Category:   category,
				Formation:  formation,
				Background: background,
				Seed:       seed,
			}
			if req.Seeds, err = readSeeds(cmd, seedsPath); err != nil {
				return err
			}
			if req.Edited, err = readSeeds(cmd, editedPath); err != nil {
				return err
			}
			if attrsPath != "" {
				data, err := readInput(cmd, attrsPath)
				if err != nil {
					return err
				}
				if req.Attributes, _, err = intake.DecodeAttributes(data); err != nil {
					return fmt.Errorf("failed to read attributes: %w", err)
				}
			}

			view, err := a.sessions.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Career %s started\n\n", view.ID)
			printView(cmd.OutOrStdout(), view)
			return nil
		},
	}
	cmd.Flags().String("name", "", "Player name (required)")
	cmd.Flags().String("position", "CF", "Native position code")
	cmd.Flags().Int("age", 0, "Starting age (default depends on category)")
	cmd.Flags().String("category", "", "HighSchool, University, Youth or Professional")
	cmd.Flags().String("formation", "", "Team formation, e.g. 4-4-2")
	cmd.Flags().String("background", "", "Free-text background for attribute proposals")
	cmd.Flags().Int64("seed", 0, "Roster seed (0 uses the configured seed)")
	cmd.Flags().String("seeds", "", "JSON file of known squad members ('-' for stdin)")
	cmd.Flags().String("edited", "", "JSON file of edited squad members ('-' for stdin)")
	cmd.Flags().String("attributes", "", "JSON file of starting attributes ('-' for stdin)")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newActCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "act [plan...]",
		Short: "Play one day",
		Long: `Play one day of the career.

The plan is free text ("gym", "passing drills", "rest"). With --activity the
day is played from a ready activity record instead.

Examples:
  careersim act finishing drills after training
  careersim act --activity day.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDay(cmd, args, false)
		},
	}
	cmd.Flags().String("activity", "", "JSON activity record file ('-' for stdin)")
	return cmd
}

func newMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match [plan...]",
		Short: "Play a match day",
		Long: `Play a match day. Matches need HP above 60 and cost extra fatigue.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDay(cmd, args, true)
		},
	}
	cmd.Flags().String("activity", "", "JSON activity record file ('-' for stdin)")
	return cmd
}

func runDay(cmd *cobra.Command, args []string, match bool) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := a.careerID(cmd)
	if err != nil {
		return err
	}
	var raw []byte
	if path, _ := cmd.Flags().GetString("activity"); path != "" {
		if raw, err = readInput(cmd, path); err != nil {
			return err
		}
	}

	out, err := a.sessions.Act(cmd.Context(), id, strings.Join(args, " "), raw, match)
	if err != nil {
		return err
	}
	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		return writeJSON(cmd.OutOrStdout(), out)
	}
	printOutcome(cmd.OutOrStdout(), out)
	return nil
}

func newWeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week [plan...]",
		Short: "Repeat one plan for a whole week",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			id, err := a.careerID(cmd)
			if err != nil {
				return err
			}
			plan := strings.Join(args, " ")
			outcomes := make([]engine.Outcome, 0, engine.DaysPerWeek)
			for range engine.DaysPerWeek {
				out, err := a.sessions.Act(cmd.Context(), id, plan, nil, false)
				if err != nil {
					return err
				}
				outcomes = append(outcomes, out)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), outcomes)
			}
			for _, out := range outcomes {
				printOutcome(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the player and career state",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			id, err := a.careerID(cmd)
			if err != nil {
				return err
			}
			view, err := a.sessions.View(id)
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			printView(cmd.OutOrStdout(), view)
			return nil
		},
	}
}

func newRosterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roster",
		Short: "Show the squad in rank order",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			id, err := a.careerID(cmd)
			if err != nil {
				return err
			}
			view, err := a.sessions.Roster(id)
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			printRoster(cmd.OutOrStdout(), view)
			return nil
		},
	}
}

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show recent career events",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			id, err := a.careerID(cmd)
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")
			events, err := a.sessions.Events(id, max(limit, 1))
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				if events == nil {
					events = []engine.Event{}
				}
				return writeJSON(cmd.OutOrStdout(), events)
			}
			for _, e := range events {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  day %-4d %-9s %s\n", e.Date, e.Day, e.Category, e.Description)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "Number of events to show")
	return cmd
}

func newAptitudeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "aptitude POSITION POINTS",
		Short: "Spend aptitude points on a position",
		Long: `Spend position aptitude points (PAP). Each point adds 0.1 aptitude,
up to the maximum. The PAP budget is allocated once and never refills.

Examples:
  careersim aptitude LWG 20`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid points %q: %w", args[1], err)
			}
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			id, err := a.careerID(cmd)
			if err != nil {
				return err
			}
			used, err := a.sessions.SpendPAP(id, args[0], points)
			if err != nil {
				return err
			}
			view, err := a.sessions.View(id)
			if err != nil {
				return err
			}
			pos := strings.ToUpper(strings.TrimSpace(args[0]))

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"position":      pos,
					"used":          used,
					"aptitude":      view.Player.Aptitude[pos],
					"pap_remaining": view.Player.PAPRemaining,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Spent %.0f PAP on %s: aptitude %.1f, %.0f PAP left\n",
				used, pos, view.Player.Aptitude[pos], view.Player.PAPRemaining)
			return nil
		},
	}
}

func newValueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "value MARKET_VALUE",
		Short: "Estimate CA and PA from a market value",
		Long: `Estimate current and potential ability from a market value in yen.
Values may use separators or 万/億 suffixes.

Examples:
  careersim value 3億 --age 24 --position CB
  careersim value 45,000,000 --age 19`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			age, _ := cmd.Flags().GetInt("age")
			position, _ := cmd.Flags().GetString("position")

			value := intake.ParseInt64(args[0], -1)
			if value < 0 {
				return fmt.Errorf("invalid market value %q", args[0])
			}
			pos := valuation.Classify(position)
			ca, pa := valuation.EstimateFromValue(value, age, pos)
			back := valuation.MarketValue(ca, age, pos)

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"market_value": value,
					"age":          age,
					"position":     pos.String(),
					"ca":           ca,
					"pa":           pa,
					"estimate":     back,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, age %d): CA %.1f, PA %.1f\n",
				session.Money(value), pos, age, ca, pa)
			fmt.Fprintf(cmd.OutOrStdout(), "Value at that CA: %s\n", session.Money(back))
			if r, ok := valuation.RankFor(ca); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Team rank: %s (%s)\n", r.Code, r.League)
			}
			return nil
		},
	}
	cmd.Flags().Int("age", 22, "Player age")
	cmd.Flags().String("position", "MF", "Position code")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List careers",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.sessions.List()
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				if list == nil {
					return writeJSON(cmd.OutOrStdout(), []any{})
				}
				return writeJSON(cmd.OutOrStdout(), list)
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No careers yet.")
				return nil
			}
			for _, c := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-20s %-12s %-6s day %-4d CA %6.2f  %-8s %s\n",
					c.ID, c.Player, c.Category, c.Formation, c.Day, c.CA, c.Tier, humanize.Time(c.UpdatedAt))
			}
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a career",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.sessions.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted career %s\n", args[0])
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve careers over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			port, _ := cmd.Flags().GetInt("port")
			if port == 0 {
				port = a.cfg.API.Port
			}
			if a.cfg.API.AdminKey == "" {
				slog.Warn("CAREERSIM_ADMIN_KEY not set, career deletion over HTTP is disabled")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := &api.Server{
				Sessions:   a.sessions,
				Metrics:    api.NewMetrics(a.sessions.Active),
				Port:       port,
				AdminKey:   a.cfg.API.AdminKey,
				RateLimit:  a.cfg.API.RateLimit,
				RateWindow: a.cfg.API.RateWindow,
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API: http://localhost:%d/api/v1/status\n", port)
			return srv.Run(ctx)
		},
	}
	cmd.Flags().Int("port", 0, "Listen port (default from config)")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func readSeeds(cmd *cobra.Command, path string) ([]roster.Seed, error) {
	if path == "" {
		return nil, nil
	}
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	seeds, err := intake.DecodeSeeds(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read seeds from %s: %w", path, err)
	}
	return seeds, nil
}
