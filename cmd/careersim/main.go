// Command careersim runs a soccer career from the terminal or serves it over HTTP.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hayaneofficial/soccer-career-sim/internal/config"
	"github.com/hayaneofficial/soccer-career-sim/internal/entropy"
	"github.com/hayaneofficial/soccer-career-sim/internal/llm"
	"github.com/hayaneofficial/soccer-career-sim/internal/logging"
	"github.com/hayaneofficial/soccer-career-sim/internal/persistence"
	"github.com/hayaneofficial/soccer-career-sim/internal/session"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "careersim",
		Short: "Soccer career simulator",
		Long: `careersim follows one player through a squad, day by day.

Each day is an activity (training, rest, a match) that costs HP and MP and
grows attributes. The squad around the player is generated from seed
rosters and reranked every day by current ability.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.careersim/config.yaml)")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("career", "", "Career ID (default: most recently played)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newNewCmd(),
		newActCmd(),
		newMatchCmd(),
		newWeekCmd(),
		newShowCmd(),
		newRosterCmd(),
		newEventsCmd(),
		newAptitudeCmd(),
		newValueCmd(),
		newListCmd(),
		newDeleteCmd(),
		newServeCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				writeJSON(cmd.OutOrStdout(), map[string]string{"version": version})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "careersim version %s\n", version)
			}
		},
	}
}

// app is the wiring shared by every command that touches careers.
type app struct {
	cfg      *config.Config
	db       *persistence.DB
	sessions *session.Manager
}

// openApp loads config, sets up logging and opens the career store.
func openApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	slog.SetDefault(logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr()))

	if dir := filepath.Dir(cfg.Storage.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := persistence.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open career store: %w", err)
	}
	slog.Debug("career store opened", "path", cfg.Storage.Path)

	client := llm.NewClient(llm.Options{
		APIKey:       cfg.LLMKey(),
		Model:        cfg.LLM.Model,
		Timeout:      cfg.LLM.Timeout,
		MaxPerMinute: cfg.LLM.MaxPerMinute,
	})
	if !client.Enabled() {
		slog.Debug("content generator disabled, using rule book")
	}

	return &app{
		cfg: cfg,
		db:  db,
		sessions: &session.Manager{
			DB:      db,
			Author:  llm.NewAuthor(client),
			Entropy: entropy.NewClient(cfg.Entropy.RandomOrgKey),
			Seed:    cfg.Simulation.Seed,
		},
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// careerID resolves --career, falling back to the most recently played career.
func (a *app) careerID(cmd *cobra.Command) (string, error) {
	if id, _ := cmd.Flags().GetString("career"); id != "" {
		return id, nil
	}
	list, err := a.db.ListCareers()
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", fmt.Errorf("no careers yet; start one with 'careersim new'")
	}
	return list[0].ID, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
