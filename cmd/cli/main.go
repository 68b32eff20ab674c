package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/jordanelias/camplan/internal/config"
	"github.com/jordanelias/camplan/pkg/clients/sheetsclient"
	"github.com/jordanelias/camplan/pkg/core/model"
	"github.com/jordanelias/camplan/pkg/core/services"
	"github.com/jordanelias/camplan/pkg/db"
	"github.com/jordanelias/camplan/pkg/utils/logging"
)

const dateFormat = "2006-01-02"

// App holds the application dependencies
type App struct {
	cfg      *config.Config
	catalog  *config.CatalogFile
	database *db.DB
	logger   *zap.Logger
	ctx      context.Context

	// sheetsClient is created lazily: only publish needs the OAuth flow.
	sheetsClient *sheetsclient.Client
}

var (
	env string
	app *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "camplan",
		Short: "Camplan CLI - Generate daily camp activity schedules",
		Long:  `A CLI tool for generating, validating and publishing daily camp activity schedules with rotation fairness.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.logger != nil {
				app.logger.Sync()
			}
			if app != nil && app.database != nil {
				app.database.Close()
			}
		},
	}

	// Add persistent environment flag
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	// Add all commands
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(publishCmd())
	rootCmd.AddCommand(settingsCmd())
	rootCmd.AddCommand(interactiveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, catalog, and database
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	app.logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Info("Starting application", zap.String("environment", env))

	app.logger.Info("Loading configuration")
	app.cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.logger.Debug("Configuration loaded successfully")

	app.logger.Info("Loading catalog", zap.String("path", app.cfg.CatalogPath))
	app.catalog, err = config.LoadCatalog(app.cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	app.logger.Debug("Catalog loaded successfully",
		zap.Int("activities", len(app.catalog.Activities)),
		zap.Int("divisions", len(app.catalog.Divisions)))

	app.logger.Info("Connecting to database")
	app.database, err = db.NewDB(app.ctx, app.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.logger.Info("Database initialized successfully")

	return nil
}

// sheets returns the lazily-initialized sheets client, running the OAuth flow
// on first use.
func (a *App) sheets() (*sheetsclient.Client, error) {
	if a.sheetsClient != nil {
		return a.sheetsClient, nil
	}

	a.logger.Info("Loading OAuth client configuration")
	oauthCfg, err := config.LoadOAuthClientWithEnv(env)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	a.logger.Info("Initializing sheets client")
	client, err := sheetsclient.NewClient(a.ctx, oauthCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	a.sheetsClient = client
	return client, nil
}

// parseDateFlag parses a --date value, defaulting to today.
func parseDateFlag(value string) (time.Time, error) {
	if value == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse(dateFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return date, nil
}

// Command definitions

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the activity schedule for a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dateStr, _ := cmd.Flags().GetString("date")
			seed, _ := cmd.Flags().GetInt64("seed")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			date, err := parseDateFlag(dateStr)
			if err != nil {
				return err
			}

			catalog, err := app.catalog.BuildCatalog(date)
			if err != nil {
				return fmt.Errorf("failed to build catalog: %w", err)
			}

			result, err := services.GenerateSchedule(
				app.ctx, app.database, catalog, app.cfg, app.logger,
				date, seed, dryRun)
			if err != nil {
				return err
			}

			// Display results
			fmt.Printf("\nSchedule for %s\n\n", result.Date.Format(dateFormat))
			printGrid(catalog, result.Rows)

			if len(result.SkippedLeagues) > 0 {
				fmt.Printf("Skipped leagues: %s\n", strings.Join(result.SkippedLeagues, ", "))
			}
			if len(result.Warnings) > 0 {
				fmt.Printf("Warnings:\n")
				for _, w := range result.Warnings {
					fmt.Printf("  - %s\n", w)
				}
			}
			if len(result.CellErrors) > 0 {
				fmt.Printf("Validation issues:\n")
				for _, cellErr := range result.CellErrors {
					fmt.Printf("  - %s\n", cellErr)
				}
			}

			if result.Saved {
				fmt.Println("\nSchedule saved.")
			} else {
				fmt.Println("\nDry run - schedule not saved.")
			}
			return nil
		},
	}

	cmd.Flags().String("date", "", "Schedule date (YYYY-MM-DD, default today)")
	cmd.Flags().Int64("seed", time.Now().UnixNano(), "Seed for random decisions")
	cmd.Flags().Bool("dry-run", false, "Run without saving to database")

	return cmd
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <bunk>",
		Short: "Show a bunk's rotation history over the scanned window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bunk := args[0]
			dateStr, _ := cmd.Flags().GetString("date")

			date, err := parseDateFlag(dateStr)
			if err != nil {
				return err
			}

			catalog, err := app.catalog.BuildCatalog(date)
			if err != nil {
				return fmt.Errorf("failed to build catalog: %w", err)
			}

			result, err := services.BunkHistory(
				app.ctx, app.database, catalog, app.logger,
				date, app.cfg.HistoryDays, bunk)
			if err != nil {
				return err
			}

			fmt.Printf("\nRotation history for %s (%s), %d days before %s\n\n",
				result.Bunk, result.Division, result.HistoryDays, result.Date.Format(dateFormat))
			fmt.Printf("%-24s %5s %6s %6s %6s\n", "Activity", "Count", "Last", "7-day", "Streak")
			for _, line := range result.Lines {
				last := "never"
				if line.DaysSinceLast >= 0 {
					last = fmt.Sprintf("%dd", line.DaysSinceLast)
				}
				fmt.Printf("%-24s %5d %6s %6d %6d\n",
					line.Activity, line.Count, last, line.Last7Count, line.Streak)
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().String("date", "", "Reference date (YYYY-MM-DD, default today)")

	return cmd
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Re-validate a saved day's schedule against the grid invariants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dateStr, _ := cmd.Flags().GetString("date")

			date, err := parseDateFlag(dateStr)
			if err != nil {
				return err
			}

			catalog, err := app.catalog.BuildCatalog(date)
			if err != nil {
				return fmt.Errorf("failed to build catalog: %w", err)
			}

			result, err := services.ValidateSchedule(
				app.ctx, app.database, catalog, app.logger, date)
			if err != nil {
				return err
			}

			if len(result.CellErrors) == 0 {
				fmt.Printf("\nSchedule for %s is valid (%d entries).\n",
					result.Date.Format(dateFormat), result.Entries)
				return nil
			}

			fmt.Printf("\nSchedule for %s has %d issues:\n",
				result.Date.Format(dateFormat), len(result.CellErrors))
			for _, cellErr := range result.CellErrors {
				fmt.Printf("  - %s\n", cellErr)
			}
			return nil
		},
	}

	cmd.Flags().String("date", "", "Schedule date (YYYY-MM-DD, default today)")

	return cmd
}

func publishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a saved day's schedule to the schedule sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dateStr, _ := cmd.Flags().GetString("date")

			date, err := parseDateFlag(dateStr)
			if err != nil {
				return err
			}

			catalog, err := app.catalog.BuildCatalog(date)
			if err != nil {
				return fmt.Errorf("failed to build catalog: %w", err)
			}

			client, err := app.sheets()
			if err != nil {
				return err
			}

			result, err := services.PublishSchedule(
				app.ctx, app.database, client, catalog, app.cfg, app.logger, date)
			if err != nil {
				return err
			}

			fmt.Printf("\nPublished %d entries for %s to tab %q.\n",
				result.Entries, result.Date.Format(dateFormat), result.Tab)
			return nil
		},
	}

	cmd.Flags().String("date", "", "Schedule date (YYYY-MM-DD, default today)")

	return cmd
}

func settingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "List global settings stored in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := app.database.LoadGlobalSettings(app.ctx)
			if err != nil {
				return fmt.Errorf("failed to load global settings: %w", err)
			}

			if len(settings) == 0 {
				fmt.Println("\nNo global settings stored.")
				return nil
			}

			keys := make([]string, 0, len(settings))
			for key := range settings {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			fmt.Println()
			for _, key := range keys {
				fmt.Printf("  %-30s %s\n", key, settings[key])
			}
			fmt.Println()
			return nil
		},
	}
}

// printGrid renders the day's grid to stdout, one bunk per line.
func printGrid(catalog *model.Catalog, rows map[string]model.ScheduleRow) {
	for i := range catalog.Divisions {
		div := &catalog.Divisions[i]
		fmt.Printf("%s:\n", div.Name)
		for _, bunk := range div.Bunks {
			cells := make([]string, 0, len(catalog.Slots))
			for slot := range catalog.Slots {
				entry := rows[bunk][slot]
				switch {
				case entry == nil && !div.IsActiveSlot(slot):
					cells = append(cells, "-")
				case entry == nil:
					cells = append(cells, "(empty)")
				case entry.IsContinuation():
					cells = append(cells, "...")
				case entry.Kind == model.EntryLeague:
					cells = append(cells, fmt.Sprintf("%s:%s@%s", entry.League, entry.Sport, entry.Field))
				case entry.Kind == model.EntryHeadToHead:
					cells = append(cells, fmt.Sprintf("%s vs %s", entry.Sport, entry.Opponent))
				default:
					cells = append(cells, entry.Activity)
				}
			}
			fmt.Printf("  %-12s %s\n", bunk, strings.Join(cells, " | "))
		}
	}
}

func interactiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive session (authenticate once, run multiple commands)",
		Long: `Start an interactive session where you can run multiple commands without re-authenticating.
The session will keep running until you type 'exit' or 'quit'.

Type 'help' to see available commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("\nStarting interactive session...")
			fmt.Println("Type 'help' for available commands, 'exit' or 'quit' to leave")

			// Get all sibling commands (excluding interactive itself)
			rootCmd := cmd.Parent()
			commands := make(map[string]*cobra.Command)
			for _, subCmd := range rootCmd.Commands() {
				if subCmd.Name() != "interactive" && subCmd.Name() != "completion" && subCmd.Name() != "help" {
					commands[subCmd.Name()] = subCmd
				}
			}

			scanner := bufio.NewScanner(os.Stdin)

			for {
				fmt.Print("> ")

				if !scanner.Scan() {
					break
				}

				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}

				parts := strings.Fields(line)
				cmdName := parts[0]
				cmdArgs := parts[1:]

				if cmdName == "exit" || cmdName == "quit" {
					fmt.Println("Goodbye!")
					return nil
				}

				if cmdName == "help" {
					printInteractiveHelp(commands)
					continue
				}

				targetCmd, exists := commands[cmdName]
				if !exists {
					fmt.Printf("Unknown command: %s (type 'help' for available commands)\n\n", cmdName)
					continue
				}

				// Reset command flags and args
				targetCmd.Flags().VisitAll(func(flag *pflag.Flag) {
					flag.Changed = false
					flag.Value.Set(flag.DefValue)
				})

				// Execute the command's RunE directly, bypassing the full Execute() flow
				// This avoids re-running PersistentPreRunE which would call initApp() again
				if err := targetCmd.ParseFlags(cmdArgs); err != nil {
					fmt.Printf("Error parsing flags: %v\n\n", err)
					continue
				}

				// Get non-flag args after parsing flags
				cmdArgs = targetCmd.Flags().Args()

				if err := targetCmd.Args(targetCmd, cmdArgs); err != nil {
					fmt.Printf("Error: %v\n\n", err)
					continue
				}

				if targetCmd.RunE != nil {
					if err := targetCmd.RunE(targetCmd, cmdArgs); err != nil {
						fmt.Printf("Error: %v\n\n", err)
					}
				} else if targetCmd.Run != nil {
					targetCmd.Run(targetCmd, cmdArgs)
				}
			}

			if err := scanner.Err(); err != nil {
				return fmt.Errorf("error reading input: %w", err)
			}

			return nil
		},
	}

	return cmd
}

func printInteractiveHelp(commands map[string]*cobra.Command) {
	fmt.Println("\nAvailable commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}

	for _, name := range names {
		cmd := commands[name]
		fmt.Printf("  %-30s %s\n", cmd.Use, cmd.Short)
	}

	fmt.Println("\n  help                           Show this help message")
	fmt.Println("  exit, quit                     Exit the interactive session")
}
