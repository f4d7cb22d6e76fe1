// Package main implements the opsdeck-seed CLI, a one-shot pipeline that
// populates a local Nexora demo database with fixture data. Re-running is
// safe: every record is upserted by its natural key.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/opsdeck/opsdeck/internal/config"
	"github.com/opsdeck/opsdeck/internal/logger"
	"github.com/opsdeck/opsdeck/internal/seed"
	"github.com/opsdeck/opsdeck/internal/version"
)

var (
	dbPath  string
	verbose bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "opsdeck-seed",
		Short:        "Populate the Nexora demo database with fixture data",
		SilenceUsage: true,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the seed pipeline",
		Long: `Run the seed pipeline against a local SQLite database.

The pipeline seeds users, tenants, clients, projects, CRM, issue and
marketing fixtures in dependency order. Records are matched by natural
key (user email, name scoped by parent, title within project), so the
command is safely re-runnable. Any unresolved cross-entity reference
aborts the run.`,
		RunE: runSeed,
	}
	runCmd.Flags().StringVar(&dbPath, "db", "", "database file path (defaults to DATABASE_PATH or a local file)")
	runCmd.Flags().BoolVar(&verbose, "verbose", false, "log each fixture group as it is seeded")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.Info())
		},
	}

	root.AddCommand(runCmd, versionCmd)
	return root
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	path := dbPath
	if path == "" {
		path = cfg.DatabasePath
	}

	if verbose {
		if err := logger.Setup(cfg.LogPath); err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
	}

	store, err := seed.NewStore(path)
	if err != nil {
		return fmt.Errorf("failed to open seed database: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	results, err := seed.NewSeeder(store, verbose).Run(cmd.Context())
	if err != nil {
		logger.Error("seed run failed", "error", err)
		return err
	}

	printSummary(path, results)
	return nil
}

func printSummary(path string, results []seed.StepResult) {
	fmt.Printf("Seeded %s\n\n", path)

	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		for _, r := range results {
			fmt.Printf("%s\t%d\t%d\n", r.Entity, r.Inserted, r.Updated)
		}
		return
	}

	table := tablewriter.NewTable(os.Stdout)
	table.Header([]string{"Entity", "Inserted", "Updated"})

	var inserted, updated int
	for _, r := range results {
		table.Append([]string{r.Entity, strconv.Itoa(r.Inserted), strconv.Itoa(r.Updated)})
		inserted += r.Inserted
		updated += r.Updated
	}
	table.Footer([]string{"total", strconv.Itoa(inserted), strconv.Itoa(updated)})
	table.Render()
}
