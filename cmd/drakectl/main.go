// Command drakectl runs maintenance tasks against the catalogue database
// outside the API server.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"drake-homes/internal/config"
	"drake-homes/internal/database"
	"drake-homes/internal/scheduler"
	"drake-homes/internal/search"
	"drake-homes/internal/selection"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

func main() {
	_ = godotenv.Load()
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "drakectl",
		Short: "Drake Homes catalogue maintenance",
		// main prints the error
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.GetEnv("CONFIG_PATH", "config/app.yaml"), "path to the YAML config")

	cmd.AddCommand(
		newMigrateCommand(opts),
		newReindexCommand(opts),
		newCleanupCommand(opts),
		newStatsCommand(opts),
		newSchemaCommand(),
	)
	return cmd
}

func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	if dbType := config.GetEnv("DB_TYPE", ""); dbType != "" {
		cfg.Database.Type = dbType
	}
	return cfg, nil
}

func (o *rootOptions) open() (*config.Config, *database.GormDB, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, nil, err
	}
	gdb, err := database.Open(cfg.Database, cfg.Logging.Level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, gdb, nil
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Short:        "Create or update the database schema",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gdb, err := opts.open()
			if err != nil {
				return err
			}
			defer gdb.Close()
			if err := gdb.InitSchema(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
			return nil
		},
	}
}

func newReindexCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "reindex",
		Short:        "Rebuild every search index from the database",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gdb, err := opts.open()
			if err != nil {
				return err
			}
			defer gdb.Close()

			m := cfg.Search.Meilisearch
			host := config.GetEnvOrConfig(m.Host, "MEILISEARCH_HOST", "")
			if host == "" {
				return search.ErrDisabled
			}
			client := search.NewSearchClient(host, config.GetEnvOrConfig(m.APIKey, "MEILISEARCH_KEY", ""), m.IndexPrefix)
			if err := client.InitIndexes(); err != nil {
				return err
			}
			if err := search.ReindexAll(cmd.Context(), gdb, client); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Reindex completed")
			return nil
		},
	}
}

func newCleanupCommand(opts *rootOptions) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:          "cleanup",
		Short:        "Purge stale draft and closed records",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gdb, err := opts.open()
			if err != nil {
				return err
			}
			defer gdb.Close()

			sched := scheduler.NewScheduler(gdb, search.Disabled{}, nil, cfg)
			result, err := sched.RunCleanup(cmd.Context(), dryRun)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", true, "only report what would be deleted")
	return cmd
}

func newStatsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "stats",
		Short:        "Print catalogue record counts",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gdb, err := opts.open()
			if err != nil {
				return err
			}
			defer gdb.Close()
			stats, err := gdb.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, stats)
		},
	}
}

func newSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect selection book schemas",
	}

	cmd.AddCommand(&cobra.Command{
		Use:          "print",
		Short:        "Print the built-in selection schema as YAML",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := selection.DefaultSchema()
			if err != nil {
				return err
			}
			out, err := s.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:          "validate <file>",
		Short:        "Check a selection schema file",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := selection.LoadSchema(args[0])
			if err != nil {
				return err
			}
			steps := selection.NewBook(s).Steps()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d categories, %d steps)\n", args[0], len(s.Categories), len(steps))
			return nil
		},
	})
	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
