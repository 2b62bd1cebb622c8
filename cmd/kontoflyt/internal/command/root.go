// Package command implements the kontoflyt command line.
package command

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MrJamesThe3rd/kontoflyt/internal/config"
	"github.com/MrJamesThe3rd/kontoflyt/internal/database"
	"github.com/MrJamesThe3rd/kontoflyt/internal/transaction"
)

var verbose bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kontoflyt",
		Short:         "Ingest and categorize Norwegian bank statements",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initLogging(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().Bool("json", false, "print JSON instead of a table")
	root.PersistentFlags().String("currency", "", "currency for rows that carry none (default IMPORT_DEFAULT_CURRENCY or NOK)")
	cobra.CheckErr(viper.BindPFlag("json", root.PersistentFlags().Lookup("json")))
	cobra.CheckErr(viper.BindPFlag("currency", root.PersistentFlags().Lookup("currency")))

	root.AddCommand(newParseCmd(), newImportCmd(), newMerchantCmd(), newRulesCmd())

	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	_ = godotenv.Load()

	viper.SetEnvPrefix("KONTOFLYT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initLogging(w io.Writer) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// sourceFor resolves the --source flag, falling back to the file extension.
func sourceFor(flag, path string) (transaction.SourceType, error) {
	source := transaction.SourceType(strings.ToLower(flag))

	if source == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv", ".tsv":
			source = transaction.SourceXLSX
		default:
			source = transaction.SourcePDF
		}
	}

	if !source.Valid() {
		return "", fmt.Errorf("unknown source %q: use pdf or xlsx", flag)
	}

	return source, nil
}

// loadConfig reads the environment config and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if c := viper.GetString("currency"); c != "" {
		cfg.Import.DefaultCurrency = strings.ToUpper(c)
	}

	return cfg, nil
}

func openDB(ctx context.Context) (*config.Config, *sql.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	db, err := database.New(ctx, cfg.ConnectionString(), cfg.DB.MaxConns)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	return cfg, db, nil
}
