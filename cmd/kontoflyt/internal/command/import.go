package command

import (
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/kontoflyt/internal/importer"
	"github.com/MrJamesThe3rd/kontoflyt/internal/merchant"
	merchantStore "github.com/MrJamesThe3rd/kontoflyt/internal/merchant/store"
	"github.com/MrJamesThe3rd/kontoflyt/internal/transaction"
	txStore "github.com/MrJamesThe3rd/kontoflyt/internal/transaction/store"
)

func newImportCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Ingest statements into the database",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, db, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := importer.NewService(
				transaction.NewService(txStore.New(db)),
				merchant.NewService(merchantStore.New(db)),
				cfg.Import.DefaultCurrency,
			)

			for _, path := range args {
				src, err := sourceFor(source, path)
				if err != nil {
					return err
				}

				doc, err := readDocument(path, src, "")
				if err != nil {
					return err
				}

				res, err := svc.Ingest(ctx, doc)
				if err != nil {
					return err
				}

				if err := printIngest(cmd.OutOrStdout(), res); err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "document source: pdf or xlsx (default from extension)")

	return cmd
}
