package command

import (
	"github.com/spf13/cobra"
)

func newParseCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse and classify a statement without storing it",
		Long: `Parse reads extracted statement text (pdf) or a spreadsheet export (xlsx)
and prints the classified transactions. Nothing is written to the database.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := sourceFor(source, args[0])
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			doc, err := readDocument(args[0], src, "")
			if err != nil {
				return err
			}

			res, err := previewDocument(cmd.Context(), doc, cfg.Import.DefaultCurrency)
			if err != nil {
				return err
			}

			return printIngest(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "document source: pdf or xlsx (default from extension)")

	return cmd
}
