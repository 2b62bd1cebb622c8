package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/kontoflyt/internal/merchant"
)

func newMerchantCmd() *cobra.Command {
	var fallback []string

	cmd := &cobra.Command{
		Use:   "merchant <raw text>",
		Short: "Show how raw statement text normalizes to a merchant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := merchant.Normalize(args[0], fallback...)

			if asJSON() {
				return writeJSON(cmd.OutOrStdout(), map[string]string{
					"merchant": res.Merchant,
					"raw":      res.Raw,
					"kind":     string(res.Kind),
				})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\t(%s)\n", res.Merchant, res.Kind)

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&fallback, "fallback", nil, "text to try when the raw value has no name")

	return cmd
}
