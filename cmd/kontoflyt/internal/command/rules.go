package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MrJamesThe3rd/kontoflyt/internal/rule"
	ruleStore "github.com/MrJamesThe3rd/kontoflyt/internal/rule/store"
	"github.com/MrJamesThe3rd/kontoflyt/internal/transaction"
	txStore "github.com/MrJamesThe3rd/kontoflyt/internal/transaction/store"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage and run categorization rules",
	}

	cmd.AddCommand(newRulesListCmd(), newRulesLoadCmd(), newRulesTestCmd(), newRulesApplyCmd())

	return cmd
}

func bindRulesFile(cmd *cobra.Command) error {
	return viper.BindPFlag("rules.file", cmd.Flags().Lookup("rules"))
}

func loadRulesFile(path string) ([]rule.Rule, error) {
	if path == "" {
		return nil, fmt.Errorf("a rules file is required: pass --rules")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rules: %w", err)
	}
	defer f.Close()

	return rule.LoadYAML(f)
}

func newRulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			_, db, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			rules, err := ruleStore.New(db).ListRules(ctx, false)
			if err != nil {
				return err
			}

			return printRules(cmd.OutOrStdout(), rules)
		},
	}
}

func newRulesLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "load",
		Short:   "Store every rule from a YAML file",
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindRulesFile(cmd) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			rules, err := loadRulesFile(viper.GetString("rules.file"))
			if err != nil {
				return err
			}

			cfg, db, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := rule.NewService(ruleStore.New(db), txStore.New(db), cfg.Rules.InstantPaymentCategory)

			for i := range rules {
				if err := svc.Create(ctx, &rules[i]); err != nil {
					return fmt.Errorf("store rule %q: %w", rules[i].Name, err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "stored %d rules\n", len(rules))

			return nil
		},
	}

	cmd.Flags().StringP("rules", "r", "", "YAML rules file")

	return cmd
}

func newRulesTestCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:     "test <file>",
		Short:   "Run a YAML rule set against a statement without storing anything",
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindRulesFile(cmd) },
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			rules, err := loadRulesFile(viper.GetString("rules.file"))
			if err != nil {
				return err
			}

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

			parsed, err := previewDocument(ctx, doc, cfg.Import.DefaultCurrency)
			if err != nil {
				return err
			}

			store := &memoryTransactions{txs: parsed.Transactions}
			svc := rule.NewService(nil, store, cfg.Rules.InstantPaymentCategory)

			res, err := svc.ApplyRules(ctx, rules, rule.ApplyOptions{})
			if err != nil {
				return err
			}

			return printRuleTest(cmd.OutOrStdout(), rule.Compile(rules), parsed.Transactions, res)
		},
	}

	cmd.Flags().StringP("rules", "r", "", "YAML rules file")
	cmd.Flags().StringVarP(&source, "source", "s", "", "document source: pdf or xlsx (default from extension)")

	return cmd
}

func newRulesApplyCmd() *cobra.Command {
	var (
		dryRun   bool
		flowType string
		from, to string
	)

	cmd := &cobra.Command{
		Use:     "apply",
		Short:   "Apply rules to stored transactions",
		Long:    "Apply runs the enabled stored rules, or the rules in --rules, over stored transactions.",
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindRulesFile(cmd) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			filter, err := applyFilter(flowType, from, to)
			if err != nil {
				return err
			}

			cfg, db, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := rule.NewService(ruleStore.New(db), txStore.New(db), cfg.Rules.InstantPaymentCategory)
			opts := rule.ApplyOptions{Filter: filter, DryRun: dryRun}

			var res *rule.BatchResult

			if path := viper.GetString("rules.file"); path != "" {
				rules, err := loadRulesFile(path)
				if err != nil {
					return err
				}

				res, err = svc.ApplyRules(ctx, rules, opts)
				if err != nil {
					return err
				}
			} else {
				res, err = svc.ApplyAll(ctx, opts)
				if err != nil {
					return err
				}
			}

			return printBatch(cmd.OutOrStdout(), res, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing")
	cmd.Flags().StringP("rules", "r", "", "YAML rules file to run instead of the stored rules")
	cmd.Flags().StringVar(&flowType, "flow", "", "only transactions of this flow type")
	cmd.Flags().StringVar(&from, "from", "", "first date to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last date to include (YYYY-MM-DD)")

	return cmd
}

func applyFilter(flowType, from, to string) (transaction.ListFilter, error) {
	var filter transaction.ListFilter

	if flowType != "" {
		f := transaction.FlowType(flowType)
		if !f.Valid() {
			return filter, fmt.Errorf("unknown flow type %q", flowType)
		}

		filter.FlowType = &f
	}

	for _, d := range []struct {
		value string
		dst   **time.Time
	}{{from, &filter.StartDate}, {to, &filter.EndDate}} {
		if d.value == "" {
			continue
		}

		t, err := time.Parse(time.DateOnly, d.value)
		if err != nil {
			return filter, fmt.Errorf("invalid date %q: %w", d.value, err)
		}

		*d.dst = &t
	}

	return filter, nil
}

// memoryTransactions feeds parsed transactions to the rule service.
type memoryTransactions struct {
	txs []*transaction.Transaction
}

func (m *memoryTransactions) ListTransactions(context.Context, transaction.ListFilter) ([]*transaction.Transaction, error) {
	return m.txs, nil
}

func (m *memoryTransactions) UpdateMetadata(_ context.Context, id uuid.UUID, meta transaction.Metadata) error {
	for _, tx := range m.txs {
		if tx.ID == id {
			tx.Metadata = meta
			return nil
		}
	}

	return transaction.ErrNotFound
}

func printRules(w io.Writer, rules []rule.Rule) error {
	if asJSON() {
		return writeJSON(w, rules)
	}

	t := newTable("Prio", "Name", "On", "Field", "Match", "Value", "Action", "Set")
	for _, r := range rules {
		value := r.MatchValue
		if r.MatchValueSecondary != "" {
			value += " .. " + r.MatchValueSecondary
		}

		t.Row(strconv.Itoa(r.Priority), r.Name, strconv.FormatBool(r.Enabled),
			string(r.MatchField), string(r.MatchType), value, string(r.ActionType), r.ActionValue)
	}

	fmt.Fprintln(w, t)

	return nil
}

type ruleTestOut struct {
	transactionOut
	Rules []string `json:"rules"`
}

func printRuleTest(w io.Writer, m *rule.Matcher, txs []*transaction.Transaction, res *rule.BatchResult) error {
	rows := make([]ruleTestOut, 0, len(txs))

	for _, tx := range txs {
		var names []string
		for _, a := range m.Match(tx) {
			names = append(names, a.RuleName)
		}

		rows = append(rows, ruleTestOut{transactionOut: toOut(tx), Rules: names})
	}

	if asJSON() {
		return writeJSON(w, map[string]any{"summary": res, "transactions": rows})
	}

	t := newTable("Date", "Amount", "Merchant", "Rules", "Category", "Tags")
	for _, r := range rows {
		t.Row(r.Date, r.Amount, r.Merchant, strings.Join(r.Rules, ", "), r.Category, strings.Join(r.Tags, ", "))
	}

	fmt.Fprintln(w, t)

	return printBatch(w, res, false)
}

func printBatch(w io.Writer, res *rule.BatchResult, dryRun bool) error {
	if asJSON() {
		return writeJSON(w, res)
	}

	prefix := ""
	if dryRun {
		prefix = "dry run: "
	}

	fmt.Fprintf(w, "%sprocessed %d, matched %d, updated %d, category candidates %d, errors %d\n",
		prefix, res.Processed, res.Matched, res.Updated, res.CategoryCandidates, res.Errors)

	return nil
}
