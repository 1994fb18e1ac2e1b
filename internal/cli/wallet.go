package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/service"
)

func init() {
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(grantCmd)
	rootCmd.AddCommand(bulkGrantCmd)

	historyCmd.Flags().Int32P("limit", "n", 20, "Number of entries to show")

	grantCmd.Flags().String("reference", "", "Idempotency reference (generated when empty)")
	grantCmd.Flags().String("type", string(domain.TransactionTypeBonus), "Transaction type: bonus or topup")
	grantCmd.Flags().String("reason", "", "Description recorded on the ledger entry")
	grantCmd.Flags().String("operator", "", "Operator user id recorded in the audit trail")

	bulkGrantCmd.Flags().StringP("file", "f", "", "CSV or YAML file of grants")
	bulkGrantCmd.Flags().String("operator", "", "Operator user id recorded in the audit trail")
}

// ─── balance ────────────────────────────────────────────────────────────────

var balanceCmd = &cobra.Command{
	Use:   "balance USER_ID",
	Short: "Print a user's credit balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		balance, err := a.Wallet.GetBalance(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d credits\n", args[0], balance)
		return nil
	},
}

// ─── history ────────────────────────────────────────────────────────────────

var historyCmd = &cobra.Command{
	Use:   "history USER_ID",
	Short: "Print a user's most recent ledger entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt32("limit")
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.Wallet.TransactionHistory(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CREATED\tTYPE\tDELTA\tBALANCE\tREFERENCE\tDESCRIPTION")
		for _, e := range entries {
			ref := ""
			if e.Reference != nil {
				ref = *e.Reference
			}
			fmt.Fprintf(tw, "%s\t%s\t%+d\t%d\t%s\t%s\n",
				e.CreatedOn.Format(time.RFC3339), e.Type, e.CreditsDelta, e.BalanceAfter, ref, e.Description)
		}
		return tw.Flush()
	},
}

// ─── grant ──────────────────────────────────────────────────────────────────

var grantCmd = &cobra.Command{
	Use:   "grant USER_ID CREDITS",
	Short: "Grant credits to a user",
	Long: `Grant credits to a user. Re-running a grant with the same --reference
returns the original entry instead of crediting twice.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var credits int64
		if _, err := fmt.Sscan(args[1], &credits); err != nil || credits <= 0 {
			return fmt.Errorf("credits must be a positive integer, got %q", args[1])
		}
		reference, _ := cmd.Flags().GetString("reference")
		txType, _ := cmd.Flags().GetString("type")
		reason, _ := cmd.Flags().GetString("reason")
		operator, _ := cmd.Flags().GetString("operator")

		g := grant{UserID: args[0], Credits: credits, Reference: reference, Reason: reason}
		opts, err := g.options(domain.TransactionType(txType), operator)
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Wallet.Topup(cmd.Context(), g.UserID, g.Credits, opts)
		if err != nil {
			return err
		}
		printGrant(cmd, g.UserID, *opts.Reference, res)
		return nil
	},
}

// ─── bulk-grant ─────────────────────────────────────────────────────────────

var bulkGrantCmd = &cobra.Command{
	Use:   "bulk-grant",
	Short: "Grant credits to many users from a CSV or YAML file",
	Long: `Grant credits from a file. CSV rows are user_id,credits[,reference[,reason]]
with an optional header; YAML is a list under "grants". Rows without a
reference get one derived from the file row, so re-running the same file
is safe.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		operator, _ := cmd.Flags().GetString("operator")
		if path == "" {
			return fmt.Errorf("grant file required: walletctl bulk-grant -f <file>")
		}
		grants, err := loadGrants(path)
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var failed int
		for _, g := range grants {
			opts, err := g.options(domain.TransactionTypeBonus, operator)
			if err != nil {
				return err
			}
			res, err := a.Wallet.Topup(cmd.Context(), g.UserID, g.Credits, opts)
			if err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s: %v\n", g.UserID, err)
				continue
			}
			printGrant(cmd, g.UserID, *opts.Reference, res)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d grants, %d failed\n", len(grants), failed)
		if failed > 0 {
			return fmt.Errorf("%d of %d grants failed", failed, len(grants))
		}
		return nil
	},
}

func (g grant) options(txType domain.TransactionType, operator string) (service.TopupOptions, error) {
	switch txType {
	case domain.TransactionTypeBonus, domain.TransactionTypeTopup:
	default:
		return service.TopupOptions{}, fmt.Errorf("grant type must be bonus or topup, got %q", txType)
	}
	ref := g.Reference
	if ref == "" {
		ref = "grant:" + uuid.NewString()
	}
	desc := g.Reason
	if desc == "" {
		desc = fmt.Sprintf("Operator grant of %d credits", g.Credits)
	}
	return service.TopupOptions{
		Type:        txType,
		Reference:   &ref,
		Description: desc,
		ActorUserID: operator,
	}, nil
}

func printGrant(cmd *cobra.Command, userID, reference string, res *domain.TopupResult) {
	mark := "✓"
	if res.Duplicate {
		mark = "="
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\tbalance %d\ttx %s\tref %s\n", mark, userID, res.Balance, res.TransactionID, reference)
}
