package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/security"
)

func init() {
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(hashKeyCmd)
	rootCmd.AddCommand(tokenCmd)

	productsCmd.Flags().String("role", "all", "Role scope: employer, candidate or all")

	tokenCmd.Flags().StringSlice("role", nil, "Roles to embed (employer, candidate, vendor, operator)")
	tokenCmd.Flags().String("email", "", "Email claim")
	tokenCmd.Flags().Duration("ttl", time.Hour, "Token lifetime")
}

// ─── products ───────────────────────────────────────────────────────────────

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List active credit packs and action prices",
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		listing, err := a.Catalog.ListProducts(cmd.Context(), domain.RoleScope(role))
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KIND\tSKU\tNAME\tCREDITS\tPRICE_KES\tSCOPE")
		for _, p := range listing.Packs {
			fmt.Fprintf(tw, "pack\t%s\t%s\t%d\t%s\t%s\n", p.SKU, p.Name, p.CreditsAmount, price(p), p.RoleScope)
		}
		for _, p := range listing.Actions {
			fmt.Fprintf(tw, "action\t%s\t%s\t%d\t%s\t%s\n", p.SKU, p.Name, p.CreditsAmount, price(p), p.RoleScope)
		}
		return tw.Flush()
	},
}

func price(p domain.Product) string {
	if !p.PriceKES.Valid {
		return "-"
	}
	return p.PriceKES.Decimal.StringFixed(2)
}

// ─── hash-key ───────────────────────────────────────────────────────────────

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key",
	Short: "Hash a payment webhook key for payments.webhook_key_hash",
	Long: `Reads the shared webhook key from stdin and prints the bcrypt hash to put
in the server configuration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := readSecret(cmd)
		if err != nil {
			return err
		}
		hash, err := security.HashWebhookKey(key)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func readSecret(cmd *cobra.Command) (string, error) {
	var key string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &key); err != nil {
		return "", fmt.Errorf("read key: %w", err)
	}
	return key, nil
}

// ─── token ──────────────────────────────────────────────────────────────────

var tokenCmd = &cobra.Command{
	Use:   "token USER_ID",
	Short: "Mint an access token signed with the configured secret (development only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		roles, _ := cmd.Flags().GetStringSlice("role")
		email, _ := cmd.Flags().GetString("email")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		tm := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer)
		token, err := tm.GenerateAccessToken(args[0], email, roles, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}
