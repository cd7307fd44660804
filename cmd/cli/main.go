package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var (
	baseURL string
	timeout time.Duration
	token   string
)

// swapped out in tests
var bcryptGenerate = bcrypt.GenerateFromPassword

func main() {
	rootCmd := &cobra.Command{
		Use:   "cryptofolio-cli",
		Short: "Cryptofolio CLI tool",
		Long:  `A command line interface for interacting with the Cryptofolio API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the Cryptofolio API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token for authenticated requests")

	rootCmd.AddCommand(
		registerCmd(),
		loginCmd(),
		ledgerCmd(),
		portfolioCmd(),
		coinsCmd(),
		adminCmd(),
		hashPasswordCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func registerCmd() *cobra.Command {
	var email, username, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/auth/register", map[string]string{
				"email":    email,
				"username": username,
				"password": password,
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&username, "username", "", "Account username")
	cmd.Flags().StringVar(&password, "password", "", "Account password")

	return cmd
}

func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and print a token",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{
				"email":    email,
				"password": password,
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")

	return cmd
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	var amount string
	depositCmd := &cobra.Command{
		Use:   "deposit",
		Short: "Deposit fiat into the account",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/ledger/deposit", map[string]string{"amount": amount})
		},
	}
	depositCmd.Flags().StringVar(&amount, "amount", "", "Fiat amount")

	var withdrawAmount string
	withdrawCmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Withdraw fiat from the account",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/ledger/withdraw", map[string]string{"amount": withdrawAmount})
		},
	}
	withdrawCmd.Flags().StringVar(&withdrawAmount, "amount", "", "Fiat amount")

	var buyCoin, buyFiat, buyPrice string
	buyCmd := &cobra.Command{
		Use:   "buy",
		Short: "Buy a coin with fiat",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/ledger/buy", map[string]string{
				"coin_id":        buyCoin,
				"fiat_amount":    buyFiat,
				"price_per_unit": buyPrice,
			})
		},
	}
	buyCmd.Flags().StringVar(&buyCoin, "coin", "", "Coin ID")
	buyCmd.Flags().StringVar(&buyFiat, "fiat", "", "Fiat amount to spend")
	buyCmd.Flags().StringVar(&buyPrice, "price", "", "Price per unit")

	var sellCoin, sellQty, sellPrice string
	sellCmd := &cobra.Command{
		Use:   "sell",
		Short: "Sell a coin for fiat",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/ledger/sell", map[string]string{
				"coin_id":        sellCoin,
				"quantity":       sellQty,
				"price_per_unit": sellPrice,
			})
		},
	}
	sellCmd.Flags().StringVar(&sellCoin, "coin", "", "Coin ID")
	sellCmd.Flags().StringVar(&sellQty, "quantity", "", "Quantity to sell")
	sellCmd.Flags().StringVar(&sellPrice, "price", "", "Price per unit")

	entriesCmd := &cobra.Command{
		Use:   "entries",
		Short: "List ledger entries, newest first",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, "/api/v1/ledger/entries", nil)
		},
	}

	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the fiat balance",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, "/api/v1/ledger/balance", nil)
		},
	}

	cmd.AddCommand(depositCmd, withdrawCmd, buyCmd, sellCmd, entriesCmd, balanceCmd)
	return cmd
}

func portfolioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "portfolio",
		Short: "Show consolidated holdings",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, "/api/v1/portfolio/", nil)
		},
	}
}

func coinsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coins",
		Short: "Coin cache queries",
	}

	topCmd := &cobra.Command{
		Use:   "top",
		Short: "List top coins by market cap",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, "/api/v1/coins/top", nil)
		},
	}

	var query string
	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Search cached coins by name or symbol",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, "/api/v1/coins/search?q="+query, nil)
		},
	}
	searchCmd.Flags().StringVar(&query, "q", "", "Search query")

	cmd.AddCommand(topCmd, searchCmd)
	return cmd
}

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Operational commands",
	}

	evictCmd := &cobra.Command{
		Use:   "evict",
		Short: "Evict stale cached quotes",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/admin/cache/evict", nil)
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear-data",
		Short: "Wipe all application data",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/admin/clear-data", nil)
		},
	}

	cmd.AddCommand(evictCmd, clearCmd)
	return cmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Hash a password with bcrypt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcryptGenerate([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			fmt.Println(string(hash))
			return nil
		},
	}
}

func doRequest(method, path string, payload any) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("Failed to encode request: %v\n", err)
			os.Exit(1)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		fmt.Printf("Failed to build request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, truncate(string(raw), 2000))
		os.Exit(1)
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		fmt.Println(string(raw))
		return
	}
	printJSON(parsed)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to render response: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
