// Command invoicebot runs the Telegram invoice bot and its maintenance
// subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is stamped at build time.
var Version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "invoicebot",
	Short: "Telegram bot for invoice generation over Google Sheets",
	Long: `invoicebot registers clients, provisions invoice spreadsheets from a
template, answers delivery questions from a knowledge base, and keeps client
balances in sync with the latest issued sheet.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("invoicebot %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "invoicebot.yaml", "path to config file")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(dbCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
