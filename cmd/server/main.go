// Package main is the entry point for the equipment totals server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/KirkDiggler/equip-api/cmd/server/client"
)

var (
	configPath string

	// v collects defaults, the config file, EQUIP_* variables and bound flags
	v = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "equip-api",
	Short: "Equipment set totals server",
	Long: `equip-api keeps the derived price and weight totals of equipment sets up to date
as entries, items, variants and limits change, and serves them over gRPC.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: equip.yaml in ., $HOME/.equip or /etc/equip)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text or json")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(client.ClientCmd)
}
