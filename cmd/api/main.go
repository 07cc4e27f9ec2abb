package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "erms",
	Short: "Engineering resource management: capacity and assignment ledger",
	Long: `erms serves the engineer registry, project registry and assignment ledger
over HTTP. Configuration comes from environment variables (optionally a .env
file). Without POSTGRES_DSN the service runs on an in-memory store; without
REDIS_ADDR the capacity cache is disabled.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(newServeCmd(), newMigrateCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
