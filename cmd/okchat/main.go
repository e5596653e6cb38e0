// Package main is the entry point for the okchat server and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/belljun3395/okchat/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "okchat",
	Short: "Retrieval-augmented chat over a wiki index",
	Long: `okchat answers questions about wiki content. Each question is analyzed,
searched with four strategies, fused, filtered by the caller's permissions
and assembled into a prompt for the chat model.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("env", config.GetEnv(), "config environment (config/<env>.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
