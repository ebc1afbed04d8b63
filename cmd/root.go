package cmd

import (
	"fmt"
	"os"

	"Bt1QAuth/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "1qauth_server",
	Short: "1QAuth is a minimal authentication service.",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
