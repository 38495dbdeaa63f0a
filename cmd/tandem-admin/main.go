package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "tandem-admin",
	Short:        "Administrative tasks for the tandem API",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(
		migrateCmd,
		promoteCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
