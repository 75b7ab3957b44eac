package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of ratatouille",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ratatouille %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
