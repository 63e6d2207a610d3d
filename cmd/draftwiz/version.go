package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/draftwizard"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of draftwiz",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("draftwiz version %s\n", strings.TrimSpace(draftwizard.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
