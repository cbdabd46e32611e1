package main

import (
	"github.com/spf13/cobra"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Work with the ICO register of fee payers",
	Long:  "Commands for downloading and importing the ICO register of data protection fee payers.",
}

func init() {
	rootCmd.AddCommand(registryCmd)
}
