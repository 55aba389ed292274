package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"crest/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "crest",
	Short: "crest IR tooling",
	Long:  `crest inspects and validates serialized crest IR snapshots`,
}

func main() {
	rootCmd.Version = version.Pretty()

	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(checkCmd)

	rootCmd.PersistentFlags().String("color", "", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("config", "", "path to crest.toml")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
