package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"chisel/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "chisel",
	Short: "Declaration-attribute checker",
	Long:  `chisel validates declaration attributes and reports conflicts the way a compiler front end would`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(attrsCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
