package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chisel/internal/config"
	"chisel/internal/diag"
	"chisel/internal/diagfmt"
	"chisel/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <scenario.toml|directory>...",
	Short: "Check declaration scenarios",
	Long: `Check runs declaration scenarios through the attribute engine and
reports the resulting diagnostics. A scenario file describes declarations
and the attributes written on them; directories expand to every *.toml
below them.`,
	Args:          cobra.MinimumNArgs(1),
	RunE:          runCheck,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	checkCmd.Flags().String("config", "", "path to chisel.toml (default: ./chisel.toml when present)")
	checkCmd.Flags().String("format", "", "output format (pretty|json); overrides the config file")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().Bool("disk-cache", false, "enable the persistent per-unit result cache")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadCheckConfig(cmd)
	if err != nil {
		return err
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format == "" {
		format = cfg.Output.Format
	}
	switch format {
	case "pretty", "json":
	default:
		return fmt.Errorf("unknown format %q (must be pretty or json)", format)
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	suggest, err := cmd.Flags().GetBool("suggest")
	if err != nil {
		return fmt.Errorf("failed to get suggest flag: %w", err)
	}
	fullpath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}

	var cache *driver.DiskCache
	if useCache, _ := cmd.Flags().GetBool("disk-cache"); useCache {
		cache, err = driver.OpenDiskCache("chisel")
		if err != nil {
			return fmt.Errorf("failed to open disk cache: %w", err)
		}
	}

	paths, err := driver.ExpandPaths(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no scenario files found")
	}

	fileSet, results, err := driver.CheckPaths(cmd.Context(), paths, cfg, jobs, cache)
	if err != nil {
		return err
	}

	pathMode := diagfmt.PathModeAuto
	if fullpath {
		pathMode = diagfmt.PathModeAbsolute
	}

	out := cmd.OutOrStdout()
	total := diag.NewBag(cfg.Options().MaxDiagnostics * max(len(results), 1))
	for _, res := range results {
		total.Merge(res.Bag)
	}
	total.Sort()

	switch format {
	case "json":
		err = diagfmt.JSON(out, total, fileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
			IncludeFixes:     suggest,
		})
		if err != nil {
			return err
		}
	default:
		diagfmt.Pretty(out, total, fileSet, diagfmt.PrettyOpts{
			Color:     resolveColor(cmd),
			PathMode:  pathMode,
			ShowNotes: withNotes,
			ShowFixes: suggest,
		})
		fmt.Fprintf(out, "%d file(s) checked, %d diagnostic(s)\n", len(results), total.Len())
	}

	if total.HasErrors() {
		return fmt.Errorf("diagnostics reported errors")
	}
	return nil
}

// loadCheckConfig reads the configuration file, falling back to defaults,
// and applies the persistent flag overrides.
func loadCheckConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	var cfg *config.Config
	switch {
	case path != "":
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	default:
		if _, statErr := os.Stat("chisel.toml"); statErr == nil {
			cfg, err = config.Load("chisel.toml")
			if err != nil {
				return nil, err
			}
		} else {
			cfg = config.Default()
		}
	}

	if cmd.Root().PersistentFlags().Changed("max-diagnostics") {
		maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
		if err != nil {
			return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
		cfg.Checks.MaxDiagnostics = maxDiagnostics
	}
	return cfg, nil
}

// resolveColor turns the tri-state color flag into a decision, probing the
// terminal in auto mode.
func resolveColor(cmd *cobra.Command) bool {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false
	}
	switch mode {
	case "on":
		return true
	case "off":
		return false
	}
	return isTerminal(os.Stdout)
}
