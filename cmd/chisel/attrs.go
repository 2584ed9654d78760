package main

import (
	"fmt"
	"strconv"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"chisel/internal/ast"
)

var attrsCmd = &cobra.Command{
	Use:   "attrs",
	Short: "List the attribute catalog",
	Long:  `List every registered attribute spelling with its subjects, argument schema and target gate`,
	Args:  cobra.NoArgs,
	RunE:  runAttrs,
}

func runAttrs(cmd *cobra.Command, args []string) error {
	specs := ast.AttrSpecs()
	out := cmd.OutOrStdout()

	const (
		nameWidth    = 26
		subjectWidth = 44
		arityWidth   = 8
	)
	fmt.Fprintf(out, "%s%s%s%s\n",
		runewidth.FillRight("NAME", nameWidth),
		runewidth.FillRight("SUBJECTS", subjectWidth),
		runewidth.FillRight("ARGS", arityWidth),
		"GATE")

	for _, spec := range specs {
		fmt.Fprintf(out, "%s%s%s%s\n",
			runewidth.FillRight(spec.Name, nameWidth),
			runewidth.FillRight(spec.Subjects.Describe(), subjectWidth),
			runewidth.FillRight(arityLabel(spec), arityWidth),
			spec.Feature)
	}
	fmt.Fprintf(out, "\n%d spellings\n", ast.SpellingCount())
	return nil
}

func arityLabel(spec ast.AttrSpec) string {
	if spec.Variadic() {
		return strconv.Itoa(spec.MinArgs) + ".."
	}
	if spec.MinArgs == spec.MaxArgs {
		return strconv.Itoa(spec.MinArgs)
	}
	return fmt.Sprintf("%d..%d", spec.MinArgs, spec.MaxArgs)
}
