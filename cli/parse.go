package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	exprtree "github.com/jasoncai1227/manipulating-binary-trees-which-represent-arithmetic-expressions"
	"github.com/jasoncai1227/manipulating-binary-trees-which-represent-arithmetic-expressions/tree"
)

// NewParseCmd creates the "parse" subcommand.
func NewParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "parse <expr>",
		Short:   "Parse a prefix expression and print it",
		Example: `  exprtree parse "+ 1 * x 3"
  exprtree parse --format latex -- "- x * -7 2"`,
		Args:    cobra.MinimumNArgs(1),
		RunE:    runParse,
	}

	cmd.Flags().String("format", "infix", "Output format: prefix | infix | latex | json")
	cmd.Flags().Bool("strict", false, "Reject tokens after a complete expression")

	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	strict, _ := cmd.Flags().GetBool("strict")
	logger := newLogger(cmd)

	expr := expressionArg(args)
	parse := exprtree.Parse
	if strict {
		parse = exprtree.ParseStrict
	}
	t, err := parse(expr)
	if err != nil {
		return exitError(exitInvalid, "%v", err)
	}
	logger.Debug("parsed expression", "nodes", t.Size(), "height", t.Height())

	out, err := render(t, format)
	if err != nil {
		return asExit(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// NewCheckCmd creates the "check" subcommand.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [expr | json]",
		Short: "Report whether the input is a well-formed arithmetic expression",
		RunE:  runCheck,
	}

	cmd.Flags().Bool("json", false, "Input is a JSON tree rather than a prefix expression")
	cmd.Flags().StringP("file", "f", "", "Read the input from a file")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	file, _ := cmd.Flags().GetString("file")
	out := cmd.OutOrStdout()

	var input []byte
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return exitError(exitFileNotFound, "file not found: %s", file)
			}
			return fmt.Errorf("reading file: %w", err)
		}
		input = data
	case len(args) > 0:
		input = []byte(expressionArg(args))
	default:
		return exitError(exitInputParse, "nothing to check: pass an expression or --file")
	}

	var (
		t   *tree.Node
		err error
	)
	if asJSON {
		t, err = exprtree.FromJSON(input)
		if err != nil {
			return exitError(exitInputParse, "%v", err)
		}
		err = exprtree.Validate(t)
	} else {
		_, err = exprtree.Parse(string(input))
	}

	if err != nil {
		fmt.Fprintf(out, "invalid: %v\n", err)
		return exitError(exitInvalid, "not an arithmetic expression")
	}
	fmt.Fprintln(out, "valid")
	return nil
}
