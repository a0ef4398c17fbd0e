package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSimplifyCmd creates the "simplify" subcommand.
func NewSimplifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "simplify <expr>",
		Short:   "Fold constants, optionally applying algebraic identities",
		Example: `  exprtree simplify -- "- x + 3 * 7 - 8 9"
  exprtree simplify --identities "* + c 2 1"`,
		Args:    cobra.MinimumNArgs(1),
		RunE:    runSimplify,
	}

	cmd.Flags().Bool("identities", false, "Also apply x*1, x*0, x+0, x-0 and x-x identities")
	cmd.Flags().String("format", "prefix", "Output format: prefix | infix | latex | json")

	return cmd
}

func runSimplify(cmd *cobra.Command, args []string) error {
	identities, _ := cmd.Flags().GetBool("identities")
	format, _ := cmd.Flags().GetString("format")

	t, err := parseArg(expressionArg(args))
	if err != nil {
		return err
	}

	mode := simplifyArithmetic
	if identities {
		mode = simplifyIdentity
	}
	s, err := transform(t, nil, mode)
	if err != nil {
		return asExit(err)
	}
	newLogger(cmd).Debug("simplified", "mode", mode, "before", t.Size(), "after", s.Size())

	out, err := render(s, format)
	if err != nil {
		return asExit(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
