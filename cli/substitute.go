package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	exprtree "github.com/jasoncai1227/manipulating-binary-trees-which-represent-arithmetic-expressions"
)

// NewSubstituteCmd creates the "substitute" subcommand.
func NewSubstituteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "substitute <expr>",
		Short:   "Replace variables with integers",
		Example: `  exprtree substitute --set c=7 --simplify identity "+ * a b * d - c c"
  exprtree substitute --vars-file vars.yaml -- "- x y"`,
		Args:    cobra.MinimumNArgs(1),
		RunE:    runSubstitute,
	}

	cmd.Flags().StringArray("set", nil, "Bind a variable, e.g. --set x=3 (repeatable; x=null binds no value)")
	cmd.Flags().String("vars-file", "", "YAML file mapping variable names to integers")
	cmd.Flags().String("simplify", simplifyNone, "Simplify afterwards: none | arithmetic | identity")
	cmd.Flags().String("format", "prefix", "Output format: prefix | infix | latex | json")

	return cmd
}

func runSubstitute(cmd *cobra.Command, args []string) error {
	sets, _ := cmd.Flags().GetStringArray("set")
	varsFile, _ := cmd.Flags().GetString("vars-file")
	mode, _ := cmd.Flags().GetString("simplify")
	format, _ := cmd.Flags().GetString("format")
	logger := newLogger(cmd)

	t, err := parseArg(expressionArg(args))
	if err != nil {
		return err
	}

	values := exprtree.Values{}
	if varsFile != "" {
		if values, err = loadValuesFile(varsFile); err != nil {
			return err
		}
	}
	// Flags override the file.
	for _, kv := range sets {
		name, v, err := parseBinding(kv)
		if err != nil {
			return err
		}
		values[name] = v
	}
	if len(values) == 0 {
		return exitError(exitInputParse, "no bindings: pass --set or --vars-file")
	}
	logger.Debug("substituting", "bindings", len(values), "simplify", mode)

	s, err := transform(t, values, mode)
	if err != nil {
		return asExit(err)
	}
	out, err := render(s, format)
	if err != nil {
		return asExit(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
