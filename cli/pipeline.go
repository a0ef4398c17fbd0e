package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	exprtree "github.com/jasoncai1227/manipulating-binary-trees-which-represent-arithmetic-expressions"
	"github.com/jasoncai1227/manipulating-binary-trees-which-represent-arithmetic-expressions/tree"
)

const (
	simplifyNone       = "none"
	simplifyArithmetic = "arithmetic"
	simplifyIdentity   = "identity"
)

// newLogger builds the command's stderr logger from the root's --verbose and
// --quiet flags.
func newLogger(cmd *cobra.Command) *slog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")

	level := slog.LevelInfo
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// expressionArg joins positional args so unquoted expressions still parse.
func expressionArg(args []string) string {
	return strings.Join(args, " ")
}

// parseArg parses a prefix expression, mapping failures to exitInvalid.
func parseArg(expr string) (*tree.Node, error) {
	t, err := exprtree.Parse(expr)
	if err != nil {
		return nil, exitError(exitInvalid, "%v", err)
	}
	return t, nil
}

// rulesFor maps a --simplify mode to its rule set. "none" yields nil.
func rulesFor(mode string) (exprtree.RuleSet, error) {
	switch mode {
	case "", simplifyNone:
		return nil, nil
	case simplifyArithmetic:
		return exprtree.ArithmeticRules, nil
	case simplifyIdentity:
		return exprtree.IdentityRules, nil
	}
	return nil, exitError(exitInputParse, "unknown simplify mode %q (want none | arithmetic | identity)", mode)
}

// render writes t in one of the output formats.
func render(t *tree.Node, format string) (string, error) {
	switch format {
	case "", "prefix":
		return exprtree.Tree2Prefix(t)
	case "infix":
		return exprtree.Tree2Infix(t)
	case "latex":
		return exprtree.Tree2LaTeX(t)
	case "json":
		return exprtree.ToJSON(t)
	}
	return "", exitError(exitInputParse, "unknown format %q (want prefix | infix | latex | json)", format)
}

// transform substitutes values into t, then applies the simplify mode.
func transform(t *tree.Node, values exprtree.Values, mode string) (*tree.Node, error) {
	rules, err := rulesFor(mode)
	if err != nil {
		return nil, err
	}
	if len(values) > 0 {
		if t, err = exprtree.SubstituteAll(t, values); err != nil {
			return nil, err
		}
	}
	if rules != nil {
		return rules.Simplify(t)
	}
	return t, nil
}

// parseBinding parses one name=value flag. A value of "null" binds the name
// to no value.
func parseBinding(kv string) (string, *int64, error) {
	name, raw, ok := strings.Cut(kv, "=")
	if !ok || name == "" {
		return "", nil, exitError(exitInputParse, "invalid binding %q (want name=value)", kv)
	}
	if raw == "null" {
		return name, nil, nil
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return "", nil, exitError(exitInputParse, "invalid value for %s: %v", name, err)
	}
	return name, exprtree.Int(v), nil
}

// loadValuesFile reads a YAML mapping of variable names to integers or null.
func loadValuesFile(path string) (exprtree.Values, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, exitError(exitFileNotFound, "file not found: %s", path)
		}
		return nil, fmt.Errorf("reading file: %w", err)
	}
	var values exprtree.Values
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, exitError(exitInputParse, "parsing %s: %v", path, err)
	}
	if values == nil {
		values = exprtree.Values{}
	}
	return values, nil
}

// asExit maps engine errors onto process exit codes.
func asExit(err error) error {
	var exitErr *ExitError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &exitErr):
		return err
	case errors.Is(err, exprtree.ErrInvalidExpression), errors.Is(err, exprtree.ErrUnboundVariable):
		return exitError(exitInvalid, "%v", err)
	}
	return err
}
