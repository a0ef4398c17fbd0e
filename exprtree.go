// Package exprtree parses, renders, and simplifies integer arithmetic
// expressions stored as binary trees.
//
// Design goals:
//   - Prefix notation in; prefix, infix, LaTeX and JSON out
//   - Every transformer returns a new tree and leaves its input untouched
//   - Both simplifiers share one traversal driven by an ordered rule set
//   - AI/LLM friendly: JSON tool dispatch via HandleToolCall
package exprtree

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/jasoncai1227/manipulating-binary-trees-which-represent-arithmetic-expressions/internal/queue"
	"github.com/jasoncai1227/manipulating-binary-trees-which-represent-arithmetic-expressions/tree"
)

// ============================================================
// Errors
// ============================================================

// ErrInvalidExpression is wrapped by every error the engine returns for
// malformed input. Test with errors.Is.
var ErrInvalidExpression = errors.New("exprtree: invalid expression")

// ErrUnboundVariable is returned by Evaluate when variables remain after
// substitution.
var ErrUnboundVariable = errors.New("exprtree: unbound variable")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidExpression, fmt.Sprintf(format, args...))
}

// ============================================================
// Labels
// ============================================================

const (
	OpAdd = "+"
	OpSub = "-"
	OpMul = "*"
)

func IsOperator(label string) bool {
	return label == OpAdd || label == OpSub || label == OpMul
}

// IsVariable reports whether label starts with a letter.
func IsVariable(label string) bool {
	r, _ := utf8.DecodeRuneInString(label)
	return label != "" && unicode.IsLetter(r)
}

// IsLiteral reports whether label is an integer literal: an optional
// leading '-' followed by decimal digits that fit in an int64.
func IsLiteral(label string) bool {
	_, ok := literalValue(label)
	return ok
}

// literalValue reads a leaf label as a signed integer. A leading '-' marks a
// negative literal; the magnitude must be plain digits.
func literalValue(label string) (int64, bool) {
	digits := strings.TrimPrefix(label, "-")
	if digits == "" {
		return 0, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}
	v, err := strconv.ParseInt(label, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func isLeafLabel(n *tree.Node, label string) bool { return n.IsLeaf() && n.Label == label }

// ============================================================
// Parser: prefix notation
// ============================================================

// Parse builds a tree from a whitespace separated prefix expression such as
// "+ 2 - 4 5". Operators are + - *; every other token becomes a leaf.
// Tokens left over after a complete expression are ignored.
func Parse(expression string) (*tree.Node, error) {
	t, _, err := parseExpression(expression)
	return t, err
}

// ParseStrict is Parse, but rejects tokens left over after a complete
// expression.
func ParseStrict(expression string) (*tree.Node, error) {
	t, rest, err := parseExpression(expression)
	if err != nil {
		return nil, err
	}
	if !rest.IsEmpty() {
		next, _ := rest.Dequeue()
		return nil, invalid("unexpected token %q after complete expression", next)
	}
	return t, nil
}

func parseExpression(expression string) (*tree.Node, *queue.Queue[string], error) {
	tokens := queue.New(strings.Fields(expression)...)
	if tokens.IsEmpty() {
		return nil, nil, invalid("empty expression")
	}
	t, err := parsePrefix(tokens)
	if err != nil {
		return nil, nil, err
	}
	return t, tokens, nil
}

// parsePrefix consumes one complete subtree from tokens: the operator, then
// its left operand, then its right operand.
func parsePrefix(tokens *queue.Queue[string]) (*tree.Node, error) {
	label, ok := tokens.Dequeue()
	if !ok {
		return nil, invalid("ran out of tokens before the expression was complete")
	}
	if !IsOperator(label) {
		return tree.New(label), nil
	}
	left, err := parsePrefix(tokens)
	if err != nil {
		return nil, err
	}
	right, err := parsePrefix(tokens)
	if err != nil {
		return nil, err
	}
	return tree.Attach(label, left, right), nil
}

// ============================================================
// Validator
// ============================================================

// IsArithmeticExpression reports whether t is a well-formed expression: every
// internal node is an operator with exactly two children and no leaf is an
// operator. The absent tree is not an expression.
func IsArithmeticExpression(t *tree.Node) bool { return Validate(t) == nil }

// Validate is IsArithmeticExpression with the reason for rejection.
func Validate(t *tree.Node) error {
	if t == nil {
		return invalid("empty tree")
	}
	return checkNode(t)
}

func checkNode(n *tree.Node) error {
	if n.IsLeaf() {
		if IsOperator(n.Label) {
			return invalid("operator %q has no operands", n.Label)
		}
		return nil
	}
	if n.NumChildren() != 2 {
		return invalid("node %q has one operand", n.Label)
	}
	if !IsOperator(n.Label) {
		return invalid("node %q has operands but is not an operator", n.Label)
	}
	if err := checkNode(n.Left); err != nil {
		return err
	}
	return checkNode(n.Right)
}

// ============================================================
// Renderers
// ============================================================

// Tree2Prefix renders t in prefix notation, e.g. "- + 2 15 4".
func Tree2Prefix(t *tree.Node) (string, error) {
	if err := Validate(t); err != nil {
		return "", err
	}
	var sb strings.Builder
	writePrefix(&sb, t)
	return sb.String(), nil
}

func writePrefix(sb *strings.Builder, n *tree.Node) {
	sb.WriteString(n.Label)
	if n.IsLeaf() {
		return
	}
	sb.WriteByte(' ')
	writePrefix(sb, n.Left)
	sb.WriteByte(' ')
	writePrefix(sb, n.Right)
}

// Tree2Infix renders t fully parenthesized, e.g. "((2+15)-4)".
func Tree2Infix(t *tree.Node) (string, error) {
	if err := Validate(t); err != nil {
		return "", err
	}
	var sb strings.Builder
	writeInfix(&sb, t)
	return sb.String(), nil
}

func writeInfix(sb *strings.Builder, n *tree.Node) {
	if n.IsLeaf() {
		sb.WriteString(n.Label)
		return
	}
	sb.WriteByte('(')
	writeInfix(sb, n.Left)
	sb.WriteString(n.Label)
	writeInfix(sb, n.Right)
	sb.WriteByte(')')
}

var latexOps = map[string]string{OpAdd: " + ", OpSub: " - ", OpMul: " \\cdot "}

// Tree2LaTeX renders t as LaTeX. Nested operations are wrapped in
// \left( \right); the outermost one is not.
func Tree2LaTeX(t *tree.Node) (string, error) {
	if err := Validate(t); err != nil {
		return "", err
	}
	var sb strings.Builder
	writeLaTeX(&sb, t, true)
	return sb.String(), nil
}

func writeLaTeX(sb *strings.Builder, n *tree.Node, top bool) {
	if n.IsLeaf() {
		sb.WriteString(n.Label)
		return
	}
	if !top {
		sb.WriteString("\\left(")
	}
	writeLaTeX(sb, n.Left, false)
	sb.WriteString(latexOps[n.Label])
	writeLaTeX(sb, n.Right, false)
	if !top {
		sb.WriteString("\\right)")
	}
}

// ============================================================
// Structural equality
// ============================================================

// Equal reports whether a and b have the same shape and the same label at
// every position. Two absent trees are equal.
func Equal(a, b *tree.Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Label == b.Label && Equal(a.Left, b.Left) && Equal(a.Right, b.Right)
}

// ============================================================
// Simplification
// ============================================================

// Rule rewrites an operator node whose operands have already been
// simplified. Apply reports false when the rule does not match.
type Rule struct {
	Name  string
	Op    string // empty matches every operator
	Apply func(op string, left, right *tree.Node) (*tree.Node, bool)
}

// RuleSet is an ordered list of rules; the first matching rule wins. A node
// no rule matches is rebuilt over its simplified operands.
type RuleSet []Rule

// Simplify rewrites t bottom-up with the rules in rs.
func (rs RuleSet) Simplify(t *tree.Node) (*tree.Node, error) {
	if err := Validate(t); err != nil {
		return nil, err
	}
	return rs.rewrite(t), nil
}

func (rs RuleSet) rewrite(n *tree.Node) *tree.Node {
	if n.IsLeaf() {
		return tree.New(n.Label)
	}
	left := rs.rewrite(n.Left)
	right := rs.rewrite(n.Right)
	for _, r := range rs {
		if r.Op != "" && r.Op != n.Label {
			continue
		}
		if out, ok := r.Apply(n.Label, left, right); ok {
			return out
		}
	}
	return tree.Attach(n.Label, left, right)
}

// FoldRule evaluates an operator whose operands are both integer literals.
var FoldRule = Rule{Name: "fold", Apply: fold}

func fold(op string, left, right *tree.Node) (*tree.Node, bool) {
	if !left.IsLeaf() || !right.IsLeaf() {
		return nil, false
	}
	if IsVariable(left.Label) || IsVariable(right.Label) {
		return nil, false
	}
	a, ok := literalValue(left.Label)
	if !ok {
		return nil, false
	}
	b, ok := literalValue(right.Label)
	if !ok {
		return nil, false
	}
	var v int64
	switch op {
	case OpAdd:
		v = a + b
	case OpSub:
		v = a - b
	case OpMul:
		v = a * b
	default:
		return nil, false
	}
	return tree.New(strconv.FormatInt(v, 10)), true
}

// ArithmeticRules only folds constant subexpressions.
var ArithmeticRules = RuleSet{FoldRule}

// IdentityRules applies x-x=0, x+0=x, 0+x=x, x-0=x, x*0=0, 0*x=0, 1*x=x and
// x*1=x before folding. 0-x is left alone. The 0 and 1 checks compare leaf
// labels exactly.
var IdentityRules = RuleSet{
	{Name: "self-subtract", Op: OpSub, Apply: func(_ string, l, r *tree.Node) (*tree.Node, bool) {
		if Equal(l, r) {
			return tree.New("0"), true
		}
		return nil, false
	}},
	{Name: "add-zero", Op: OpAdd, Apply: func(_ string, l, r *tree.Node) (*tree.Node, bool) {
		switch {
		case isLeafLabel(r, "0"):
			return l, true
		case isLeafLabel(l, "0"):
			return r, true
		}
		return nil, false
	}},
	{Name: "subtract-zero", Op: OpSub, Apply: func(_ string, l, r *tree.Node) (*tree.Node, bool) {
		if isLeafLabel(r, "0") {
			return l, true
		}
		return nil, false
	}},
	{Name: "multiply-zero", Op: OpMul, Apply: func(_ string, l, r *tree.Node) (*tree.Node, bool) {
		if isLeafLabel(r, "0") || isLeafLabel(l, "0") {
			return tree.New("0"), true
		}
		return nil, false
	}},
	{Name: "multiply-one", Op: OpMul, Apply: func(_ string, l, r *tree.Node) (*tree.Node, bool) {
		switch {
		case isLeafLabel(l, "1"):
			return r, true
		case isLeafLabel(r, "1"):
			return l, true
		}
		return nil, false
	}},
	FoldRule,
}

// Simplify folds every subtree whose operands are all integer literals.
func Simplify(t *tree.Node) (*tree.Node, error) { return ArithmeticRules.Simplify(t) }

// SimplifyFancy is Simplify plus the algebraic identities in IdentityRules.
func SimplifyFancy(t *tree.Node) (*tree.Node, error) { return IdentityRules.Simplify(t) }

// ============================================================
// Substitution
// ============================================================

// Values maps variable names to the integers substituted for them. A nil
// entry is a binding without a value; substituting it is an error.
type Values map[string]*int64

// Int returns a pointer to v, for building Values literals.
func Int(v int64) *int64 { return &v }

// ValuesOf converts a plain map into Values.
func ValuesOf(m map[string]int64) Values {
	vs := make(Values, len(m))
	for k, v := range m {
		vs[k] = Int(v)
	}
	return vs
}

// Substitute replaces every leaf labelled variable with value.
func Substitute(t *tree.Node, variable string, value int64) (*tree.Node, error) {
	if err := Validate(t); err != nil {
		return nil, err
	}
	switch {
	case variable == "":
		return nil, invalid("empty variable name")
	case IsOperator(variable):
		return nil, invalid("variable %q is an operator", variable)
	case variable[0] >= '0' && variable[0] <= '9':
		return nil, invalid("variable %q starts with a digit", variable)
	}
	lit := strconv.FormatInt(value, 10)
	return substituteLeaves(t, func(label string) (string, bool, error) {
		return lit, label == variable, nil
	})
}

// SubstituteAll replaces every leaf whose label is a key of values.
func SubstituteAll(t *tree.Node, values Values) (*tree.Node, error) {
	if err := Validate(t); err != nil {
		return nil, err
	}
	if values == nil {
		return nil, invalid("nil substitution map")
	}
	return substituteLeaves(t, func(label string) (string, bool, error) {
		v, bound := values[label]
		if !bound {
			return "", false, nil
		}
		if v == nil {
			return "", false, invalid("variable %q is bound to no value", label)
		}
		return strconv.FormatInt(*v, 10), true, nil
	})
}

func substituteLeaves(n *tree.Node, lookup func(label string) (string, bool, error)) (*tree.Node, error) {
	if n.IsLeaf() {
		repl, ok, err := lookup(n.Label)
		if err != nil {
			return nil, err
		}
		if ok {
			return tree.New(repl), nil
		}
		return tree.New(n.Label), nil
	}
	left, err := substituteLeaves(n.Left, lookup)
	if err != nil {
		return nil, err
	}
	right, err := substituteLeaves(n.Right, lookup)
	if err != nil {
		return nil, err
	}
	return tree.Attach(n.Label, left, right), nil
}

// ============================================================
// Free variables and evaluation
// ============================================================

// FreeVariables returns the sorted, de-duplicated labels of every leaf that
// is not an integer literal.
func FreeVariables(t *tree.Node) ([]string, error) {
	if err := Validate(t); err != nil {
		return nil, err
	}
	var names []string
	t.Walk(func(n *tree.Node) bool {
		if n.IsLeaf() && !IsLiteral(n.Label) {
			names = append(names, n.Label)
		}
		return true
	})
	names = lo.Uniq(names)
	slices.Sort(names)
	return names, nil
}

// Evaluate substitutes values into t and folds the result to one integer.
func Evaluate(t *tree.Node, values Values) (int64, error) {
	sub, err := SubstituteAll(t, values)
	if err != nil {
		return 0, err
	}
	folded := ArithmeticRules.rewrite(sub)
	if v, ok := literalValue(folded.Label); ok && folded.IsLeaf() {
		return v, nil
	}
	free, _ := FreeVariables(folded)
	return 0, fmt.Errorf("%w: %s", ErrUnboundVariable, strings.Join(free, ", "))
}

// ============================================================
// JSON Serialization
// ============================================================

// ToJSON encodes t as nested {"label", "left", "right"} objects.
func ToJSON(t *tree.Node) (string, error) {
	if t == nil {
		return "", invalid("empty tree")
	}
	b, err := json.Marshal(t)
	return string(b), err
}

// FromJSON decodes the form written by ToJSON. The result is not validated,
// so malformed trees survive the round trip.
func FromJSON(data []byte) (*tree.Node, error) {
	var t *tree.Node
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	if t == nil {
		return nil, invalid("empty tree")
	}
	return t, nil
}
