package exprtree

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/jasoncai1227/manipulating-binary-trees-which-represent-arithmetic-expressions/tree"
)

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	Prefix string      `json:"prefix,omitempty"`
	Infix  string      `json:"infix,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Failed reports whether the call produced an error.
func (r ToolResponse) Failed() bool { return r.Error != "" }

// HandleToolCall runs one tool. Expression params ("expr", "a", "b") accept
// either a prefix string or a JSON tree object.
func HandleToolCall(req ToolRequest) ToolResponse {
	getTree := func(key string) (*tree.Node, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		return treeFromParam(key, v)
	}
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	getInt := func(key string) (int64, error) {
		v, ok := req.Params[key]
		if !ok {
			return 0, fmt.Errorf("missing param: %s", key)
		}
		return intFromParam(key, v)
	}
	getValues := func(key string) (Values, error) {
		v, ok := req.Params[key]
		if !ok || v == nil {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		raw, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be an object", key)
		}
		vals := make(Values, len(raw))
		for name, x := range raw {
			if x == nil {
				vals[name] = nil
				continue
			}
			n, err := intFromParam(key+"."+name, x)
			if err != nil {
				return nil, err
			}
			vals[name] = Int(n)
		}
		return vals, nil
	}
	fail := func(err error) ToolResponse { return ToolResponse{Error: err.Error()} }

	switch req.Tool {
	case "parse":
		s, err := getString("expr")
		if err != nil {
			return fail(err)
		}
		t, err := Parse(s)
		if err != nil {
			return fail(err)
		}
		return respondTree(t)

	case "is_expression":
		v, ok := req.Params["expr"]
		if !ok {
			return fail(fmt.Errorf("missing param: expr"))
		}
		t, err := treeFromParam("expr", v)
		return ToolResponse{Result: err == nil && IsArithmeticExpression(t)}

	case "to_prefix", "to_infix", "to_latex":
		t, err := getTree("expr")
		if err != nil {
			return fail(err)
		}
		render := map[string]func(*tree.Node) (string, error){
			"to_prefix": Tree2Prefix,
			"to_infix":  Tree2Infix,
			"to_latex":  Tree2LaTeX,
		}[req.Tool]
		s, err := render(t)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: s}

	case "simplify", "simplify_fancy":
		t, err := getTree("expr")
		if err != nil {
			return fail(err)
		}
		simplify := Simplify
		if req.Tool == "simplify_fancy" {
			simplify = SimplifyFancy
		}
		out, err := simplify(t)
		if err != nil {
			return fail(err)
		}
		return respondTree(out)

	case "substitute":
		t, err := getTree("expr")
		if err != nil {
			return fail(err)
		}
		name, err := getString("var")
		if err != nil {
			return fail(err)
		}
		value, err := getInt("value")
		if err != nil {
			return fail(err)
		}
		out, err := Substitute(t, name, value)
		if err != nil {
			return fail(err)
		}
		return respondTree(out)

	case "substitute_all":
		t, err := getTree("expr")
		if err != nil {
			return fail(err)
		}
		vals, err := getValues("values")
		if err != nil {
			return fail(err)
		}
		out, err := SubstituteAll(t, vals)
		if err != nil {
			return fail(err)
		}
		return respondTree(out)

	case "equals":
		a, err := getTree("a")
		if err != nil {
			return fail(err)
		}
		b, err := getTree("b")
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: Equal(a, b)}

	case "free_variables":
		t, err := getTree("expr")
		if err != nil {
			return fail(err)
		}
		names, err := FreeVariables(t)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: names}

	case "evaluate":
		t, err := getTree("expr")
		if err != nil {
			return fail(err)
		}
		vals := Values{}
		if _, ok := req.Params["values"]; ok {
			if vals, err = getValues("values"); err != nil {
				return fail(err)
			}
		}
		v, err := Evaluate(t, vals)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: v}

	case "tool_spec":
		return ToolResponse{Result: ToolSpec()}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

func respondTree(t *tree.Node) ToolResponse {
	prefix, err := Tree2Prefix(t)
	if err != nil {
		return ToolResponse{Error: err.Error()}
	}
	infix, _ := Tree2Infix(t)
	return ToolResponse{Result: t, Prefix: prefix, Infix: infix}
}

func treeFromParam(key string, v interface{}) (*tree.Node, error) {
	switch x := v.(type) {
	case string:
		return Parse(x)
	case map[string]interface{}:
		b, err := json.Marshal(x)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", key, err)
		}
		return FromJSON(b)
	}
	return nil, fmt.Errorf("param %s must be a prefix string or tree object", key)
}

func intFromParam(key string, v interface{}) (int64, error) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || n >= 1<<63 || n < -(1<<63) {
			return 0, fmt.Errorf("param %s must be an integer", key)
		}
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case json.Number:
		return n.Int64()
	}
	return 0, fmt.Errorf("param %s must be an integer", key)
}

// ============================================================
// Tool spec
// ============================================================

func ToolSpec() string {
	tools := []map[string]interface{}{
		ts("parse", "Parse a prefix expression into a tree", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("is_expression", "Report whether a tree is a well-formed arithmetic expression", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("to_prefix", "Render in prefix notation", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("to_infix", "Render in fully parenthesized infix notation", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("to_latex", "Render as LaTeX", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("simplify", "Fold constant subexpressions", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("simplify_fancy", "Fold constants and apply x*1=x, x*0=0, x+0=x, x-0=x, x-x=0", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("substitute", "Replace a variable with an integer", []string{"expr", "var", "value"}, map[string]string{"expr": "object", "var": "string", "value": "integer"}),
		ts("substitute_all", "Replace variables using a name->integer map", []string{"expr", "values"}, map[string]string{"expr": "object", "values": "object"}),
		ts("equals", "Structural equality of two trees", []string{"a", "b"}, map[string]string{"a": "object", "b": "object"}),
		ts("free_variables", "Sorted non-literal leaf labels", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("evaluate", "Substitute values and fold to one integer", []string{"expr"}, map[string]string{"expr": "object", "values": "object"}),
		ts("tool_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := lo.MapValues(props, func(typ string, _ string) map[string]interface{} {
		return map[string]interface{}{"type": typ}
	})
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
