package lower

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/weftlang/weft/internal/ir"
)

// Builtin names with dedicated expression forms rather than Call lowering.
const (
	remapFunc = "remap"
	pickFunc  = "pick"
)

var binaryOps = map[*hclsyntax.Operation]string{
	hclsyntax.OpAdd:                "+",
	hclsyntax.OpSubtract:           "-",
	hclsyntax.OpMultiply:           "*",
	hclsyntax.OpDivide:             "/",
	hclsyntax.OpModulo:             "%",
	hclsyntax.OpEqual:              "==",
	hclsyntax.OpNotEqual:           "!=",
	hclsyntax.OpGreaterThan:        ">",
	hclsyntax.OpGreaterThanOrEqual: ">=",
	hclsyntax.OpLessThan:           "<",
	hclsyntax.OpLessThanOrEqual:    "<=",
	hclsyntax.OpLogicalAnd:         "&&",
	hclsyntax.OpLogicalOr:          "||",
}

var unaryOps = map[*hclsyntax.Operation]string{
	hclsyntax.OpNegate:     "-",
	hclsyntax.OpLogicalNot: "!",
}

// exprLowerer carries the spindle name set, which decides whether a call
// lowers to a builtin Call or a SpindleCall.
type exprLowerer struct {
	spindles map[string]bool
}

func (l *exprLowerer) lower(expr hcl.Expression) (ir.Expr, error) {
	switch e := expr.(type) {
	case *hclsyntax.LiteralValueExpr:
		return lowerLiteral(e)

	case *hclsyntax.ParenthesesExpr:
		return l.lower(e.Expression)

	case *hclsyntax.ScopeTraversalExpr:
		return l.lowerTraversal(e.Traversal)

	case *hclsyntax.IndexExpr:
		return l.lowerIndex(e)

	case *hclsyntax.UnaryOpExpr:
		op, ok := unaryOps[e.Op]
		if !ok {
			return nil, rangeErr(e.Range(), "unsupported unary operator")
		}
		x, err := l.lower(e.Val)
		if err != nil {
			return nil, err
		}
		return ir.Unary{Op: op, X: x}, nil

	case *hclsyntax.BinaryOpExpr:
		op, ok := binaryOps[e.Op]
		if !ok {
			return nil, rangeErr(e.Range(), "unsupported binary operator")
		}
		lhs, err := l.lower(e.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := l.lower(e.RHS)
		if err != nil {
			return nil, err
		}
		return ir.Binary{Op: op, L: lhs, R: rhs}, nil

	case *hclsyntax.FunctionCallExpr:
		return l.lowerCall(e)
	}
	return nil, rangeErr(expr.Range(), fmt.Sprintf("unsupported expression form %T", expr))
}

func lowerLiteral(e *hclsyntax.LiteralValueExpr) (ir.Expr, error) {
	switch e.Val.Type() {
	case cty.Number:
		f, _ := e.Val.AsBigFloat().Float64()
		return ir.Literal{Value: f}, nil
	case cty.Bool:
		if e.Val.True() {
			return ir.Literal{Value: 1}, nil
		}
		return ir.Literal{Value: 0}, nil
	}
	return nil, rangeErr(e.Range(), "only number and bool literals are supported")
}

// lowerTraversal maps `me.x` to a coordinate read, `bundle.strand` to a
// static bundle reference, and a bare name to a spindle parameter/local.
func (l *exprLowerer) lowerTraversal(t hcl.Traversal) (ir.Expr, error) {
	root, ok := t[0].(hcl.TraverseRoot)
	if !ok {
		return nil, rangeErr(t.SourceRange(), "expected a named reference")
	}
	if len(t) == 1 {
		return ir.ParamRef{Name: root.Name}, nil
	}
	attr, ok := t[1].(hcl.TraverseAttr)
	if !ok {
		return nil, rangeErr(t.SourceRange(), "expected attribute access after name")
	}
	if len(t) > 2 {
		return nil, rangeErr(t.SourceRange(), "references are at most two levels deep")
	}
	if root.Name == ir.CoordinateBundle {
		return ir.CoordRef{Name: attr.Name}, nil
	}
	return ir.BundleRef{Bundle: root.Name, Strand: attr.Name}, nil
}

// lowerIndex maps `bundle[expr]` to a dynamic bundle reference.
func (l *exprLowerer) lowerIndex(e *hclsyntax.IndexExpr) (ir.Expr, error) {
	coll, ok := e.Collection.(*hclsyntax.ScopeTraversalExpr)
	if !ok || len(coll.Traversal) != 1 {
		return nil, rangeErr(e.Range(), "index base must be a bundle name")
	}
	root, ok := coll.Traversal[0].(hcl.TraverseRoot)
	if !ok {
		return nil, rangeErr(e.Range(), "index base must be a bundle name")
	}
	key, err := l.lower(e.Key)
	if err != nil {
		return nil, err
	}
	return ir.BundleRef{Bundle: root.Name, Index: key}, nil
}

func (l *exprLowerer) lowerCall(e *hclsyntax.FunctionCallExpr) (ir.Expr, error) {
	switch e.Name {
	case remapFunc:
		return l.lowerRemap(e)
	case pickFunc:
		return l.lowerPick(e)
	}

	args := make([]ir.Expr, len(e.Args))
	for i, arg := range e.Args {
		lowered, err := l.lower(arg)
		if err != nil {
			return nil, err
		}
		args[i] = lowered
	}
	if l.spindles[e.Name] {
		return ir.SpindleCall{Spindle: e.Name, Args: args}, nil
	}
	return ir.Call{Builtin: e.Name, Args: args}, nil
}

// lowerRemap handles `remap(base, { x = other.val })`.
func (l *exprLowerer) lowerRemap(e *hclsyntax.FunctionCallExpr) (ir.Expr, error) {
	if len(e.Args) != 2 {
		return nil, rangeErr(e.Range(), "remap takes a base expression and a substitution object")
	}
	base, err := l.lower(e.Args[0])
	if err != nil {
		return nil, err
	}
	obj, ok := e.Args[1].(*hclsyntax.ObjectConsExpr)
	if !ok {
		return nil, rangeErr(e.Args[1].Range(), "remap substitutions must be an object")
	}

	subs := make([]ir.Sub, 0, len(obj.Items))
	for _, item := range obj.Items {
		dim := hcl.ExprAsKeyword(item.KeyExpr)
		if dim == "" {
			return nil, rangeErr(item.KeyExpr.Range(), "remap substitution keys must be dimension names")
		}
		repl, err := l.lower(item.ValueExpr)
		if err != nil {
			return nil, err
		}
		subs = append(subs, ir.Sub{Dim: dim, Repl: repl})
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].Dim < subs[j].Dim })
	return ir.Remap{Base: base, Subs: subs}, nil
}

// lowerPick handles `pick(call, index)`, the multi-return extraction form.
func (l *exprLowerer) lowerPick(e *hclsyntax.FunctionCallExpr) (ir.Expr, error) {
	if len(e.Args) != 2 {
		return nil, rangeErr(e.Range(), "pick takes a call and a constant index")
	}
	call, err := l.lower(e.Args[0])
	if err != nil {
		return nil, err
	}
	idx, err := l.lower(e.Args[1])
	if err != nil {
		return nil, err
	}
	lit, ok := idx.(ir.Literal)
	if !ok {
		return nil, rangeErr(e.Args[1].Range(), "pick index must be a constant number")
	}
	return ir.Extract{Call: call, Index: int(lit.Value)}, nil
}

func rangeErr(r hcl.Range, msg string) error {
	return fmt.Errorf("%s: %s", r.String(), msg)
}
