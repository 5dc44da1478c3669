package ir

// Expr is the expression sum type. Variants are immutable once built.
type Expr interface {
	exprNode()
}

// Literal is a constant number.
type Literal struct {
	Value float64
}

func (Literal) exprNode() {}

// CoordRef reads one axis of the evaluation coordinate, e.g. `me.x`. The
// referenced dimension's access level comes from the coordinate space the
// annotation pass is run with; an unknown name annotates as empty domain.
type CoordRef struct {
	Name string
}

func (CoordRef) exprNode() {}

// BundleRef reads a strand of another bundle (or the enclosing bundle, which
// is how feedback is written). Exactly one of Strand and Index is set: Strand
// names the target statically, Index selects it with a computed expression.
type BundleRef struct {
	Bundle string
	Strand string
	Index  Expr
}

func (BundleRef) exprNode() {}

// Dynamic reports whether the strand selector is a computed expression.
func (r BundleRef) Dynamic() bool { return r.Index != nil }

// ParamRef reads a spindle parameter or local binding. It only occurs inside
// spindle bodies, which the analysis passes never descend into; call sites
// are annotated through their arguments instead.
type ParamRef struct {
	Name string
}

func (ParamRef) exprNode() {}

// Unary applies a unary operator.
type Unary struct {
	Op string
	X  Expr
}

func (Unary) exprNode() {}

// Binary applies a binary operator.
type Binary struct {
	Op   string
	L, R Expr
}

func (Binary) exprNode() {}

// Call invokes a builtin by name.
type Call struct {
	Builtin string
	Args    []Expr
}

func (Call) exprNode() {}

// SpindleCall invokes a spindle template. Inlining happens in a later stage;
// the analysis passes treat the call conservatively through its arguments.
type SpindleCall struct {
	Spindle string
	Args    []Expr
}

func (SpindleCall) exprNode() {}

// Extract selects one value out of a multi-return call.
type Extract struct {
	Call  Expr
	Index int
}

func (Extract) exprNode() {}

// Sub is one dimension substitution inside a Remap.
type Sub struct {
	Dim  string
	Repl Expr
}

// Remap rebinds dimensions of the base expression, e.g. `sig(x ~ other.val)`.
// Subs are kept sorted by dimension name so structurally equal remaps hash
// equal regardless of source order.
type Remap struct {
	Base Expr
	Subs []Sub
}

func (Remap) exprNode() {}

// CacheRead is a resolved read of a stateful cache. The tap index expression
// at the call site supplies whatever domain the read varies over; the read
// itself contributes none.
type CacheRead struct {
	Cache string
	Tap   Expr
}

func (CacheRead) exprNode() {}
