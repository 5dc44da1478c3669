package ir

// Walk visits e and every sub-expression in pre-order. A nil expression is
// skipped, so optional children can be walked unconditionally.
func Walk(e Expr, visit func(Expr)) {
	if e == nil {
		return
	}
	visit(e)
	switch x := e.(type) {
	case BundleRef:
		Walk(x.Index, visit)
	case Unary:
		Walk(x.X, visit)
	case Binary:
		Walk(x.L, visit)
		Walk(x.R, visit)
	case Call:
		for _, a := range x.Args {
			Walk(a, visit)
		}
	case SpindleCall:
		for _, a := range x.Args {
			Walk(a, visit)
		}
	case Extract:
		Walk(x.Call, visit)
	case Remap:
		Walk(x.Base, visit)
		for _, s := range x.Subs {
			Walk(s.Repl, visit)
		}
	case CacheRead:
		Walk(x.Tap, visit)
	}
}
