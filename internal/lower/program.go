package lower

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/weftlang/weft/internal/ctxlog"
	"github.com/weftlang/weft/internal/ir"
)

type programFile struct {
	Bundles  []*bundleBlock  `hcl:"bundle,block"`
	Spindles []*spindleBlock `hcl:"spindle,block"`
}

type bundleBlock struct {
	Name    string         `hcl:"name,label"`
	Strands []*strandBlock `hcl:"strand,block"`
}

type strandBlock struct {
	Name string         `hcl:"name,label"`
	Expr hcl.Expression `hcl:"expr,optional"`
}

type spindleBlock struct {
	Name    string         `hcl:"name,label"`
	Params  []string       `hcl:"params,optional"`
	Locals  []*localBlock  `hcl:"local,block"`
	Returns hcl.Expression `hcl:"returns,optional"`
}

type localBlock struct {
	Name string         `hcl:"name,label"`
	Expr hcl.Expression `hcl:"expr,optional"`
}

// missingExpr reports whether an expression attribute was left unset. gohcl
// substitutes a static null expression for a missing attribute rather than
// leaving the field nil; anything the hclsyntax parser produced implements
// hclsyntax.Expression, the placeholder does not.
func missingExpr(expr hcl.Expression) bool {
	if expr == nil {
		return true
	}
	_, parsed := expr.(hclsyntax.Expression)
	return !parsed
}

// LoadDir parses every .hcl file under dir into one program.
func LoadDir(ctx context.Context, dir string) (*ir.Program, error) {
	logger := ctxlog.FromContext(ctx)

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".hcl" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking program directory %s: %w", dir, err)
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no .hcl program files found under %s", dir)
	}
	logger.Debug("Loading program files.", "files", paths)

	parser := hclparse.NewParser()
	var files []*programFile
	var errs *multierror.Error
	for _, path := range paths {
		file, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			errs = multierror.Append(errs, fmt.Errorf("parsing %s: %w", path, diags))
			continue
		}
		decoded, err := decodeFile(file.Body, path)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		files = append(files, decoded)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return buildProgram(files)
}

// LoadSource parses program source text, for tests and tooling.
func LoadSource(src []byte, filename string) (*ir.Program, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", filename, diags)
	}
	decoded, err := decodeFile(file.Body, filename)
	if err != nil {
		return nil, err
	}
	return buildProgram([]*programFile{decoded})
}

func decodeFile(body hcl.Body, path string) (*programFile, error) {
	var file programFile
	if diags := gohcl.DecodeBody(body, nil, &file); diags.HasErrors() {
		return nil, fmt.Errorf("decoding %s: %w", path, diags)
	}
	return &file, nil
}

// buildProgram lowers decoded blocks in two phases: collect spindle names
// first so call sites can tell spindles from builtins, then lower every
// expression.
func buildProgram(files []*programFile) (*ir.Program, error) {
	program := ir.NewProgram()
	lowerer := &exprLowerer{spindles: make(map[string]bool)}

	for _, file := range files {
		for _, block := range file.Spindles {
			lowerer.spindles[block.Name] = true
		}
	}

	var errs *multierror.Error
	for _, file := range files {
		for _, block := range file.Bundles {
			if _, dup := program.Bundles[block.Name]; dup {
				errs = multierror.Append(errs, fmt.Errorf("bundle %q defined twice", block.Name))
				continue
			}
			bundle, err := lowerBundle(lowerer, block)
			if err != nil {
				errs = multierror.Append(errs, err)
				continue
			}
			program.Bundles[block.Name] = bundle
		}
		for _, block := range file.Spindles {
			if _, dup := program.Spindles[block.Name]; dup {
				errs = multierror.Append(errs, fmt.Errorf("spindle %q defined twice", block.Name))
				continue
			}
			spindle, err := lowerSpindle(lowerer, block)
			if err != nil {
				errs = multierror.Append(errs, err)
				continue
			}
			program.Spindles[block.Name] = spindle
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return program, nil
}

func lowerBundle(l *exprLowerer, block *bundleBlock) (*ir.Bundle, error) {
	bundle := &ir.Bundle{Name: block.Name}
	seen := make(map[string]bool, len(block.Strands))
	for _, strand := range block.Strands {
		if seen[strand.Name] {
			return nil, fmt.Errorf("bundle %q: strand %q defined twice", block.Name, strand.Name)
		}
		seen[strand.Name] = true
		if missingExpr(strand.Expr) {
			return nil, fmt.Errorf("bundle %q strand %q: an expr attribute is required", block.Name, strand.Name)
		}
		expr, err := l.lower(strand.Expr)
		if err != nil {
			return nil, fmt.Errorf("bundle %q strand %q: %w", block.Name, strand.Name, err)
		}
		bundle.Strands = append(bundle.Strands, ir.Strand{Name: strand.Name, Expr: expr})
	}
	return bundle, nil
}

func lowerSpindle(l *exprLowerer, block *spindleBlock) (*ir.Spindle, error) {
	spindle := &ir.Spindle{Name: block.Name, Params: block.Params}
	for _, local := range block.Locals {
		if missingExpr(local.Expr) {
			return nil, fmt.Errorf("spindle %q local %q: an expr attribute is required", block.Name, local.Name)
		}
		expr, err := l.lower(local.Expr)
		if err != nil {
			return nil, fmt.Errorf("spindle %q local %q: %w", block.Name, local.Name, err)
		}
		spindle.Locals = append(spindle.Locals, ir.Local{Name: local.Name, Expr: expr})
	}

	if missingExpr(block.Returns) {
		return nil, fmt.Errorf("spindle %q: a returns expression is required", block.Name)
	}
	returns, err := unpackReturns(l, block.Returns)
	if err != nil {
		return nil, fmt.Errorf("spindle %q: %w", block.Name, err)
	}
	if len(returns) == 0 {
		return nil, fmt.Errorf("spindle %q: at least one return expression is required", block.Name)
	}
	spindle.Returns = returns
	return spindle, nil
}

// unpackReturns accepts either a single expression or a tuple of them.
func unpackReturns(l *exprLowerer, expr hcl.Expression) ([]ir.Expr, error) {
	if tuple, ok := expr.(*hclsyntax.TupleConsExpr); ok {
		out := make([]ir.Expr, 0, len(tuple.Exprs))
		for _, item := range tuple.Exprs {
			lowered, err := l.lower(item)
			if err != nil {
				return nil, err
			}
			out = append(out, lowered)
		}
		return out, nil
	}
	lowered, err := l.lower(expr)
	if err != nil {
		return nil, err
	}
	return []ir.Expr{lowered}, nil
}
