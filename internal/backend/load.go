package backend

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/weftlang/weft/internal/ctxlog"
	"github.com/weftlang/weft/internal/ir"
)

type manifestFile struct {
	Backends []*backendBlock `hcl:"backend,block"`
	Builtins []*builtinBlock `hcl:"builtin,block"`
}

type backendBlock struct {
	ID          string           `hcl:"id,label"`
	Hardware    []string         `hcl:"hardware,optional"`
	Sink        string           `hcl:"sink,optional"`
	Coordinates *dimensionsBlock `hcl:"coordinates,block"`
	Builtins    []*builtinBlock  `hcl:"builtin,block"`
}

type builtinBlock struct {
	Name      string           `hcl:"name,label"`
	Hardware  []string         `hcl:"hardware,optional"`
	AddsState bool             `hcl:"adds_state,optional"`
	Domain    *dimensionsBlock `hcl:"domain,block"`
}

// dimensionsBlock holds a block whose attribute names are dimension names and
// whose values are the access level, e.g. `x = "free"`.
type dimensionsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// LoadDir parses every .hcl manifest under dir and registers its contents.
// Parse and registration failures across files are aggregated so one broken
// manifest does not mask another.
func LoadDir(ctx context.Context, dir string, reg *Registry) error {
	logger := ctxlog.FromContext(ctx)

	paths, err := findManifests(dir)
	if err != nil {
		return fmt.Errorf("walking backend manifest directory %s: %w", dir, err)
	}
	if len(paths) == 0 {
		logger.Warn("No backend manifests found.", "path", dir)
		return nil
	}
	logger.Debug("Loading backend manifests.", "files", paths)

	var errs *multierror.Error
	for _, path := range paths {
		if err := LoadFile(ctx, path, reg); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// LoadFile parses one manifest file and registers its contents.
func LoadFile(ctx context.Context, path string, reg *Registry) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("parsing manifest %s: %w", path, diags)
	}
	return registerManifest(ctx, file.Body, path, reg)
}

// LoadSource parses manifest source text, for tests and embedded defaults.
func LoadSource(ctx context.Context, src []byte, filename string, reg *Registry) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("parsing manifest %s: %w", filename, diags)
	}
	return registerManifest(ctx, file.Body, filename, reg)
}

func registerManifest(ctx context.Context, body hcl.Body, path string, reg *Registry) error {
	logger := ctxlog.FromContext(ctx)

	var manifest manifestFile
	if diags := gohcl.DecodeBody(body, nil, &manifest); diags.HasErrors() {
		return fmt.Errorf("decoding manifest %s: %w", path, diags)
	}

	var errs *multierror.Error
	for _, block := range manifest.Backends {
		b, err := buildBackend(block)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: backend %q: %w", path, block.ID, err))
			continue
		}
		if err := reg.Register(b); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		logger.Debug("Registered backend.", "id", b.ID, "hardware", b.Hardware.Tags(), "sink", b.Sink)
	}
	for _, block := range manifest.Builtins {
		spec, err := buildBuiltin(block)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: builtin %q: %w", path, block.Name, err))
			continue
		}
		if err := reg.RegisterBuiltin(spec); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", path, err))
		}
	}
	return errs.ErrorOrNil()
}

func buildBackend(block *backendBlock) (*Backend, error) {
	b := &Backend{
		ID:       block.ID,
		Hardware: ir.NewHardware(block.Hardware...),
		Sink:     block.Sink,
		Builtins: make(map[string]BuiltinSpec, len(block.Builtins)),
	}
	if block.Coordinates != nil {
		coords, err := decodeDimensions(block.Coordinates.Body)
		if err != nil {
			return nil, fmt.Errorf("coordinates: %w", err)
		}
		b.Coordinates = coords
	}
	for _, builtin := range block.Builtins {
		spec, err := buildBuiltin(builtin)
		if err != nil {
			return nil, fmt.Errorf("builtin %q: %w", builtin.Name, err)
		}
		b.Builtins[spec.Name] = spec
	}
	return b, nil
}

func buildBuiltin(block *builtinBlock) (BuiltinSpec, error) {
	spec := BuiltinSpec{
		Name:      block.Name,
		Hardware:  ir.NewHardware(block.Hardware...),
		AddsState: block.AddsState,
	}
	if block.Domain != nil {
		domain, err := decodeDimensions(block.Domain.Body)
		if err != nil {
			return BuiltinSpec{}, fmt.Errorf("domain: %w", err)
		}
		// A declared domain block, even an empty one, means REPLACE semantics.
		if domain == nil {
			domain = ir.Domain{}
		}
		spec.Domain = domain
	}
	return spec, nil
}

func decodeDimensions(body hcl.Body) (ir.Domain, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("reading dimension attributes: %w", diags)
	}
	var dims []ir.Dimension
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("dimension %q: %w", name, diags)
		}
		if val.Type() != cty.String {
			return nil, fmt.Errorf("dimension %q: access must be a string", name)
		}
		var access ir.Access
		switch strings.ToLower(val.AsString()) {
		case "free":
			access = ir.Free
		case "bound":
			access = ir.Bound
		default:
			return nil, fmt.Errorf("dimension %q: access must be \"free\" or \"bound\", got %q", name, val.AsString())
		}
		dims = append(dims, ir.Dimension{Name: name, Access: access})
	}
	return ir.NewDomain(dims...), nil
}

func findManifests(dir string) ([]string, error) {
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
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
