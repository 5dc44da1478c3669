// Package compile runs the analysis pipeline end to end over one immutable
// program snapshot: dependency graph, annotation, classification,
// partitioning. Every pass is synchronous and rebuilt from scratch per
// compilation; nothing is reused across edits.
package compile

import (
	"context"
	"fmt"

	"github.com/weftlang/weft/internal/annotate"
	"github.com/weftlang/weft/internal/backend"
	"github.com/weftlang/weft/internal/ctxlog"
	"github.com/weftlang/weft/internal/depgraph"
	"github.com/weftlang/weft/internal/ir"
	"github.com/weftlang/weft/internal/partition"
	"github.com/weftlang/weft/internal/purity"
)

// Artifacts is everything one compilation produces for the backend code
// generators: the annotated signal map and the swatch graph, plus the
// intermediate results for tooling.
type Artifacts struct {
	Program  *ir.Program
	Graph    *depgraph.Graph
	Signals  map[string]annotate.Signal
	Analysis *purity.Analysis
	Swatches *partition.SwatchGraph
}

// Compile runs the full pipeline. It fails on a hard reference cycle among
// bundles or a cyclic swatch graph; everything else degrades per pass.
func Compile(ctx context.Context, program *ir.Program, reg *backend.Registry) (*Artifacts, error) {
	logger := ctxlog.FromContext(ctx)

	graph := depgraph.Build(program)
	if _, err := graph.TopologicalSort(); err != nil {
		return nil, fmt.Errorf("validating dependency graph: %w", err)
	}
	logger.Debug("Dependency graph built.", "bundles", len(program.Bundles))

	signals := annotate.Annotate(program, reg.CoordinateSpace(), reg.Builtins())
	logger.Debug("Annotation pass complete.", "signals", len(signals))

	analysis := purity.Analyze(program, graph, reg)
	logger.Debug("Classification converged.",
		"pure", len(analysis.Bundles(purity.Pure)),
		"stateful", len(analysis.Bundles(purity.Stateful)),
		"external", len(analysis.Bundles(purity.External)))

	swatches, err := partition.Partition(program, graph, analysis, reg)
	if err != nil {
		return nil, fmt.Errorf("partitioning: %w", err)
	}
	logger.Debug("Partitioning complete.", "swatches", len(swatches.Swatches))

	return &Artifacts{
		Program:  program,
		Graph:    graph,
		Signals:  signals,
		Analysis: analysis,
		Swatches: swatches,
	}, nil
}
