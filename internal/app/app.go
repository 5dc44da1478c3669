// Package app wires the compiler together: it loads backend manifests and
// program files, runs the analysis pipeline, and renders the result.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/weftlang/weft/internal/backend"
	"github.com/weftlang/weft/internal/compile"
	"github.com/weftlang/weft/internal/ctxlog"
	"github.com/weftlang/weft/internal/lower"
)

// App is one configured compiler invocation.
type App struct {
	out io.Writer
	cfg *Config
}

// NewApp creates an App writing rendered output to outW.
func NewApp(outW io.Writer, cfg *Config) *App {
	return &App{out: outW, cfg: cfg}
}

// Run performs one full compilation.
func (a *App) Run(ctx context.Context) error {
	logger := newLogger(a.cfg, os.Stderr)
	ctx = ctxlog.WithLogger(ctx, logger)

	reg := backend.NewRegistry()
	if err := backend.LoadDir(ctx, a.cfg.BackendsPath, reg); err != nil {
		return fmt.Errorf("loading backend manifests: %w", err)
	}
	if len(reg.Backends()) == 0 {
		return fmt.Errorf("no backends registered from %s", a.cfg.BackendsPath)
	}

	program, err := lower.LoadDir(ctx, a.cfg.ProgramPath)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	logger.Info("Program loaded.", "bundles", len(program.Bundles), "spindles", len(program.Spindles))

	artifacts, err := compile.Compile(ctx, program, reg)
	if err != nil {
		return err
	}
	logger.Info("Compilation complete.", "swatches", len(artifacts.Swatches.Swatches))

	if a.cfg.Output == "json" {
		return renderJSON(a.out, artifacts)
	}
	return renderTree(a.out, artifacts)
}
