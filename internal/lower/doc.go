// Package lower turns parsed HCL program blocks into the ir.Program the
// analysis pipeline consumes. It is the stand-in front door for the textual
// signal language: bundles, strands and spindles are HCL blocks, and strand
// expressions are hclsyntax expressions mapped structurally onto the ir
// expression kinds. Only HCL's existing parse tree is consumed here; no
// tokenizing of our own.
package lower
