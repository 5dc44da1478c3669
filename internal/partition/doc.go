// Package partition assigns bundles to backend-specific compilation units
// (swatches), duplicates pure bundles into every swatch that wants them, and
// makes the remaining cross-swatch data flow explicit as named buffers plus
// a dependency DAG between swatches.
package partition
