// Package annotate is the type-inference pass of the pipeline. For every
// strand it computes what the signal varies over (its domain of dimensions,
// each free or bound), what hardware capability it requires, and whether it
// carries memory.
//
// The pass never fails. Unknown coordinates, unknown builtins and dynamic
// strand selectors degrade to empty answers; a reference cycle not mediated
// by a cache yields a conservative placeholder instead of infinite
// recursion. Later stages consume these best-effort static facts.
package annotate
