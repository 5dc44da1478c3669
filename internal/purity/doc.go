// Package purity reduces strand annotations to a per-bundle category on the
// ordered scale pure < stateful < external, plus a backend affinity, and
// propagates both to a fixed point over the dependency graph. A bundle can
// only escalate during propagation, never relax, which bounds the iteration
// by the bundle count.
package purity
