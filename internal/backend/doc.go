// Package backend holds the declarative per-backend metadata the analysis
// passes are driven by: owned hardware tags, builtin specifications,
// coordinate declarations, and the designated sink bundle.
//
// The Registry is populated once at startup (from Go registration calls,
// HCL manifests, or both) and treated as read-only for the rest of any
// compilation. No backend is special-cased by name anywhere in the analysis
// code; adding a backend means registering another descriptor.
package backend
