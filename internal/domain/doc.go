// Package domain contains the core model for thermosweep: the sweep
// configuration, the per-item analysis document, the mesh model and the run
// artifact.
//
// The domain does not depend on YAML parsing, external processes or the
// filesystem. Infra adapters map into/from these types.
package domain
