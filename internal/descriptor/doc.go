// Package descriptor loads scenario descriptor files into the
// format-agnostic scenario.Config model.
//
// Two on-disk forms are supported: HCL (the project's native configuration
// language) and YAML (the form used by upstream energy-system tooling).
// Both adapters produce identical Config values for equivalent input; the
// top-level Load dispatches on file extension.
package descriptor
