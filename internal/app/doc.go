// Package app wires the application together: it configures the logger,
// loads and validates the scenario descriptor, and drives the pipeline.
package app
