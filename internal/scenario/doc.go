// Package scenario defines the format-agnostic scenario configuration model
// and the expansion of scenario axes into independent run instances.
//
// A Config is produced once by a descriptor loader, validated, and then
// treated as read-only for the lifetime of the run. Every pipeline stage
// receives the same *Config; nothing mutates it after load.
package scenario
