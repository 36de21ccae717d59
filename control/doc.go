// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, runtime metrics and debug introspection for the dispatcher.
//
// Provides:
//   - Config loading from TOML or YAML with validation and a BLAKE3 digest
//   - A concurrent-safe metrics registry the dispatcher publishes counters to
//   - Probe registration and state export
//
// This package is cross-platform and build-tag-partitioned as needed.
package control
