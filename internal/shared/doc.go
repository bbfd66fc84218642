// Package shared holds cross-cutting utilities that do not belong to any
// specific domain or architectural layer.
//
// The testutil subpackage provides an in-memory slog handler so tests can
// assert on structured log output (messages, levels, attributes) without
// parsing serialized log lines.
//
// This package should only contain test utilities and generic helpers used
// by multiple packages. Business logic and domain-specific code live in
// their own packages.
package shared
