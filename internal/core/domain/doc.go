// Package domain defines the core business entities for docask.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A candidate document retrieved for one query
//   - ScopeGroup: A weighted set of storage locations a user may search
//   - Registry: The read-only user/folder snapshot
//   - KnowledgeTable: Static product and vendor definitions
//   - Answer: The synthesised response to a question
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
