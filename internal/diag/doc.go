// Package diag defines the diagnostic model shared by every phase of the
// attribute engine.
//
//   - Severity, Code and Diagnostic are deterministic, serialisable records.
//   - Reporter and Bag let producers emit diagnostics without coupling to
//     storage or formatting; rendering lives in internal/diagfmt.
//   - DelayedPool buffers soft findings (deprecation, availability,
//     forbidden-type) per nested declarator parse. A pool is drained into a
//     real reporter only when the enclosing declaration commits, and
//     discarded wholesale when the parse is abandoned.
//
// The code space is partitioned by family: ARG (structural argument
// problems), VAL (constant-value validation), APL (applicability), CFL
// (attribute conflicts), SEM (attribute-specific semantics), IO (driver).
package diag
