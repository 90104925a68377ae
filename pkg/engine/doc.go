// Package engine defines the boundary between the EmberDB driver and the
// component that actually talks to an EmberDB server (a wire-protocol client
// or a native library binding).
//
// The driver packages in this module never perform network or library calls
// themselves; every server interaction goes through the Engine interface.
// Implementations are expected to be safe for concurrent use across distinct
// handles, while calls sharing a transaction handle are serialized by the
// driver layer above.
//
// All failures raised by an engine carry a numeric SQL error code and the
// server's multi-line diagnostic text, surfaced as *engine.Error. The driver
// preserves both verbatim when wrapping them into its own error taxonomy.
package engine
