// Package store provides SQLite-backed storage for circuits.
//
// Circuits are stored in their CBOR form together with their
// fingerprint. Each row carries:
//   - id: UUIDv7, assigned on save
//   - name: the circuit's name in its source file
//   - seq: logical clock, strictly increasing per database
//   - parent_id and bindings: set when a row was derived by assigning
//     parameters of another row
//
// # Ordering
//
// All list queries use ORDER BY seq ASC, id ASC COLLATE BINARY so that
// results are identical across runs.
//
// # Integrity
//
// Load decodes the payload and recomputes the fingerprint. A mismatch
// fails with ErrFingerprintMismatch rather than returning a circuit
// that differs from what was saved.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: parent_id must name a stored circuit
package store
