// Package domain contains the core domain entities and value objects for fixship.
//
// This package represents the innermost layer of the architecture. It has
// no dependencies on infrastructure concerns (network, Redis, NATS, logging)
// and contains only the data the agent moves around.
//
// # Entities
//
//   - [Envelope]: One decoded FIX message with its session context
//   - [Batch]: An aggregate of envelopes ready to be published together
//   - [Session]: An active inbound FIX stream and its identity
//   - [Checkpoint]: Persistent ingest counters for crash diagnostics
package domain
