// Package sim provides the discrete-event simulation kernel of hospital-sim:
// customers flow through registration, then a general or specialist
// examination, then leave.
//
// # Reading Guide
//
// Start with these three files to understand the kernel:
//   - customer.go: Customer lifecycle (queued → in service → departed)
//   - service_unit.go: a station's wait queue, service points and departure scheduling
//   - engine.go: the three-phase loop (A: advance clock, B: process same-instant
//     events, C: one sweep starting new services)
//
// # Architecture
//
// The sim package holds the kernel; supporting packages live underneath:
//   - sim/trace/: notification records, observers and the non-blocking stream
//   - sim/record/: SQLite persistence of notifications and results
//
// # Key Interfaces
//
// The extension points are single-method interfaces:
//   - Distribution: interarrival and service time samplers (NegExp, Normal, Constant)
//   - trace.Observer: consumers of the per-event notification stream
package sim
