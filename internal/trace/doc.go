// Package trace provides the event tracing layer for ecmacore.
//
// The heap, the collector and the scan driver report what they do through a Tracer
// instead of a general purpose logger. Tracing is off by default and costs a nil check.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	ecmacore gc demo --trace=- --trace-level=detail
//
// # Architecture
//
//   - Nop: no-op tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer, dumped to the output on Close
//   - MultiTracer: combines multiple tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: heap misuse reports only
//   - LevelPhase: driver and pass boundaries (collections, scans)
//   - LevelDetail: per-file and per-root events
//   - LevelDebug: everything including per-object alloc and free
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	ctx, span := trace.StartSpan(ctx, trace.ScopePass, "gc.collect")
//	defer span.End("")
//
// Spans started from the returned ctx nest under gc.collect.
package trace
