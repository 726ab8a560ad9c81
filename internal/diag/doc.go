// Package diag defines the diagnostic model used by the source scanner.
//
// Diagnostic is the central record: a Severity, a numeric Code with a stable
// string ID (LEX1001, IO4001), a short Message, the primary source.Span and
// optional Notes pointing at related spans.
//
// Producers report through the Reporter interface or add to a Bag directly.
// A Bag caps how many diagnostics it keeps so a pathological file cannot flood
// the output; Sort and Dedup give a deterministic order before rendering.
//
// Rendering lives next to the model: Pretty prints colored, caret-underlined
// excerpts, JSON emits a machine readable document and Short prints one
// position-first line per diagnostic for editors and grep.
package diag
