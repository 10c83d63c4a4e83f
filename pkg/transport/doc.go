// Package transport serves the lookalike API over HTTP. It is a thin
// wrapper: multipart parsing, JSON serialization, and error-to-status
// mapping around the engine, plus the standard middleware stack (recovery,
// request IDs, structured logging, metrics).
package transport
