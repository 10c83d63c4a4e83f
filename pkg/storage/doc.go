// Package storage defines the VectorStore interface and its error
// contract. Implementations live in subpackages: postgres (pgvector-backed,
// for production) and memory (exact brute-force, for tests and small
// deployments).
package storage
