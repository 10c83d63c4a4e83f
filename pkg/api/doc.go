// Package api defines the domain types, identifier scheme, and error
// taxonomy shared by all lookalike components.
//
// The types here are transport-agnostic: the HTTP layer serializes them
// directly, and the engine and stores exchange them internally.
package api
