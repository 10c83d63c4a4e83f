package api

import "github.com/google/uuid"

// Identifier strategy: identifiers are random 128-bit UUIDs generated by
// the service before any write happens. The vector store always receives an
// identifier and never assigns one; uniqueness needs no coordination between
// process instances. The store's primary-key constraint is the backstop for
// the (practically impossible) collision case.

// NewImageID generates a new image identifier.
func NewImageID() string {
	return uuid.NewString()
}

// ValidateImageID reports whether id is a well-formed image identifier.
func ValidateImageID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
