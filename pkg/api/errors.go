package api

import "fmt"

// ErrorType classifies a failure by the stage that produced it. Callers
// react differently per type (retry-safe vs. not), so errors are never
// collapsed into a generic failure.
type ErrorType string

const (
	// ErrorTypeDecode means the uploaded bytes are not a valid image.
	ErrorTypeDecode ErrorType = "decode_error"
	// ErrorTypeEmbedding means the feature extractor failed.
	ErrorTypeEmbedding ErrorType = "embedding_error"
	// ErrorTypeStorage means the blob backend was unreachable or rejected
	// the write.
	ErrorTypeStorage ErrorType = "storage_error"
	// ErrorTypeIndex means the vector store rejected the operation.
	ErrorTypeIndex ErrorType = "index_error"
	// ErrorTypeNotFound means the requested blob or identifier does not exist.
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeTimeout means a backing store exceeded its deadline.
	ErrorTypeTimeout ErrorType = "upstream_timeout"
	// ErrorTypeInvalidRequest means the request itself was malformed.
	ErrorTypeInvalidRequest ErrorType = "invalid_request"
	// ErrorTypeServer covers internal failures with no better classification.
	ErrorTypeServer ErrorType = "server_error"
)

// Error codes surfaced from the index layer as specializations of
// ErrorTypeIndex.
const (
	CodeDimensionMismatch   = "dimension_mismatch"
	CodeDuplicateIdentifier = "duplicate_identifier"
)

// Error is a structured, typed failure with an optional machine-readable code.
type Error struct {
	Type    ErrorType `json:"type"`
	Code    string    `json:"code,omitempty"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorResponse wraps an Error for JSON serialization as the top-level
// error response body.
type ErrorResponse struct {
	Error *Error `json:"error"`
}

// NewDecodeError creates an Error for malformed input images.
func NewDecodeError(message string) *Error {
	return &Error{Type: ErrorTypeDecode, Message: message}
}

// NewEmbeddingError creates an Error for feature extraction failures.
func NewEmbeddingError(message string) *Error {
	return &Error{Type: ErrorTypeEmbedding, Message: message}
}

// NewStorageError creates an Error for blob backend failures.
func NewStorageError(message string) *Error {
	return &Error{Type: ErrorTypeStorage, Message: message}
}

// NewIndexError creates an Error for vector store failures. code may be
// empty or one of the Code* constants.
func NewIndexError(code, message string) *Error {
	return &Error{Type: ErrorTypeIndex, Code: code, Message: message}
}

// NewNotFoundError creates an Error for missing blobs or identifiers.
func NewNotFoundError(message string) *Error {
	return &Error{Type: ErrorTypeNotFound, Message: message}
}

// NewTimeoutError creates an Error for backend deadline overruns.
func NewTimeoutError(message string) *Error {
	return &Error{Type: ErrorTypeTimeout, Message: message}
}

// NewInvalidRequestError creates an Error for malformed requests.
func NewInvalidRequestError(message string) *Error {
	return &Error{Type: ErrorTypeInvalidRequest, Message: message}
}

// NewServerError creates an Error for unclassified internal failures.
func NewServerError(message string) *Error {
	return &Error{Type: ErrorTypeServer, Message: message}
}
