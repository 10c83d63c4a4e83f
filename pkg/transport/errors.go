package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lookalike-dev/lookalike/pkg/api"
)

// HTTPStatusFromError maps an api.Error type to the corresponding HTTP
// status code.
func HTTPStatusFromError(err *api.Error) int {
	switch err.Type {
	case api.ErrorTypeDecode, api.ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case api.ErrorTypeNotFound:
		return http.StatusNotFound
	case api.ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case api.ErrorTypeEmbedding, api.ErrorTypeStorage, api.ErrorTypeIndex, api.ErrorTypeServer:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes a JSON error response, deriving the status code from
// the error type. Non-api errors are wrapped as server errors first.
func WriteError(w http.ResponseWriter, err error) {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		apiErr = api.NewServerError(err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(HTTPStatusFromError(apiErr))
	json.NewEncoder(w).Encode(api.ErrorResponse{Error: apiErr})
}

// writeJSON serializes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
