package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// WriteJSON marshals data and writes it as an application/json response with
// the given status code. Every API handler funnels its body through here so
// the Content-Type and encoding behaviour stay uniform.
//
// Marshaling happens before anything is written: a value that cannot be
// encoded turns into a plain 500 instead of a half-sent JSON body.
//
// Returns the number of body bytes written and a non-nil error only when
// marshaling fails.
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	body, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "error writing data to JSON", http.StatusInternalServerError)
		return 0, fmt.Errorf("error writing data to JSON: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return w.Write(body)
}
