package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxBodyBytes caps request bodies. Posting text alone may be large.
const maxBodyBytes = 1 << 20

type dataEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}

// dataResponse writes a 200 success envelope. A nil data encodes as null.
func (s *Server) dataResponse(w http.ResponseWriter, data any) {
	s.jsonResponse(w, http.StatusOK, dataEnvelope{Success: true, Data: data})
}

// errorResponse writes the failure envelope for err.
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	s.jsonResponse(w, status, errorEnvelope{Success: false, Message: PublicMessage(err)})
}

// decodeBody reads a JSON request body into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return &ErrValidation{Field: "body", Message: fmt.Sprintf("exceeds %d bytes", tooLarge.Limit)}
		case errors.Is(err, io.EOF):
			return &ErrValidation{Field: "body", Message: "empty"}
		default:
			return &ErrValidation{Field: "body", Message: "invalid JSON"}
		}
	}
	return nil
}
