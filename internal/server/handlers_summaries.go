package server

import (
	"net/http"
	"strings"

	"github.com/jonathan/jobscout/internal/generation"
	"github.com/jonathan/jobscout/internal/ingestion"
	"github.com/jonathan/jobscout/internal/insights"
	"github.com/jonathan/jobscout/internal/server/middleware"
)

// summaryRequest decodes and validates a summary body.
func (s *Server) summaryRequest(w http.ResponseWriter, r *http.Request) (ingestion.GenerationRequest, error) {
	var req ingestion.GenerationRequest
	if err := decodeBody(w, r, &req); err != nil {
		return req, err
	}
	if err := req.Validate(); err != nil {
		return req, extractValidationErrors(err)
	}
	return req, nil
}

// handleSummarize returns a summary, generating it on a cache miss.
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, r, ErrUnauthorized)
		return
	}
	req, err := s.summaryRequest(w, r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	summary, err := s.service.Summarize(r.Context(), userID, req)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.dataResponse(w, summary)
}

// handleSummarizeStream serves a cache hit as JSON and a miss as NDJSON.
func (s *Server) handleSummarizeStream(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, r, ErrUnauthorized)
		return
	}
	req, err := s.summaryRequest(w, r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	cached, pending, err := s.service.StreamSummary(r.Context(), userID, req)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if cached != nil {
		s.dataResponse(w, cached)
		return
	}
	streamPending(s, w, r, pending, func(v generation.GeneratedSummary) any {
		return insights.Summary{ID: pending.ID, GeneratedSummary: v}
	})
}

// handleGetSummary returns the cached summary for a listing, or null.
func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, r, ErrUnauthorized)
		return
	}
	listingID := strings.TrimSpace(r.PathValue("listingId"))
	if listingID == "" || len(listingID) > 128 {
		s.errorResponse(w, r, &ErrValidation{Field: "listingId", Message: "invalid"})
		return
	}

	summary, err := s.service.ExistingSummary(r.Context(), userID, listingID)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if summary == nil {
		s.dataResponse(w, nil)
		return
	}
	s.dataResponse(w, summary)
}
