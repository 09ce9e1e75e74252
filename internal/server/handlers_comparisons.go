package server

import (
	"net/http"

	"github.com/jonathan/jobscout/internal/generation"
	"github.com/jonathan/jobscout/internal/insights"
	"github.com/jonathan/jobscout/internal/server/middleware"
	"github.com/jonathan/jobscout/internal/stream"
)

func (s *Server) compareRequest(w http.ResponseWriter, r *http.Request) (insights.CompareRequest, error) {
	var req insights.CompareRequest
	if err := decodeBody(w, r, &req); err != nil {
		return req, err
	}
	if err := req.Validate(); err != nil {
		return req, extractValidationErrors(err)
	}
	return req, nil
}

// handleCompare returns a comparison of two or three listings.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, r, ErrUnauthorized)
		return
	}
	req, err := s.compareRequest(w, r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	comparison, err := s.service.Compare(r.Context(), userID, req)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.dataResponse(w, comparison)
}

// handleCompareStream serves a cache hit as JSON and a miss as NDJSON.
func (s *Server) handleCompareStream(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, r, ErrUnauthorized)
		return
	}
	req, err := s.compareRequest(w, r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	cached, pending, err := s.service.StreamCompare(r.Context(), userID, req)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if cached != nil {
		s.dataResponse(w, cached)
		return
	}
	streamPending(s, w, r, pending, func(v generation.GeneratedComparison) any {
		return insights.Comparison{ID: pending.ID, GeneratedComparison: v}
	})
}

// streamPending writes partial snapshots as they arrive, then exactly one
// terminal line, then persists the final object. Partials are drained even
// after the client goes away so the generator never blocks.
func streamPending[T any](s *Server, w http.ResponseWriter, r *http.Request, p *insights.Pending[T], wrap func(T) any) {
	sw := stream.NewWriter(w)
	w.WriteHeader(http.StatusOK)

	clientGone := false
	for partial := range p.Partials() {
		if clientGone {
			continue
		}
		if err := sw.WritePartial(partial); err != nil {
			s.logger.Info("stream client went away", "path", r.URL.Path, "error", err)
			clientGone = true
		}
	}

	v, err := p.Wait()
	if err != nil {
		if !clientGone {
			_ = sw.WriteError(PublicMessage(err))
		}
		return
	}
	if !clientGone {
		if err := sw.WriteComplete(wrap(v)); err != nil {
			s.logger.Info("stream client went away", "path", r.URL.Path, "error", err)
		}
	}
	p.Save(r.Context(), v)
}
