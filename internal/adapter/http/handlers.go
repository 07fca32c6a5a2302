package http

import (
	"context"
	"errors"
	"net/http"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/city-explorer-service/internal/domain"
)

// Fixed client-facing messages. Upstream detail is logged, never returned.
const (
	msgInvalidQuery = "Invalid query"
	msgNotFound     = "No location found"
	msgGeneric      = "Sorry something went wrong"
)

// errorPayload is the error body every route returns.
type errorPayload struct {
	Status       int    `json:"status"`
	ResponseText string `json:"responseText"`
}

// explorePayload is the /explore body: the exploration plus per-category failures.
type explorePayload struct {
	domain.Exploration
	Errors map[string]errorPayload `json:"errors,omitempty"`
}

func errorFor(err error) errorPayload {
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		return errorPayload{Status: http.StatusBadRequest, ResponseText: msgInvalidQuery}
	case errors.Is(err, domain.ErrNoLocationFound):
		return errorPayload{Status: http.StatusNotFound, ResponseText: msgNotFound}
	default:
		return errorPayload{Status: http.StatusInternalServerError, ResponseText: msgGeneric}
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	p := errorFor(err)
	if p.Status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", requestID(r.Context()), "error", err)
	} else {
		s.logger.Info("request rejected", "path", r.URL.Path, "request_id", requestID(r.Context()), "error", err)
	}
	sharedobs.WriteJSON(w, p.Status, p)
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	q, err := searchQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	loc, err := s.explorer.Location(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, loc)
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	serveCategory(s, w, r, s.explorer.Weather, needCoordinates...)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	serveCategory(s, w, r, s.explorer.Events, needFormattedQuery...)
}

func (s *Server) handleMovies(w http.ResponseWriter, r *http.Request) {
	serveCategory(s, w, r, s.explorer.Movies)
}

func (s *Server) handleYelp(w http.ResponseWriter, r *http.Request) {
	serveCategory(s, w, r, s.explorer.Reviews, needCoordinates...)
}

func serveCategory[T any](s *Server, w http.ResponseWriter, r *http.Request, read func(context.Context, domain.Location) ([]T, error), need ...string) {
	loc, err := locationQuery(r, need...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rows, err := read(r.Context(), loc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []T{}
	}
	sharedobs.WriteJSON(w, http.StatusOK, rows)
}

func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request) {
	q, err := searchQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ex, err := s.explorer.Explore(r.Context(), q, categoriesQuery(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := explorePayload{Exploration: ex}
	if len(ex.Errors) > 0 {
		out.Errors = make(map[string]errorPayload, len(ex.Errors))
		for name, cerr := range ex.Errors {
			s.logger.Warn("explore category failed", "category", name,
				"request_id", requestID(r.Context()), "error", cerr)
			out.Errors[name] = errorFor(cerr)
		}
	}
	sharedobs.WriteJSON(w, http.StatusOK, out)
}
