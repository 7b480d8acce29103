package server

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"jobpilot/internal/store"
	"jobpilot/internal/types"
)

// setupStoreRoutes mounts the persistence endpoints. These are plain CRUD
// over the store; AI operations never go through them.
func (s *Server) setupStoreRoutes(mux *http.ServeMux, rateLimitHandler func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("/profile",
		rateLimitHandler(s.authMiddleware(s.requestSizeLimitMiddleware()(s.profileHandler))),
	)
	mux.HandleFunc("/jobs",
		rateLimitHandler(s.authMiddleware(s.requestSizeLimitMiddleware()(s.jobsHandler))),
	)
	mux.HandleFunc("/matches",
		rateLimitHandler(s.authMiddleware(s.matchesHandler)),
	)
	mux.HandleFunc("/applications",
		rateLimitHandler(s.authMiddleware(s.applicationsHandler)),
	)
}

// queryUserID extracts and validates the userId query parameter
func queryUserID(r *http.Request) (uuid.UUID, bool) {
	raw := r.URL.Query().Get("userId")
	if raw == "" {
		return uuid.Nil, false
	}
	uid, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return uid, true
}

// queryPagination extracts limit/offset query parameters with defaults
func queryPagination(r *http.Request) (limit, offset int) {
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

// profileHandler reads and writes user profiles
func (s *Server) profileHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		uid, ok := queryUserID(r)
		if !ok {
			writeErrorResponse(w, "Missing userId", "userId query parameter must be a valid UUID", http.StatusBadRequest)
			return
		}
		profile, err := s.Store.Profiles.Get(r.Context(), uid)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSONResponse(w, profile)

	case http.MethodPut, http.MethodPost:
		var profile store.Profile
		if err := parseJSONRequest(r, &profile); err != nil {
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.Store.Profiles.Upsert(r.Context(), profile); err != nil {
			writeAppError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// jobsHandler lists stored job postings and accepts new batches
func (s *Server) jobsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		limit, offset := queryPagination(r)
		jobs, err := s.Store.Jobs.List(r.Context(), limit, offset)
		if err != nil {
			writeAppError(w, err)
			return
		}
		if jobs == nil {
			jobs = []types.JobListing{}
		}
		writeJSONResponse(w, jobs)

	case http.MethodPost:
		var jobs []types.JobListing
		if err := parseJSONRequest(r, &jobs); err != nil {
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		for _, job := range jobs {
			if job.ID == "" {
				writeErrorResponse(w, "Missing job id", "each job must carry a non-empty id", http.StatusBadRequest)
				return
			}
		}
		if err := s.Store.Jobs.UpsertBatch(r.Context(), jobs); err != nil {
			writeAppError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// matchesHandler returns a user's last computed job matches
func (s *Server) matchesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	uid, ok := queryUserID(r)
	if !ok {
		writeErrorResponse(w, "Missing userId", "userId query parameter must be a valid UUID", http.StatusBadRequest)
		return
	}
	matches, err := s.Store.Matches.ListByUser(r.Context(), uid)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if matches == nil {
		matches = []types.JobMatch{}
	}
	writeJSONResponse(w, matches)
}

// applicationsHandler returns a user's stored application artifacts
func (s *Server) applicationsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	uid, ok := queryUserID(r)
	if !ok {
		writeErrorResponse(w, "Missing userId", "userId query parameter must be a valid UUID", http.StatusBadRequest)
		return
	}
	limit, offset := queryPagination(r)
	apps, err := s.Store.Applications.ListByUser(r.Context(), uid, limit, offset)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if apps == nil {
		apps = []store.Application{}
	}
	writeJSONResponse(w, apps)
}
