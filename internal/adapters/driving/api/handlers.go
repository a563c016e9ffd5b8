package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driving"
)

type searchRequest struct {
	Query  string             `json:"query"`
	Filter *domain.FilterSpec `json:"filter,omitempty"`
	Sort   *domain.SortSpec   `json:"sort,omitempty"`
}

type nextPageRequest struct {
	// Pages is the number of pages to load. Zero means one; negative loads everything.
	Pages int `json:"pages"`
}

type summaryRequest struct {
	Title string `json:"title"`
}

type askRequest struct {
	Title    string `json:"title"`
	Question string `json:"question"`
}

type outcomeResponse struct {
	Returned int    `json:"returned"`
	Added    int    `json:"added"`
	State    string `json:"state"`
	Skipped  bool   `json:"skipped,omitempty"`
	Stale    bool   `json:"stale,omitempty"`
}

type sessionResponse struct {
	Outcome  *outcomeResponse        `json:"outcome,omitempty"`
	Snapshot driving.SessionSnapshot `json:"session"`
}

type resultView struct {
	domain.Result
	URL        string `json:"url,omitempty"`
	Path       string `json:"path,omitempty"`
	Summarised bool   `json:"summarised"`
}

type cacheStatusResponse struct {
	Stats  *domain.CacheStats `json:"stats,omitempty"`
	Cached []string           `json:"cached"`
}

func newOutcome(o driving.FetchOutcome) *outcomeResponse {
	return &outcomeResponse{
		Returned: o.Returned,
		Added:    o.Added,
		State:    o.State.String(),
		Skipped:  o.Skipped,
		Stale:    o.Stale,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"summary": s.ports.Summary != nil && s.ports.Summary.Available(),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request", zap.String("query", req.Query))

	if strings.TrimSpace(req.Query) == "" {
		s.respondErr(w, fmt.Errorf("%w: query is required", domain.ErrInvalidInput))
		return
	}

	var (
		filter    *domain.FilterState
		sortState *domain.SortState
	)
	if req.Filter != nil {
		f, err := req.Filter.Parse()
		if err != nil {
			s.respondErr(w, err)
			return
		}
		filter = &f
	}
	if req.Sort != nil {
		st, err := req.Sort.Parse()
		if err != nil {
			s.respondErr(w, err)
			return
		}
		sortState = &st
	}

	ctx := r.Context()
	session := s.ports.Session
	if sortState != nil {
		session.SetSort(*sortState)
	}

	var (
		outcome driving.FetchOutcome
		err     error
	)
	if filter != nil {
		outcome, err = session.SearchWithFilter(ctx, req.Query, *filter)
	} else {
		outcome, err = session.Search(ctx, req.Query)
	}
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondSession(w, &outcome)
}

func (s *Server) handleNextPage(w http.ResponseWriter, r *http.Request) {
	var req nextPageRequest
	if err := decodeOptional(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		outcome driving.FetchOutcome
		err     error
	)
	switch {
	case req.Pages == 0 || req.Pages == 1:
		outcome, err = s.ports.Session.FetchNextPage(r.Context())
	case req.Pages < 0:
		outcome, err = s.ports.Session.LoadMore(r.Context(), 0)
	default:
		outcome, err = s.ports.Session.LoadMore(r.Context(), req.Pages)
	}
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondSession(w, &outcome)
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	var spec domain.FilterSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	filter, err := spec.Parse()
	if err != nil {
		s.respondErr(w, err)
		return
	}
	outcome, err := s.ports.Session.SetFilter(r.Context(), filter)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondSession(w, &outcome)
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	var spec domain.SortSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sortState, err := spec.Parse()
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.ports.Session.SetSort(sortState)
	s.respondSession(w, nil)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	display := s.ports.Session.Display()
	cached := s.cacheStatus(r, display)

	views := make([]resultView, len(display))
	for i, res := range display {
		views[i] = resultView{
			Result:     res,
			URL:        res.URL(s.ports.Origin),
			Path:       res.Breadcrumb(" / "),
			Summarised: cached[s.key(res.ID)],
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"results": views,
		"count":   len(views),
		"total":   s.ports.Session.Snapshot().Total,
	})
}

func (s *Server) handleTree(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{"tree": s.ports.Session.Forest()})
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	collapsed := s.ports.Session.ToggleCollapsed(id)
	s.respondJSON(w, http.StatusOK, map[string]any{"id": id, "collapsed": collapsed})
}

func (s *Server) handleCacheStatus(w http.ResponseWriter, r *http.Request) {
	resp := cacheStatusResponse{Cached: []string{}}
	if s.ports.Stats != nil {
		stats, err := s.ports.Stats(r.Context())
		if err != nil {
			s.logger.Warn("cache stats failed", zap.Error(err))
		} else {
			resp.Stats = &stats
		}
	}

	display := s.ports.Session.Display()
	cached := s.cacheStatus(r, display)
	for _, res := range display {
		if cached[s.key(res.ID)] {
			resp.Cached = append(resp.Cached, res.ID)
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSummarise(w http.ResponseWriter, r *http.Request) {
	s.summarise(w, r, false)
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	s.summarise(w, r, true)
}

func (s *Server) summarise(w http.ResponseWriter, r *http.Request, regenerate bool) {
	if !s.requireSummary(w) {
		return
	}
	var req summaryRequest
	if err := decodeOptional(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	s.logger.Debug("summary request", zap.String("id", id), zap.Bool("regenerate", regenerate))

	summarise := s.ports.Summary.Summarise
	if regenerate {
		summarise = s.ports.Summary.Regenerate
	}
	view, err := summarise(r.Context(), s.key(id), req.Title)
	if err != nil {
		s.logger.Error("summary failed", zap.String("id", id), zap.Error(err))
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	if !s.requireSummary(w) {
		return
	}
	id := chi.URLParam(r, "id")
	messages, err := s.ports.Summary.Conversation(r.Context(), s.key(id))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"id": id, "messages": messages})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if !s.requireSummary(w) {
		return
	}
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	answer, err := s.ports.Summary.Ask(r.Context(), s.key(id), req.Title, req.Question)
	if err != nil {
		s.logger.Error("ask failed", zap.String("id", id), zap.Error(err))
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"id": id, "answer": answer})
}

func (s *Server) handleClearConversation(w http.ResponseWriter, r *http.Request) {
	if !s.requireSummary(w) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.ports.Summary.ClearConversation(r.Context(), s.key(id)); err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "cleared"})
}

func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request) {
	if !s.requireSummary(w) {
		return
	}
	if err := s.ports.Summary.ClearAll(r.Context()); err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) requireSummary(w http.ResponseWriter) bool {
	if s.ports.Summary == nil {
		s.respondErr(w, domain.ErrLLMUnavailable)
		return false
	}
	return true
}

func (s *Server) key(contentID string) domain.SummaryKey {
	return domain.SummaryKey{ContentID: contentID, Origin: s.ports.Origin}
}

func (s *Server) cacheStatus(r *http.Request, results []domain.Result) map[domain.SummaryKey]bool {
	if s.ports.Summary == nil || len(results) == 0 {
		return nil
	}
	keys := make([]domain.SummaryKey, len(results))
	for i, res := range results {
		keys[i] = s.key(res.ID)
	}
	return s.ports.Summary.CacheStatus(r.Context(), keys)
}

// respondSession writes the session snapshot. The tree is served separately.
func (s *Server) respondSession(w http.ResponseWriter, outcome *driving.FetchOutcome) {
	snap := s.ports.Session.Snapshot()
	snap.Forest = nil
	resp := sessionResponse{Snapshot: snap}
	if outcome != nil {
		resp.Outcome = newOutcome(*outcome)
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondErr maps a service error onto an HTTP status.
func (s *Server) respondErr(w http.ResponseWriter, err error) {
	s.respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	var netErr *domain.NetworkError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAuthInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrStaleResponse):
		return http.StatusConflict
	case errors.Is(err, domain.ErrLLMUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrWikiUnavailable), errors.As(err, &netErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeOptional decodes a JSON body, accepting an empty one.
func decodeOptional(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
