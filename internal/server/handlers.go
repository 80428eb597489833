package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"dailybrief/internal/brief"
	"dailybrief/internal/core"
	"dailybrief/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// HealthResponse is the /health payload
type HealthResponse struct {
	Status string            `json:"status"`
	Uptime string            `json:"uptime"`
	Checks map[string]string `json:"checks"`
}

// DayResponse is returned by the day-record routes.
type DayResponse struct {
	Record core.DayRecord `json:"record"`
	Cached bool           `json:"cached"`
	Saved  bool           `json:"saved"`
	Debug  map[string]any `json:"debug,omitempty"`
}

// DayListResponse is returned by GET /api/days.
type DayListResponse struct {
	Days  []core.DayRecord `json:"days"`
	Count int              `json:"count"`
}

var serverStartTime = time.Now()

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"store": "disabled"}
	if s.days != nil {
		checks["store"] = "enabled"
	}

	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: time.Since(serverStartTime).Round(time.Second).String(),
		Checks: checks,
	})
}

// handleGenerate handles /api/generate. The response is always a
// GenerationResult with presentable research and concepts.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, r)
		return
	}

	body := parseBody(r)
	req := core.GenerationRequest{
		Date:   bodyString(body, "date"),
		Topic:  bodyString(body, "topic"),
		UserID: bodyString(body, "userId"),
	}

	res := s.generate(r.Context(), req)
	if _, malformed := body[RawBodyKey]; malformed && res.Debug != nil {
		res.Debug["requestBody"] = "malformed"
	}
	res.Debug = withRequestID(r, res.Debug)
	s.respondJSON(w, http.StatusOK, res)
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	date := s.gen.Today()
	res := core.GenerationResult{
		Status:   core.StatusError,
		Research: brief.DefaultResearch(date),
		Concepts: brief.DefaultConcepts(s.gen.ConceptCount()),
		Error:    "method not allowed",
		Debug:    withRequestID(r, map[string]any{"method": r.Method, "date": date}),
	}
	s.metrics.Observe(res.Status, 0)

	status := http.StatusOK
	if s.config.StrictMethods {
		w.Header().Set("Allow", "POST, OPTIONS")
		status = http.StatusMethodNotAllowed
	}
	s.respondJSON(w, status, res)
}

// generate runs one generation and records its metrics.
func (s *Server) generate(ctx context.Context, req core.GenerationRequest) core.GenerationResult {
	start := time.Now()
	res := s.gen.Generate(ctx, req)
	s.metrics.Observe(res.Status, time.Since(start))
	return res
}

// handleGetDay handles GET /api/days/{date}: the stored brief is returned
// when present, otherwise one is generated and written if it is live content.
func (s *Server) handleGetDay(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateParam(w, r)
	if !ok {
		return
	}
	user := r.URL.Query().Get("user")
	ctx := r.Context()

	existing, err := s.days.Get(ctx, user, date)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.log.Error().Err(err).Str("date", date).Msg("Failed to read day")
		s.respondError(w, http.StatusInternalServerError, "failed to read day")
		return
	}
	if existing != nil && existing.HasBrief() {
		s.respondJSON(w, http.StatusOK, DayResponse{Record: *existing, Cached: true})
		return
	}

	res := s.generate(ctx, core.GenerationRequest{Date: date, UserID: user})
	resp := DayResponse{Debug: withRequestID(r, res.Debug)}

	if res.Status == core.StatusOK {
		saved, err := s.days.SaveBrief(ctx, user, date, res)
		if err != nil {
			s.log.Error().Err(err).Str("date", date).Msg("Failed to save brief")
		} else {
			resp.Record = *saved
			resp.Saved = true
			s.respondJSON(w, http.StatusOK, resp)
			return
		}
	}

	resp.Record = core.DayRecord{
		UserID:   user,
		Date:     date,
		Research: res.Research,
		Concepts: res.Concepts,
		Status:   res.Status,
	}
	if existing != nil {
		resp.Record.ID = existing.ID
		resp.Record.UserID = existing.UserID
		resp.Record.Journal = existing.Journal
		resp.Record.CreatedAt = existing.CreatedAt
		resp.Record.UpdatedAt = existing.UpdatedAt
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleSaveJournal handles PUT /api/days/{date}/journal
func (s *Server) handleSaveJournal(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateParam(w, r)
	if !ok {
		return
	}

	body := parseBody(r)
	if _, malformed := body[RawBodyKey]; malformed {
		s.respondError(w, http.StatusBadRequest, "body must be a JSON object")
		return
	}
	journal, ok := body["journal"].(string)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "journal must be a string")
		return
	}

	user := r.URL.Query().Get("user")
	if user == "" {
		user = bodyString(body, "userId")
	}

	rec, err := s.days.SaveJournal(r.Context(), user, date, journal)
	if err != nil {
		s.log.Error().Err(err).Str("date", date).Msg("Failed to save journal")
		s.respondError(w, http.StatusInternalServerError, "failed to save journal")
		return
	}
	s.respondJSON(w, http.StatusOK, DayResponse{Record: *rec, Saved: true})
}

// handleListDays handles GET /api/days
func (s *Server) handleListDays(w http.ResponseWriter, r *http.Request) {
	limit := 30
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 365 {
			s.respondError(w, http.StatusBadRequest, "limit must be between 1 and 365")
			return
		}
		limit = n
	}

	days, err := s.days.List(r.Context(), r.URL.Query().Get("user"), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list days")
		s.respondError(w, http.StatusInternalServerError, "failed to list days")
		return
	}
	if days == nil {
		days = []core.DayRecord{}
	}
	s.respondJSON(w, http.StatusOK, DayListResponse{Days: days, Count: len(days)})
}

func (s *Server) dateParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	date := chi.URLParam(r, "date")
	if _, err := time.Parse(core.DateLayout, date); err != nil {
		s.respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return "", false
	}
	return date, true
}

func withRequestID(r *http.Request, dbg map[string]any) map[string]any {
	if dbg == nil {
		dbg = map[string]any{}
	}
	if id := middleware.GetReqID(r.Context()); id != "" {
		dbg["httpRequestId"] = id
	}
	return dbg
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// respondError writes a JSON error response
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
