package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/paintgalaxy/server/internal/database"
	"github.com/paintgalaxy/server/internal/galaxy"
	"github.com/paintgalaxy/server/internal/logger"
	"github.com/paintgalaxy/server/internal/namefilter"
	"github.com/paintgalaxy/server/internal/scenario"
)

type generateRequest struct {
	Map  *galaxy.Map `json:"map"`
	Seed *int64      `json:"seed,omitempty"`
	Save bool        `json:"save"`
}

type generateResponse struct {
	*scenario.Result
	StartingStars int `json:"starting_stars"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Preview int    `json:"preview_connections"`
	Archive bool   `json:"archive"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if limit := s.cfg.WebSocket.MaxMessageSize; limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	res, err := s.service.Generate(r.Context(), scenario.Request{Map: req.Map, Seed: req.Seed, Save: req.Save})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{Result: res, StartingStars: res.Summary.StartingStars})
}

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		s.writeServiceError(w, r, scenario.ErrNoArchive)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	var list []*database.Scenario
	var err error
	if fp := r.URL.Query().Get("fingerprint"); fp != "" {
		list, err = s.archive.FindByFingerprint(fp)
	} else {
		list, err = s.archive.ListScenarios(limit)
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []*database.Scenario{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", fileName(rec.Name)+".txt"))
	w.Write([]byte(rec.Body))
}

func (s *Server) handleGetScenarioMap(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", fileName(rec.Name)+".yaml"))
	w.Write([]byte(rec.MapYAML))
}

func (s *Server) handleVerifyScenario(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}
	v, err := s.service.Verify(r.Context(), rec)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		s.writeServiceError(w, r, scenario.ErrNoArchive)
		return
	}
	if s.cfg.AdminToken == "" {
		writeError(w, http.StatusForbidden, "deletion is disabled")
		return
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AdminToken)) != 1 {
		writeError(w, http.StatusUnauthorized, "invalid admin token")
		return
	}

	id := r.PathValue("id")
	if err := s.archive.DeleteScenario(id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	logger.Info("Scenario deleted", "id", id, "client_ip", s.clientIPs.Of(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*database.Scenario, bool) {
	if s.archive == nil {
		s.writeServiceError(w, r, scenario.ErrNoArchive)
		return nil, false
	}
	rec, err := s.archive.GetScenario(r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return nil, false
	}
	return rec, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	previews, _ := s.connLimiter.Stats()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Uptime:  s.GetUptime().Round(time.Second).String(),
		Preview: previews,
		Archive: s.archive != nil,
	})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, galaxy.ErrInvalidMap), errors.Is(err, galaxy.ErrUnknownStar),
		errors.Is(err, namefilter.ErrNameNotAllowed):
		return http.StatusBadRequest
	case errors.Is(err, database.ErrScenarioNotFound):
		return http.StatusNotFound
	case errors.Is(err, scenario.ErrNoArchive):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "path", r.URL.Path, "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// fileName turns a galaxy name into a download file name.
func fileName(name string) string {
	if n := unsafeFileChars.ReplaceAllString(name, "_"); n != "" && n != "_" {
		return n
	}
	return "galaxy"
}
