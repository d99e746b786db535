package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/nvoss/phonedump/internal/android"
	"github.com/nvoss/phonedump/internal/logging"
)

// errorResponse is the JSON body for every non-2xx response
type errorResponse struct {
	Error string `json:"error"`
}

// dumpsResponse lists the dumps available to the API
type dumpsResponse struct {
	Dumps []string `json:"dumps"`
}

// sectionsResponse lists one dump's parsed sections
type sectionsResponse struct {
	Dump     string   `json:"dump"`
	Sections []string `json:"sections"`
}

// appsResponse lists one dump's installed apps under a filter
type appsResponse struct {
	Dump   string   `json:"dump"`
	Filter string   `json:"filter"`
	Apps   []string `json:"apps"`
}

// writeJSON writes v as the JSON response body
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("Failed to encode response", zap.Error(err))
	}
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, android.ErrUnknownApp),
		errors.Is(err, android.ErrNoPackageSection):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// handleDumps serves GET /api/dumps
func (s *Server) handleDumps(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	names, err := s.listDumps()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, dumpsResponse{Dumps: names})
}

// handleSections serves GET /api/sections?dump=<name>
func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	name := r.URL.Query().Get("dump")
	d, err := s.openDump(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, sectionsResponse{Dump: name, Sections: d.Sections()})
}

// handleApps serves GET /api/apps?dump=<name>&filter=all|system|offstore
func (s *Server) handleApps(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	name := r.URL.Query().Get("dump")
	d, err := s.openDump(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	filter := r.URL.Query().Get("filter")
	if filter == "" {
		filter = "all"
	}

	var apps []string
	switch filter {
	case "all":
		apps = d.AllApps()
	case "system":
		apps = d.SystemApps()
	case "offstore":
		apps = d.OffstoreApps()
	default:
		writeError(w, http.StatusBadRequest, errors.New("filter must be all, system, or offstore"))
		return
	}

	writeJSON(w, http.StatusOK, appsResponse{Dump: name, Filter: filter, Apps: apps})
}

// handleAppInfo serves GET /api/app?dump=<name>&app=<id>
func (s *Server) handleAppInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	name := r.URL.Query().Get("dump")
	d, err := s.openDump(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	appID := r.URL.Query().Get("app")
	if appID == "" {
		writeError(w, http.StatusBadRequest, errors.New("app parameter is required"))
		return
	}

	info, err := d.Info(appID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleReport serves GET /api/report?dump=<name>&app=<id>
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	name := r.URL.Query().Get("dump")
	d, err := s.openDump(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	appID := r.URL.Query().Get("app")
	if appID == "" {
		writeError(w, http.StatusBadRequest, errors.New("app parameter is required"))
		return
	}

	report, err := d.PermissionReportFor(appID, s.perms)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
