/*
handlers.go - HTTP API handlers for the naturalization tracker

PURPOSE:
  Exposes the profile, trip log and eligibility engine via REST API.
  Handles HTTP request/response and JSON serialization, and delegates to
  tracker.Service for everything else.

ENDPOINTS:
  Profile:
    GET    /api/profile                Current profile (404 when none)
    PUT    /api/profile                Replace profile

  Trips:
    GET    /api/trips                  Trips, newest departure first
    POST   /api/trips                  Add trip
    PUT    /api/trips/{id}             Update trip
    DELETE /api/trips/{id}             Delete trip
    POST   /api/trips/import           CSV import (raw body or multipart "file")

  Eligibility:
    GET    /api/eligibility?as_of=     Evaluate (as_of defaults to today)
    GET    /api/evaluations/runs       Watcher history

  Data:
    GET    /api/export                 Download data pack
    POST   /api/import                 Restore data pack
    DELETE /api/data                   Wipe everything

REQUEST FLOW:
  1. Parse HTTP request
  2. Call tracker.Service (which validates)
  3. Convert to DTO
  4. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Profile or trip not found
  - 500: Internal errors (logged)

SECURITY NOTE:
  No authentication. The tracker is meant to run locally for one person.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/warp/naturalization-engine/calendar"
	"github.com/warp/naturalization-engine/metrics"
	"github.com/warp/naturalization-engine/store/sqlite"
	"github.com/warp/naturalization-engine/tracker"
)

// maxUploadBytes bounds CSV and data pack uploads.
const maxUploadBytes = 5 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *tracker.Service
	Store   *sqlite.Store
	Log     logrus.FieldLogger

	// Now is the clock used when a request does not pin as_of.
	Now func() time.Time

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler over store. m may be nil.
func NewHandler(store *sqlite.Store, m *metrics.Metrics, log logrus.FieldLogger) *Handler {
	return &Handler{
		Service: tracker.NewService(store, m),
		Store:   store,
		Log:     log,
		Now:     time.Now,
	}
}

// =============================================================================
// PROFILE ENDPOINTS
// =============================================================================

// GetProfile returns the current profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Profile(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to load profile", err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Profile not found", tracker.ErrProfileNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toProfileDTO(*p))
}

// UpdateProfile replaces the current profile.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in tracker.ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := h.Service.UpdateProfile(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, "Failed to save profile", err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileDTO(p))
}

// =============================================================================
// TRIP ENDPOINTS
// =============================================================================

// ListTrips returns all trips, newest departure first.
func (h *Handler) ListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := h.Service.Trips(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to load trips", err)
		return
	}
	writeJSON(w, http.StatusOK, toTripDTOs(trips))
}

// CreateTrip adds a trip.
func (h *Handler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var in tracker.TripInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	trip, err := h.Service.AddTrip(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, "Failed to add trip", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTripDTO(trip))
}

// UpdateTrip replaces a trip.
func (h *Handler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in tracker.TripInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	trip, err := h.Service.UpdateTrip(r.Context(), id, in)
	if err != nil {
		h.writeServiceError(w, "Failed to update trip", err)
		return
	}
	writeJSON(w, http.StatusOK, toTripDTO(trip))
}

// DeleteTrip removes a trip.
func (h *Handler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Service.DeleteTrip(r.Context(), id); err != nil {
		h.writeServiceError(w, "Failed to delete trip", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// ImportTrips appends trips from a CSV upload. Bad rows are reported, not fatal.
func (h *Handler) ImportTrips(w http.ResponseWriter, r *http.Request) {
	body, closeBody, err := uploadReader(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid upload", err)
		return
	}
	defer closeBody()

	report, err := h.Service.ImportCSV(r.Context(), body)
	if err != nil {
		h.writeServiceError(w, "Failed to import trips", err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		"imported": len(report.Imported),
		"skipped":  len(report.Skipped),
	}).Info("csv import")

	writeJSON(w, http.StatusOK, toImportResponse(report))
}

// =============================================================================
// ELIGIBILITY ENDPOINTS
// =============================================================================

// GetEligibility evaluates the stored records as of the as_of query
// parameter, or today when absent.
func (h *Handler) GetEligibility(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOf(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of date", err)
		return
	}

	result, err := h.Service.Evaluate(r.Context(), asOf)
	if err != nil {
		h.writeServiceError(w, "Failed to evaluate eligibility", err)
		return
	}
	writeJSON(w, http.StatusOK, toEligibilityDTO(asOf, result))
}

// ListEvaluationRuns returns recorded watcher evaluations, newest first.
func (h *Handler) ListEvaluationRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	runs, err := h.Store.ListEvaluationRuns(r.Context(), limit)
	if err != nil {
		h.writeServiceError(w, "Failed to list evaluation runs", err)
		return
	}
	writeJSON(w, http.StatusOK, toEvaluationRunDTOs(runs))
}

// =============================================================================
// DATA ENDPOINTS
// =============================================================================

// ExportData downloads the data pack.
func (h *Handler) ExportData(w http.ResponseWriter, r *http.Request) {
	now := h.Now()
	pack, err := h.Service.Export(r.Context(), now, calendar.Today(now))
	if err != nil {
		h.writeServiceError(w, "Failed to export data", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": pack.FileName()}))
	w.WriteHeader(http.StatusOK)
	if _, err := pack.WriteTo(w); err != nil {
		h.Log.WithError(err).Warn("write data pack")
	}
}

// ImportData replaces all records with an uploaded data pack.
func (h *Handler) ImportData(w http.ResponseWriter, r *http.Request) {
	body, closeBody, err := uploadReader(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid upload", err)
		return
	}
	defer closeBody()

	pack, err := h.Service.Restore(r.Context(), body)
	if err != nil {
		h.writeServiceError(w, "Failed to restore data", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "restored",
		"hasProfile": pack.Profile != nil,
		"trips":      len(pack.Trips),
	})
}

// WipeData deletes the profile, trips and evaluation history.
func (h *Handler) WipeData(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Wipe(r.Context()); err != nil {
		h.writeServiceError(w, "Failed to wipe data", err)
		return
	}

	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) asOf(r *http.Request) (calendar.Date, error) {
	if v := r.URL.Query().Get("as_of"); v != "" {
		return calendar.ParseDate(v)
	}
	return calendar.Today(h.Now()), nil
}

// uploadReader returns the "file" part of a multipart form, or the raw body.
func uploadReader(w http.ResponseWriter, r *http.Request) (io.Reader, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, func() {}, nil
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, nil, fmt.Errorf("read form file: %w", err)
	}
	return file, func() { file.Close() }, nil
}

func (h *Handler) writeServiceError(w http.ResponseWriter, message string, err error) {
	switch {
	case tracker.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case tracker.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Log.WithError(err).Error(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
