/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for demos. Each scenario creates a profile and a trip log that
	exercise a specific part of the engine. Dates are relative to the
	handler's clock so a scenario always shows the same verdict.

AVAILABLE SCENARIOS:

	eligible-today:  Long-time resident, short vacations only
	six-month-trip:  One absence over 180 days (warning, still eligible)
	year-long-trip:  One absence over a year (continuity broken)
	spouse-path:     Three-year path for spouses of citizens
	new-arrival:     Recent green card, recent move (tenure and state short)

HOW SCENARIOS WORK:
 1. Wipe the database
 2. Save the profile through the tracker service
 3. Add each trip through the tracker service

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "year-long-trip"}

ADDING NEW SCENARIOS:
 1. Add an entry to 'scenarios' with ID, name, description and build func

NOTE:

	Scenarios wipe the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Shared helpers
  - tracker/service.go: Validation applied to scenario records
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/warp/naturalization-engine/calendar"
	"github.com/warp/naturalization-engine/tracker"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	build func(today calendar.Date) (tracker.ProfileInput, []tracker.TripInput)
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "eligible-today",
			Name:        "Eligible Today",
			Description: "Six years as a resident with only short trips abroad",
		},
		build: func(today calendar.Date) (tracker.ProfileInput, []tracker.TripInput) {
			return profileInput(today, 30, 6, "5-year", "CA", 2), []tracker.TripInput{
				tripInput(today.AddYears(-1), 20, "Mexico"),
				tripInput(today.AddYears(-3), 14, "Canada"),
			}
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "six-month-trip",
			Name:        "Six-Month Trip",
			Description: "A 200-day absence raises a continuity warning but does not block",
		},
		build: func(today calendar.Date) (tracker.ProfileInput, []tracker.TripInput) {
			return profileInput(today, 35, 6, "5-year", "NY", 4), []tracker.TripInput{
				tripInput(today.AddYears(-2), 200, "India"),
			}
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "year-long-trip",
			Name:        "Year-Long Trip",
			Description: "A 400-day absence breaks continuous residence and pushes filing out",
		},
		build: func(today calendar.Date) (tracker.ProfileInput, []tracker.TripInput) {
			return profileInput(today, 40, 6, "5-year", "TX", 5), []tracker.TripInput{
				tripInput(today.AddYears(-3), 400, "Germany"),
			}
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "spouse-path",
			Name:        "Spouse of a Citizen",
			Description: "Three-year path with a shorter presence window",
		},
		build: func(today calendar.Date) (tracker.ProfileInput, []tracker.TripInput) {
			p := profileInput(today, 28, 3, "3-year-spouse", "WA", 2)
			p.LPRDate = today.AddYears(-3).AddDays(-10).String()
			return p, []tracker.TripInput{
				tripInput(today.AddMonths(-8), 30, "Philippines"),
			}
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "new-arrival",
			Name:        "New Arrival",
			Description: "One year as a resident and a recent move to a new state",
		},
		build: func(today calendar.Date) (tracker.ProfileInput, []tracker.TripInput) {
			p := profileInput(today, 26, 1, "5-year", "FL", 0)
			p.StateResidenceSince = today.AddDays(-30).String()
			return p, nil
		},
	},
}

func profileInput(today calendar.Date, age, lprYears int, path, state string, stateYears int) tracker.ProfileInput {
	return tracker.ProfileInput{
		DateOfBirth:         today.AddYears(-age).String(),
		LPRDate:             today.AddYears(-lprYears).String(),
		EligibilityPath:     path,
		State:               state,
		StateResidenceSince: today.AddYears(-stateYears).String(),
	}
}

func tripInput(start calendar.Date, days int, destination string) tracker.TripInput {
	return tracker.TripInput{
		StartDate:   start.String(),
		EndDate:     start.AddDays(days).String(),
		Destination: destination,
	}
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

// =============================================================================
// SCENARIO ENDPOINTS
// =============================================================================

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	out := make([]ScenarioDTO, 0, len(scenarios))
	for _, s := range scenarios {
		out = append(out, s.ScenarioDTO)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	s, ok := findScenario(current)
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, s.ScenarioDTO)
}

// LoadScenario wipes the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	s, ok := findScenario(req.ScenarioID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err := h.loadScenario(r.Context(), s); err != nil {
		h.writeServiceError(w, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": s.ID})
}

func (h *Handler) loadScenario(ctx context.Context, s scenario) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.currentScenario = ""
	if err := h.Service.Wipe(ctx); err != nil {
		return err
	}

	profile, trips := s.build(calendar.Today(h.Now()))
	if _, err := h.Service.UpdateProfile(ctx, profile); err != nil {
		return fmt.Errorf("profile: %w", err)
	}
	for _, trip := range trips {
		if _, err := h.Service.AddTrip(ctx, trip); err != nil {
			return fmt.Errorf("trip to %s: %w", trip.Destination, err)
		}
	}

	h.currentScenario = s.ID
	return nil
}
