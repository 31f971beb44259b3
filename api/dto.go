/*
dto.go - Data Transfer Objects for the HTTP API

PURPOSE:

	Defines the JSON shapes exchanged with the frontend. Domain types stay
	free of presentation concerns; this file renders findings into display
	text and flattens dates into ISO strings.

CONVENTIONS:
  - Dates are "YYYY-MM-DD" strings; absent dates are null
  - Field names follow the stored records (lprDate, countAsAbsence, ...)
  - Findings carry both a stable code and the rendered message

SEE ALSO:
  - handlers.go: Uses these DTOs
  - eligibility/finding.go: Finding codes and message rendering
*/
package api

import (
	"time"

	"github.com/warp/naturalization-engine/calendar"
	"github.com/warp/naturalization-engine/eligibility"
	"github.com/warp/naturalization-engine/store/sqlite"
	"github.com/warp/naturalization-engine/tracker"
)

// =============================================================================
// PROFILE / TRIP DTOs
// =============================================================================

// ProfileDTO is the applicant profile as displayed.
type ProfileDTO struct {
	DateOfBirth         string `json:"dob"`
	LPRDate             string `json:"lprDate"`
	EligibilityPath     string `json:"eligibilityPath"`
	State               string `json:"state"`
	StateResidenceSince string `json:"stateResidenceDate"`
}

func toProfileDTO(p eligibility.Profile) ProfileDTO {
	return ProfileDTO{
		DateOfBirth:         p.DateOfBirth.String(),
		LPRDate:             p.LPRDate.String(),
		EligibilityPath:     string(p.Path),
		State:               p.State,
		StateResidenceSince: p.StateResidenceSince.String(),
	}
}

// TripDTO is one trip with its computed length.
type TripDTO struct {
	ID              string `json:"id"`
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
	Destination     string `json:"destination"`
	CountsAsAbsence bool   `json:"countAsAbsence"`
	Days            int    `json:"days"`
}

func toTripDTO(t eligibility.Trip) TripDTO {
	return TripDTO{
		ID:              t.ID,
		StartDate:       t.Start.String(),
		EndDate:         t.End.String(),
		Destination:     t.Destination,
		CountsAsAbsence: t.CountsAsAbsence,
		Days:            t.Days(),
	}
}

func toTripDTOs(trips []eligibility.Trip) []TripDTO {
	out := make([]TripDTO, 0, len(trips))
	for _, t := range trips {
		out = append(out, toTripDTO(t))
	}
	return out
}

// =============================================================================
// ELIGIBILITY DTOs
// =============================================================================

// FindingDTO is a blocker or warning ready for display.
type FindingDTO struct {
	Code    eligibility.Code `json:"code"`
	Message string           `json:"message"`
}

// EligibilityDTO is the evaluation response.
type EligibilityDTO struct {
	AsOf                string               `json:"asOf"`
	Eligible            bool                 `json:"eligible"`
	Blockers            []FindingDTO         `json:"blockers"`
	Warnings            []FindingDTO         `json:"warnings"`
	Metrics             *eligibility.Metrics `json:"metrics"`
	EarliestFilingDate  *string              `json:"earliestFilingDate"`
	LowerRiskFilingDate *string              `json:"lowerRiskFilingDate"`
}

func toEligibilityDTO(asOf calendar.Date, r eligibility.Result) EligibilityDTO {
	return EligibilityDTO{
		AsOf:                asOf.String(),
		Eligible:            r.Eligible,
		Blockers:            toFindingDTOs(r.Blockers),
		Warnings:            toFindingDTOs(r.Warnings),
		Metrics:             r.Metrics,
		EarliestFilingDate:  datePtr(r.EarliestFilingDate),
		LowerRiskFilingDate: datePtr(r.LowerRiskFilingDate),
	}
}

func toFindingDTOs(findings []eligibility.Finding) []FindingDTO {
	out := make([]FindingDTO, 0, len(findings))
	for _, f := range findings {
		out = append(out, FindingDTO{Code: f.Code, Message: f.Message()})
	}
	return out
}

// =============================================================================
// IMPORT / HISTORY DTOs
// =============================================================================

// ImportResponse reports a CSV import.
type ImportResponse struct {
	Imported int       `json:"imported"`
	Trips    []TripDTO `json:"trips"`
	Errors   []string  `json:"errors"`
}

func toImportResponse(report tracker.ImportReport) ImportResponse {
	resp := ImportResponse{
		Imported: len(report.Imported),
		Trips:    toTripDTOs(report.Imported),
		Errors:   make([]string, 0, len(report.Skipped)),
	}
	for _, rowErr := range report.Skipped {
		resp.Errors = append(resp.Errors, rowErr.Error())
	}
	return resp
}

// EvaluationRunDTO is one watcher evaluation.
type EvaluationRunDTO struct {
	ID                  int64              `json:"id"`
	AsOf                string             `json:"asOf"`
	Eligible            bool               `json:"eligible"`
	BlockerCodes        []eligibility.Code `json:"blockerCodes"`
	EarliestFilingDate  *string            `json:"earliestFilingDate"`
	LowerRiskFilingDate *string            `json:"lowerRiskFilingDate"`
	CreatedAt           time.Time          `json:"createdAt"`
}

func toEvaluationRunDTOs(runs []sqlite.EvaluationRun) []EvaluationRunDTO {
	out := make([]EvaluationRunDTO, 0, len(runs))
	for _, run := range runs {
		codes := run.BlockerCodes
		if codes == nil {
			codes = []eligibility.Code{}
		}
		out = append(out, EvaluationRunDTO{
			ID:                  run.ID,
			AsOf:                run.AsOf.String(),
			Eligible:            run.Eligible,
			BlockerCodes:        codes,
			EarliestFilingDate:  datePtr(run.EarliestFilingDate),
			LowerRiskFilingDate: datePtr(run.LowerRiskFilingDate),
			CreatedAt:           run.CreatedAt,
		})
	}
	return out
}

// =============================================================================
// SCENARIO / ERROR DTOs
// =============================================================================

// ScenarioDTO describes a demo data set.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func datePtr(d *calendar.Date) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
