package tracker

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/warp/naturalization-engine/eligibility"
)

// =============================================================================
// CSV IMPORT
// =============================================================================
//
// Expected layout (header required, column order free when named):
//
//   startDate,endDate,destination,countAsAbsence
//   2023-01-01,2023-01-15,Mexico,true
//   2023-03-10,2023-03-12,Canada,false
//
// The header must name a start and an end column. Unnamed columns fall back to
// the positions above. countAsAbsence is false only for a literal "false".

// ImportReport summarizes a CSV import.
type ImportReport struct {
	Imported []eligibility.Trip
	Skipped  []*RowError
}

type csvColumns struct {
	start, end, destination, counts int
}

func columnsFor(header []string) (csvColumns, error) {
	cols := csvColumns{start: -1, end: -1, destination: -1, counts: -1}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(h, "start") && cols.start < 0:
			cols.start = i
		case strings.Contains(h, "end") && cols.end < 0:
			cols.end = i
		case strings.Contains(h, "dest") && cols.destination < 0:
			cols.destination = i
		case (strings.Contains(h, "count") || strings.Contains(h, "absence")) && cols.counts < 0:
			cols.counts = i
		}
	}
	if cols.start < 0 || cols.end < 0 {
		return cols, fmt.Errorf("%w: header must have startDate and endDate columns", ErrInvalidCSV)
	}
	if cols.destination < 0 && len(header) > 2 {
		cols.destination = 2
	}
	if cols.counts < 0 && len(header) > 3 {
		cols.counts = 3
	}
	return cols, nil
}

// ParseTripsCSV reads trips from r. Rows that fail validation are reported in
// the returned report and skipped; only an unreadable file is an error.
func ParseTripsCSV(r io.Reader) (ImportReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return ImportReport{}, fmt.Errorf("%w: empty input", ErrInvalidCSV)
	}
	if err != nil {
		return ImportReport{}, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}
	cols, err := columnsFor(header)
	if err != nil {
		return ImportReport{}, err
	}

	report := ImportReport{Imported: []eligibility.Trip{}}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return report, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
		}
		if isBlank(record) {
			continue
		}
		line, _ := reader.FieldPos(0)

		in := TripInput{
			StartDate:   cell(record, cols.start),
			EndDate:     cell(record, cols.end),
			Destination: cell(record, cols.destination),
		}
		counts := !strings.EqualFold(cell(record, cols.counts), "false")
		in.CountsAsAbsence = &counts

		trip, err := in.Parse()
		if err != nil {
			report.Skipped = append(report.Skipped, &RowError{Line: line, Err: err})
			continue
		}
		report.Imported = append(report.Imported, trip)
	}
	return report, nil
}

// ImportCSV parses r and appends every valid trip to the stored list.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (ImportReport, error) {
	report, err := ParseTripsCSV(r)
	if err != nil {
		return report, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	trips, err := s.Store.LoadTrips(ctx)
	if err != nil {
		return report, fmt.Errorf("load trips: %w", err)
	}
	for i := range report.Imported {
		report.Imported[i].ID = s.newID()
	}
	if err := s.Store.SaveTrips(ctx, append(trips, report.Imported...)); err != nil {
		return report, fmt.Errorf("save trips: %w", err)
	}

	s.Metrics.ObserveImport(len(report.Imported), len(report.Skipped))
	return report, nil
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func isBlank(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
