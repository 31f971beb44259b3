package tracker

import (
	"context"
	"fmt"
	"io"
	"time"

	json "github.com/goccy/go-json"

	"github.com/warp/naturalization-engine/calendar"
	"github.com/warp/naturalization-engine/eligibility"
)

// =============================================================================
// DATA PACK - Portable snapshot of everything the user entered
// =============================================================================

// DataPack bundles the records with the evaluation they produce.
type DataPack struct {
	ExportDate  time.Time            `json:"exportDate"`
	Profile     *eligibility.Profile `json:"profile"`
	Trips       []eligibility.Trip   `json:"trips"`
	Eligibility eligibility.Result   `json:"eligibility"`
}

// FileName is the suggested download name.
func (p DataPack) FileName() string {
	return "naturalization-data-" + calendar.FromTime(p.ExportDate).String() + ".json"
}

// WriteTo encodes the pack as indented JSON.
func (p DataPack) WriteTo(w io.Writer) (int64, error) {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encode data pack: %w", err)
	}
	n, err := w.Write(append(b, '\n'))
	return int64(n), err
}

// Export builds a data pack at exportedAt, evaluating as of asOf.
func (s *Service) Export(ctx context.Context, exportedAt time.Time, asOf calendar.Date) (DataPack, error) {
	profile, err := s.Profile(ctx)
	if err != nil {
		return DataPack{}, err
	}
	trips, err := s.Trips(ctx)
	if err != nil {
		return DataPack{}, err
	}
	return DataPack{
		ExportDate:  exportedAt.UTC(),
		Profile:     profile,
		Trips:       trips,
		Eligibility: eligibility.Evaluate(profile, trips, asOf),
	}, nil
}

// restoredPack is the part of a data pack Restore reads. The embedded
// evaluation is skipped so packs whose eligibility section has another
// shape still load.
type restoredPack struct {
	Profile *eligibility.Profile `json:"profile"`
	Trips   []eligibility.Trip   `json:"trips"`
}

// Restore replaces the stored profile and trips with those in an exported
// pack. The embedded evaluation is ignored; it is recomputed on demand.
// Every record is validated before anything is written, and the swap is
// atomic: on error the previous records stay in place. Evaluation history
// is kept.
func (s *Service) Restore(ctx context.Context, r io.Reader) (DataPack, error) {
	var in restoredPack
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return DataPack{}, &eligibility.ValidationError{Field: "dataPack", Err: err}
	}
	if in.Profile != nil {
		if err := in.Profile.Validate(); err != nil {
			return DataPack{}, err
		}
	}
	if in.Trips == nil {
		in.Trips = []eligibility.Trip{}
	}

	seen := make(map[string]bool, len(in.Trips))
	for i := range in.Trips {
		if err := in.Trips[i].Validate(); err != nil {
			return DataPack{}, &RowError{Line: i + 1, Err: err}
		}
		if in.Trips[i].ID == "" {
			in.Trips[i].ID = s.newID()
		}
		if seen[in.Trips[i].ID] {
			return DataPack{}, &RowError{Line: i + 1, Err: fmt.Errorf("%w: %s", ErrDuplicateTripID, in.Trips[i].ID)}
		}
		seen[in.Trips[i].ID] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Store.Replace(ctx, in.Profile, in.Trips); err != nil {
		return DataPack{}, fmt.Errorf("replace records: %w", err)
	}
	return DataPack{Profile: in.Profile, Trips: in.Trips}, nil
}
