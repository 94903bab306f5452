// Package record defines the raw human-day record produced by the simulator:
// what an individual's app could observe on a day, and the ground truth that
// was hidden from it.
package record

import (
	"encoding/json"
	"math"

	"github.com/kiteco/ctt/ctt-golib/errors"
)

const (
	// HistoryDays is the length of the trailing health window.
	HistoryDays = 14
	// NumSymptoms is the number of reported symptom channels per day.
	NumSymptoms = 28
	// NumConditions is the number of preexisting condition flags.
	NumConditions = 10
	// EncounterWidth is the number of columns of a candidate encounter row.
	EncounterWidth = 4

	// MaxPartnerID is the largest partner id representable in 16 bits.
	MaxPartnerID = 1<<16 - 1
	// MaxMessage is the largest risk message representable in 8 bits.
	MaxMessage = 1<<8 - 1
)

// ErrSchema is returned when a record violates its shape contract.
var ErrSchema = errors.New("record schema violation")

// Encounter is one row of candidate_encounters. On the wire it is the array
// [partner_id, message, duration, day].
type Encounter struct {
	PartnerID int
	Message   int
	Duration  float32
	Day       int
}

// UnmarshalJSON implements json.Unmarshaler
func (e *Encounter) UnmarshalJSON(b []byte) error {
	var row []float64
	if err := json.Unmarshal(b, &row); err != nil {
		return errors.Wrapf(ErrSchema, "encounter must be a numeric array: %v", err)
	}
	if len(row) != EncounterWidth {
		return errors.Wrapf(ErrSchema, "encounter has %d columns, expected %d", len(row), EncounterWidth)
	}
	for _, col := range []int{0, 1, 3} {
		if row[col] != math.Trunc(row[col]) {
			return errors.Wrapf(ErrSchema, "encounter column %d must be integral, got %v", col, row[col])
		}
	}
	*e = Encounter{
		PartnerID: int(row[0]),
		Message:   int(row[1]),
		Duration:  float32(row[2]),
		Day:       int(row[3]),
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (e Encounter) MarshalJSON() ([]byte, error) {
	return json.Marshal([]float64{float64(e.PartnerID), float64(e.Message), float64(e.Duration), float64(e.Day)})
}

// Observed is what the individual (or their app) could see.
type Observed struct {
	CandidateEncounters []Encounter `json:"candidate_encounters"`
	// ReportedSymptoms has HistoryDays rows of NumSymptoms channels, most recent first.
	ReportedSymptoms [][]float32 `json:"reported_symptoms"`
	// TestResults has one entry per history day, most recent first.
	TestResults []float32 `json:"test_results"`

	Age                   *float64  `json:"age,omitempty"`
	Sex                   *float64  `json:"sex,omitempty"`
	PreexistingConditions []float32 `json:"preexisting_conditions,omitempty"`
}

// AgeValue returns the reported age. ok is false if the age was not recorded.
// A recorded age may still be the -1 "not available" marker.
func (o Observed) AgeValue() (float64, bool) {
	if o.Age == nil {
		return 0, false
	}
	return *o.Age, true
}

// SexValue returns the reported sex. ok is false if it was not recorded.
func (o Observed) SexValue() (float64, bool) {
	if o.Sex == nil {
		return 0, false
	}
	return *o.Sex, true
}

// Conditions returns the preexisting condition flags, if recorded.
func (o Observed) Conditions() ([]float32, bool) {
	if o.PreexistingConditions == nil {
		return nil, false
	}
	return o.PreexistingConditions, true
}

// Unobserved is the simulator's ground truth.
type Unobserved struct {
	// Infectiousness is the trailing infectiousness trajectory, most recent
	// first. Early in a simulation it may have fewer than HistoryDays entries.
	Infectiousness []float32 `json:"infectiousness"`
	IsRecovered    bool      `json:"is_recovered"`
	IsExposed      bool      `json:"is_exposed"`
	// ExposureEncounter flags, per candidate encounter, whether it was the
	// contagion. Nil when the simulator did not record it.
	ExposureEncounter []float32 `json:"exposure_encounter,omitempty"`
}

// Record is one human-day.
type Record struct {
	CurrentDay int        `json:"current_day"`
	Observed   Observed   `json:"observed"`
	Unobserved Unobserved `json:"unobserved"`
}

// Validate checks the shape contract of the record.
func (r *Record) Validate() error {
	o, u := r.Observed, r.Unobserved

	if len(o.ReportedSymptoms) != HistoryDays {
		return errors.Wrapf(ErrSchema, "reported_symptoms has %d rows, expected %d", len(o.ReportedSymptoms), HistoryDays)
	}
	for i, row := range o.ReportedSymptoms {
		if len(row) != NumSymptoms {
			return errors.Wrapf(ErrSchema, "reported_symptoms row %d has %d channels, expected %d", i, len(row), NumSymptoms)
		}
	}
	if len(o.TestResults) != HistoryDays {
		return errors.Wrapf(ErrSchema, "test_results has %d entries, expected %d", len(o.TestResults), HistoryDays)
	}
	if c, ok := o.Conditions(); ok && len(c) != NumConditions {
		return errors.Wrapf(ErrSchema, "preexisting_conditions has %d entries, expected %d", len(c), NumConditions)
	}
	for i, e := range o.CandidateEncounters {
		if e.PartnerID < 0 || e.PartnerID > MaxPartnerID {
			return errors.Wrapf(ErrSchema, "encounter %d: partner id %d does not fit in 16 bits", i, e.PartnerID)
		}
		if e.Message < 0 || e.Message > MaxMessage {
			return errors.Wrapf(ErrSchema, "encounter %d: message %d does not fit in 8 bits", i, e.Message)
		}
	}

	if len(u.Infectiousness) > HistoryDays {
		return errors.Wrapf(ErrSchema, "infectiousness has %d entries, at most %d allowed", len(u.Infectiousness), HistoryDays)
	}
	if u.ExposureEncounter != nil && len(u.ExposureEncounter) != len(o.CandidateEncounters) {
		return errors.Wrapf(ErrSchema, "exposure_encounter has %d entries for %d encounters",
			len(u.ExposureEncounter), len(o.CandidateEncounters))
	}
	return nil
}
