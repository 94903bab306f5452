// Package encoder turns a raw human-day record into a fixed-schema Sample of
// float32 tensors.
package encoder

import (
	"github.com/kiteco/ctt/ctt-go/record"
	"github.com/kiteco/ctt/ctt-golib/errors"
	"github.com/kiteco/ctt/ctt-golib/tensor"
)

var (
	// ErrDegenerateSample is returned when a record has no encounters inside
	// the trailing history window. It is the only error callers are expected
	// to recover from.
	ErrDegenerateSample = errors.New("no usable encounters")

	// ErrUnmatchedEncounterDay is returned when an encounter's day has no row
	// in the health history.
	ErrUnmatchedEncounterDay = errors.New("encounter day not in health history")
)

// Normalization constants for demographic and risk fields.
const (
	AssumedMinAge  = 1
	AssumedMaxAge  = 100
	AgeUnavailable = -1

	DefaultSex = 0

	AssumedMinRisk = 0
	AssumedMaxRisk = 15
)

// Compartments in one-hot order.
const (
	Susceptible = iota
	Exposed
	Infectious
	Recovered
	numCompartments
)

// Transform is applied to every sample after encoding. It may modify the
// sample in place or return a new one.
type Transform func(Sample) (Sample, error)

// Options configure an Encoder.
type Options struct {
	// RelativeDays shifts history_days and encounter_day so today is 0 and
	// the past is negative.
	RelativeDays bool
	// ClipHistoryDays floors history_days at day 0 before any relative shift.
	ClipHistoryDays bool
	// BitEncodedMessages unpacks risk messages to 8 bits instead of
	// normalizing them to [0, 1].
	BitEncodedMessages bool
	// LenientEncounterDays maps encounters whose day has no history row to
	// row 0 instead of failing.
	LenientEncounterDays bool
	// Transform, if set, is applied last.
	Transform Transform
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		RelativeDays:       true,
		BitEncodedMessages: true,
	}
}

// Encoder encodes records. It holds no mutable state and is safe for
// concurrent use.
type Encoder struct {
	opts Options
}

// New returns an Encoder with the given options.
func New(opts Options) *Encoder {
	return &Encoder{opts: opts}
}

// Options returns the encoder's configuration.
func (e *Encoder) Options() Options {
	return e.opts
}

// MessageWidth is the width of the encounter_message tensor.
func (e *Encoder) MessageWidth() int {
	if e.opts.BitEncodedMessages {
		return MessageBits
	}
	return 1
}

// Encode builds the Sample for rec. humanIdx is recorded in the human_idx
// tensor; pass -1 when the record does not come from a store. The day is
// always taken from rec.CurrentDay.
func (e *Encoder) Encode(rec *record.Record, humanIdx int) (Sample, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	day := rec.CurrentDay

	kept := recentEncounters(rec, day)
	if len(kept) == 0 {
		return nil, errors.Wrapf(ErrDegenerateSample, "day %d", day)
	}
	numEncounters := len(kept)

	healthHistory := e.healthHistory(rec)
	historyDays := make([]int, record.HistoryDays)
	validHistory := tensor.New(record.HistoryDays)
	for i := range historyDays {
		historyDays[i] = day - i
		if historyDays[i] >= 0 {
			validHistory.Data[i] = 1
		}
	}

	partnerID := tensor.New(numEncounters, PartnerIDBits)
	message := tensor.New(numEncounters, e.MessageWidth())
	duration := tensor.New(numEncounters, 1)
	encounterDay := tensor.New(numEncounters, 1)
	isContagion := tensor.New(numEncounters, 1)
	encounterHealth := tensor.New(numEncounters, healthHistory.Dim(1))

	for row, idx := range kept {
		enc := rec.Observed.CandidateEncounters[idx]

		copy(partnerID.Row(row), UnpackBits(enc.PartnerID, PartnerIDBits))
		copy(message.Row(row), e.message(enc.Message))
		duration.Data[row] = enc.Duration
		encounterDay.Data[row] = float32(enc.Day)
		if exp := rec.Unobserved.ExposureEncounter; exp != nil {
			isContagion.Data[row] = exp[idx]
		}

		h, err := e.historyRow(historyDays, enc.Day)
		if err != nil {
			return nil, errors.Wrapf(err, "encounter %d on day %d", idx, day)
		}
		copy(encounterHealth.Row(row), healthHistory.Row(h))
	}

	infectiousness := infectiousnessHistory(rec)

	profile := tensor.New(2 + record.NumConditions)
	profile.Data[0] = normalizedAge(rec.Observed)
	profile.Data[1] = DefaultSex
	if sex, ok := rec.Observed.SexValue(); ok {
		profile.Data[1] = float32(sex)
	}
	if conditions, ok := rec.Observed.Conditions(); ok {
		copy(profile.Data[2:], conditions)
	}

	days := tensor.New(record.HistoryDays, 1)
	for i, d := range historyDays {
		if e.opts.ClipHistoryDays && d < 0 {
			d = 0
		}
		days.Data[i] = float32(d)
	}
	if e.opts.RelativeDays {
		shift := func(v float32) float32 { return v - float32(day) }
		days = days.Apply(shift)
		encounterDay = encounterDay.Apply(shift)
	}

	sample := Sample{
		HumanIdx:              tensor.Vector(float32(humanIdx)),
		DayIdx:                tensor.Vector(float32(day)),
		HealthHistory:         healthHistory,
		HealthProfile:         profile,
		InfectiousnessHistory: infectiousness,
		HistoryDays:           days,
		ValidHistoryMask:      validHistory,
		CurrentCompartment:    currentCompartment(rec, infectiousness),
		EncounterHealth:       encounterHealth,
		EncounterMessage:      message,
		EncounterPartnerID:    partnerID,
		EncounterDay:          encounterDay,
		EncounterDuration:     duration,
		EncounterIsContagion:  isContagion,
	}

	if e.opts.Transform != nil {
		return e.opts.Transform(sample)
	}
	return sample, nil
}

// recentEncounters returns the indices of encounters inside the trailing
// history window.
func recentEncounters(rec *record.Record, day int) []int {
	var kept []int
	for i, enc := range rec.Observed.CandidateEncounters {
		if enc.Day > day-record.HistoryDays {
			kept = append(kept, i)
		}
	}
	return kept
}

// healthHistory is reported symptoms with the test result appended, (14, 29).
func (e *Encoder) healthHistory(rec *record.Record) tensor.Tensor {
	width := record.NumSymptoms + 1
	t := tensor.New(record.HistoryDays, width)
	for i := 0; i < record.HistoryDays; i++ {
		row := t.Row(i)
		copy(row, rec.Observed.ReportedSymptoms[i])
		row[record.NumSymptoms] = rec.Observed.TestResults[i]
	}
	return t
}

// historyRow finds the history row recorded on day.
func (e *Encoder) historyRow(historyDays []int, day int) (int, error) {
	for i, d := range historyDays {
		if d == day {
			return i, nil
		}
	}
	if e.opts.LenientEncounterDays {
		return 0, nil
	}
	return 0, ErrUnmatchedEncounterDay
}

func (e *Encoder) message(risk int) []float32 {
	if e.opts.BitEncodedMessages {
		return UnpackBits(risk, MessageBits)
	}
	return []float32{float32(risk-AssumedMinRisk) / float32(AssumedMaxRisk-AssumedMinRisk)}
}

// infectiousnessHistory right-pads the trajectory with zeros to (14, 1).
func infectiousnessHistory(rec *record.Record) tensor.Tensor {
	t := tensor.New(record.HistoryDays, 1)
	copy(t.Data, rec.Unobserved.Infectiousness)
	return t
}

// currentCompartment is the one-hot S/E/I/R state. Recovered wins over
// infectious, which wins over exposed.
func currentCompartment(rec *record.Record, infectiousness tensor.Tensor) tensor.Tensor {
	c := Susceptible
	switch {
	case rec.Unobserved.IsRecovered:
		c = Recovered
	case infectiousness.Data[0] > 0:
		c = Infectious
	case rec.Unobserved.IsExposed:
		c = Exposed
	}
	t := tensor.New(numCompartments)
	t.Data[c] = 1
	return t
}

// normalizedAge maps [1, 100] to [0, 1]. Missing ages and the -1 marker both
// encode as -1.
func normalizedAge(o record.Observed) float32 {
	age, ok := o.AgeValue()
	if !ok || age == AgeUnavailable {
		return AgeUnavailable
	}
	return float32((age - AssumedMinAge) / (AssumedMaxAge - AssumedMinAge))
}
