package dataset

import (
	"github.com/kiteco/ctt/ctt-go/encoder"
	"github.com/kiteco/ctt/ctt-golib/errors"
	"github.com/montanaflynn/stats"
)

// EncounterStats summarizes the number of usable encounters per record.
type EncounterStats struct {
	Min    float64
	Max    float64
	Mean   float64
	Median float64
	StdDev float64
	P90    float64
}

// RecordSummary is one examined record.
type RecordSummary struct {
	Human      int  `csv:"human"`
	Day        int  `csv:"day"`
	Encounters int  `csv:"encounters"`
	Degenerate bool `csv:"degenerate"`
}

// Summary describes the records of a dataset.
type Summary struct {
	NumHumans  int
	NumDays    int
	Examined   int
	Degenerate int
	Encounters EncounterStats
	Records    []RecordSummary
}

// Describe encodes up to n records spread evenly over the dataset (all of
// them if n <= 0) and summarizes them. Degenerate records are counted, not
// resampled.
func Describe(d *Dataset, n int) (Summary, error) {
	s := Summary{
		NumHumans: d.NumHumans(),
		NumDays:   d.NumDays(),
	}
	total := d.Len()
	if n <= 0 || n > total {
		n = total
	}

	var counts stats.Float64Data
	for i := 0; i < n; i++ {
		human, day, err := d.Unravel(i * total / n)
		if err != nil {
			return s, err
		}
		sample, err := d.Get(human, day)
		s.Examined++
		switch {
		case errors.Is(err, encoder.ErrDegenerateSample):
			s.Degenerate++
			s.Records = append(s.Records, RecordSummary{Human: human, Day: day, Degenerate: true})
			continue
		case err != nil:
			return s, err
		}
		s.Records = append(s.Records, RecordSummary{Human: human, Day: day, Encounters: sample.NumEncounters()})
		counts = append(counts, float64(sample.NumEncounters()))
	}
	if len(counts) == 0 {
		return s, nil
	}

	var err error
	enc := &s.Encounters
	if enc.Min, err = stats.Min(counts); err != nil {
		return s, err
	}
	if enc.Max, err = stats.Max(counts); err != nil {
		return s, err
	}
	if enc.Mean, err = stats.Mean(counts); err != nil {
		return s, err
	}
	if enc.Median, err = stats.Median(counts); err != nil {
		return s, err
	}
	if enc.StdDev, err = stats.StandardDeviation(counts); err != nil {
		return s, err
	}
	if enc.P90, err = stats.Percentile(counts, 90); err != nil {
		return s, err
	}
	return s, nil
}
