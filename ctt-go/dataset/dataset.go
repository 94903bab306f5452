// Package dataset indexes encoded samples over a record store and resamples
// around degenerate records.
package dataset

import (
	"github.com/kiteco/ctt/ctt-go/encoder"
	"github.com/kiteco/ctt/ctt-go/store"
	"github.com/kiteco/ctt/ctt-golib/errors"
	"github.com/kiteco/ctt/ctt-golib/logging"
	"go.uber.org/zap"
)

// DaysPerHuman is the number of days after the requested one that are tried
// for a human before moving on to the next human.
const DaysPerHuman = 6

// FullSweep is the number of reads needed to visit every candidate of an item:
// the requested day plus DaysPerHuman following days for the requested human,
// and the DaysPerHuman days after the requested day for every other human.
func FullSweep(numHumans int) int {
	return 1 + DaysPerHuman*numHumans
}

var (
	// ErrResampleExhausted is returned when no usable record was found within
	// the configured number of attempts.
	ErrResampleExhausted = errors.New("resampling exhausted")
	// ErrIndexOutOfRange is returned for flat indices outside [0, Len()).
	ErrIndexOutOfRange = errors.New("index out of range")
)

var logger = logging.Named("dataset")

// Source is anything that serves encoded samples by flat index.
type Source interface {
	Len() int
	Item(idx int) (encoder.Sample, error)
}

// Options configure a Dataset.
type Options struct {
	// MaxResampleAttempts bounds the total number of records tried for one
	// item. Zero selects one full sweep over the humans (FullSweep); a
	// negative value never gives up.
	MaxResampleAttempts int
}

// Dataset serves the samples of a store, row-major over (humans, days).
type Dataset struct {
	store       store.Store
	encoder     *encoder.Encoder
	maxAttempts int
}

// New returns a dataset over s using enc.
func New(s store.Store, enc *encoder.Encoder, opts Options) *Dataset {
	max := opts.MaxResampleAttempts
	if max == 0 {
		max = FullSweep(s.NumHumans())
	}
	return &Dataset{
		store:       s,
		encoder:     enc,
		maxAttempts: max,
	}
}

// Store returns the underlying record store.
func (d *Dataset) Store() store.Store {
	return d.store
}

// NumHumans is the number of humans in the grid.
func (d *Dataset) NumHumans() int {
	return d.store.NumHumans()
}

// NumDays is the number of days in the grid.
func (d *Dataset) NumDays() int {
	return d.store.NumDays()
}

// Len is NumHumans * NumDays.
func (d *Dataset) Len() int {
	return d.NumHumans() * d.NumDays()
}

// Unravel converts a flat index into (human, day).
func (d *Dataset) Unravel(idx int) (humanIdx, dayIdx int, err error) {
	if idx < 0 || idx >= d.Len() {
		return 0, 0, errors.Wrapf(ErrIndexOutOfRange, "%d not in [0, %d)", idx, d.Len())
	}
	return idx / d.NumDays(), idx % d.NumDays(), nil
}

// Get reads and encodes one record without resampling. A degenerate record
// yields encoder.ErrDegenerateSample.
func (d *Dataset) Get(humanIdx, dayIdx int) (encoder.Sample, error) {
	rec, err := d.store.Read(humanIdx, dayIdx)
	if err != nil {
		return nil, err
	}
	return d.encoder.Encode(rec, humanIdx)
}

// Item returns the sample at idx. Degenerate records are replaced by trying
// the DaysPerHuman following days of the same human (wrapping around), then
// the DaysPerHuman days after the requested day for the next human, and so
// on. The requested day itself is only tried for the requested human. The
// walk is deterministic for a given idx. Errors other than degenerate records
// are returned unchanged.
func (d *Dataset) Item(idx int) (encoder.Sample, error) {
	humanIdx, dayIdx, err := d.Unravel(idx)
	if err != nil {
		return nil, err
	}

	human, day := humanIdx, dayIdx
	// number of days stepped away from dayIdx for the current human
	var stepped int
	for attempt := 0; d.maxAttempts < 0 || attempt < d.maxAttempts; attempt++ {
		sample, err := d.Get(human, day)
		if err == nil {
			if attempt > 0 {
				logger.Debug("resampled degenerate record",
					zap.Int("requested_human", humanIdx),
					zap.Int("requested_day", dayIdx),
					zap.Int("human", human),
					zap.Int("day", day),
					zap.Int("attempts", attempt+1))
			}
			return sample, nil
		}
		if !errors.Is(err, encoder.ErrDegenerateSample) {
			return nil, err
		}

		if stepped == DaysPerHuman {
			human = (human + 1) % d.NumHumans()
			day = dayIdx
			stepped = 0
		}
		day = (day + 1) % d.NumDays()
		stepped++
	}

	return nil, errors.Wrapf(ErrResampleExhausted, "item %d (human %d, day %d) after %d attempts",
		idx, humanIdx, dayIdx, d.maxAttempts)
}
