// Package collate assembles encoded samples into training batches, padding
// the variable-length encounter sets to a common length.
package collate

import (
	"sort"

	"github.com/kiteco/ctt/ctt-go/encoder"
	"github.com/kiteco/ctt/ctt-golib/errors"
	"github.com/kiteco/ctt/ctt-golib/tensor"
)

// Mask is the name of the (batch, max encounters) validity tensor.
const Mask = "mask"

var (
	// ErrEmptyBatch is returned when collating zero samples.
	ErrEmptyBatch = errors.New("cannot collate an empty batch")
	// ErrSetSizeMismatch is returned when the encounter fields of one sample
	// disagree on the number of encounters.
	ErrSetSizeMismatch = errors.New("encounter fields disagree on set size")
	// ErrMissingField is returned when samples do not share the same fields.
	ErrMissingField = errors.New("sample is missing a field")
)

// Batch maps field names to tensors with a leading batch dimension.
type Batch map[string]tensor.Tensor

// Size is the number of samples in the batch.
func (b Batch) Size() int {
	m, ok := b[Mask]
	if !ok {
		return 0
	}
	return m.Dim(0)
}

// Fields returns the field names in sorted order.
func (b Batch) Fields() []string {
	names := make([]string, 0, len(b))
	for k := range b {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Collate stacks the fixed-size fields of samples and pads the set-valued
// fields to the largest encounter count in the batch.
func Collate(samples []encoder.Sample) (Batch, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyBatch
	}

	batch := make(Batch, len(samples[0])+1)
	var setFields []string
	for name := range samples[0] {
		if encoder.IsSetValued(name) {
			setFields = append(setFields, name)
			continue
		}
		ts, err := gather(samples, name)
		if err != nil {
			return nil, err
		}
		stacked, err := tensor.Stack(ts)
		if err != nil {
			return nil, errors.Wrapf(err, "stacking %s", name)
		}
		batch[name] = stacked
	}

	lengths := make([]int, len(samples))
	var maxLen int
	for i, s := range samples {
		lengths[i] = s.NumEncounters()
		for _, name := range setFields {
			t, ok := s[name]
			if !ok {
				return nil, errors.Wrapf(ErrMissingField, "sample %d has no %s", i, name)
			}
			if t.Rank() == 0 || t.Dim(0) != lengths[i] {
				return nil, errors.Wrapf(ErrSetSizeMismatch, "sample %d: %s has shape %v, expected %d rows", i, name, t.Shape, lengths[i])
			}
		}
		if lengths[i] > maxLen {
			maxLen = lengths[i]
		}
	}

	mask := tensor.New(len(samples), maxLen)
	for i, n := range lengths {
		row := mask.Row(i)
		for j := 0; j < n; j++ {
			row[j] = 1
		}
	}
	batch[Mask] = mask

	for _, name := range setFields {
		padded := make([]tensor.Tensor, len(samples))
		for i, s := range samples {
			p, err := s[name].PadRows(maxLen)
			if err != nil {
				return nil, errors.Wrapf(err, "padding %s", name)
			}
			padded[i] = p
		}
		stacked, err := tensor.Stack(padded)
		if err != nil {
			return nil, errors.Wrapf(err, "stacking %s", name)
		}
		batch[name] = stacked
	}

	return batch, nil
}

func gather(samples []encoder.Sample, name string) ([]tensor.Tensor, error) {
	ts := make([]tensor.Tensor, len(samples))
	for i, s := range samples {
		t, ok := s[name]
		if !ok {
			return nil, errors.Wrapf(ErrMissingField, "sample %d has no %s", i, name)
		}
		ts[i] = t
	}
	return ts, nil
}
