package dataset

import (
	"github.com/kiteco/ctt/ctt-go/collate"
	"github.com/kiteco/ctt/ctt-go/encoder"
	"github.com/kiteco/ctt/ctt-go/record"
	"github.com/kiteco/ctt/ctt-golib/errors"
	"github.com/kiteco/ctt/ctt-golib/serialization"
)

// Preprocessor encodes records that do not come from a store, e.g. a single
// record handed over at inference time.
type Preprocessor struct {
	encoder *encoder.Encoder
}

// NewPreprocessor returns a Preprocessor using enc.
func NewPreprocessor(enc *encoder.Encoder) *Preprocessor {
	return &Preprocessor{encoder: enc}
}

// Preprocess encodes rec with human_idx -1. Degenerate records are not
// resampled since there is nothing to resample from.
func (p *Preprocessor) Preprocess(rec *record.Record) (encoder.Sample, error) {
	return p.encoder.Encode(rec, -1)
}

// PreprocessBatch encodes rec and collates it as a batch of one.
func (p *Preprocessor) PreprocessBatch(rec *record.Record) (collate.Batch, error) {
	sample, err := p.Preprocess(rec)
	if err != nil {
		return nil, err
	}
	return collate.Collate([]encoder.Sample{sample})
}

// PreprocessFile decodes the record at path and encodes it as a batch of one.
func (p *Preprocessor) PreprocessFile(path string) (collate.Batch, error) {
	var rec record.Record
	if err := serialization.DecodeFile(path, &rec); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return p.PreprocessBatch(&rec)
}
