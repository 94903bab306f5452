package collate

import (
	"github.com/kiteco/ctt/ctt-golib/errors"
	"github.com/kiteco/ctt/ctt-golib/serialization"
)

// SaveBatches writes batches as one feed file, e.g. to replay the exact feeds
// a model was trained on. The codec follows the extension, as in
// serialization.EncodeFile ("feeds.gob", "feeds.gob.sz", ...).
func SaveBatches(filename string, batches []Batch) error {
	if err := serialization.EncodeFile(filename, batches); err != nil {
		return errors.Wrapf(err, "saving %d batches", len(batches))
	}
	return nil
}

// LoadBatches reads a feed file written by SaveBatches.
func LoadBatches(filename string) ([]Batch, error) {
	var batches []Batch
	if err := serialization.DecodeFile(filename, &batches); err != nil {
		return nil, err
	}
	return batches, nil
}
