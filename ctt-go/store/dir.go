package store

import (
	"github.com/kiteco/ctt/ctt-go/record"
	"github.com/kiteco/ctt/ctt-golib/errors"
	"github.com/kiteco/ctt/ctt-golib/fileutil"
	"github.com/kiteco/ctt/ctt-golib/serialization"
)

// dirStore reads one file per record from a local directory or s3 prefix.
type dirStore struct {
	*index
	dir string
}

func newDirStore(dir string) (*dirStore, error) {
	paths, err := fileutil.ListDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "listing records")
	}
	ix, err := resolveOffsets(dir, paths)
	if err != nil {
		return nil, err
	}
	return &dirStore{index: ix, dir: dir}, nil
}

func (s *dirStore) Read(humanIdx, dayIdx int) (*record.Record, error) {
	path, err := s.lookup(humanIdx, dayIdx)
	if err != nil {
		return nil, err
	}
	var rec record.Record
	if err := serialization.DecodeFile(path, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *dirStore) Close() error {
	return nil
}
