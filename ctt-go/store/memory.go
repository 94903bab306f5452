package store

import (
	"github.com/kiteco/ctt/ctt-go/record"
	"github.com/kiteco/ctt/ctt-golib/errors"
)

// memoryStore serves records already in memory, indexed data[human][day].
type memoryStore struct {
	data    [][]*record.Record
	numDays int
}

// NewMemory wraps in-memory records indexed as data[human][day]. Humans may
// have different numbers of days; missing or nil entries are lookup failures.
func NewMemory(data [][]*record.Record) (Store, error) {
	s := &memoryStore{data: data}
	for _, days := range data {
		s.numDays = maxInt(s.numDays, len(days))
	}
	if len(data) == 0 || s.numDays == 0 {
		return nil, errors.Wrapf(ErrEmptyStore, "in-memory records")
	}
	return s, nil
}

func (s *memoryStore) Read(humanIdx, dayIdx int) (*record.Record, error) {
	if humanIdx < 0 || humanIdx >= len(s.data) || dayIdx < 0 || dayIdx >= len(s.data[humanIdx]) || s.data[humanIdx][dayIdx] == nil {
		return nil, errors.Wrapf(ErrRecordNotFound, "human %d, day %d", humanIdx, dayIdx)
	}
	return s.data[humanIdx][dayIdx], nil
}

func (s *memoryStore) NumHumans() int {
	return len(s.data)
}

func (s *memoryStore) NumDays() int {
	return s.numDays
}

func (s *memoryStore) Close() error {
	return nil
}
