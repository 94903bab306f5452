package store

import (
	"archive/tar"
	"bytes"
	"io/ioutil"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/kiteco/ctt/ctt-go/record"
	"github.com/kiteco/ctt/ctt-golib/errors"
	"github.com/kiteco/ctt/ctt-golib/serialization"
	"github.com/mholt/archiver"
	"go.uber.org/zap"
)

// tarStore reads records from a gzipped tarball. Tar has no central directory,
// so without preloading every read walks the archive up to the entry.
type tarStore struct {
	*index
	path string

	m         sync.RWMutex
	preloaded map[string][]byte
}

func entryName(f archiver.File) string {
	if hdr, ok := f.Header.(*tar.Header); ok {
		return hdr.Name
	}
	return f.Name()
}

func newTarStore(path string, preload bool) (*tarStore, error) {
	s := &tarStore{path: path}
	if preload {
		s.preloaded = make(map[string][]byte)
	}

	var names []string
	var size uint64
	err := archiver.NewTarGz().Walk(path, func(f archiver.File) error {
		if f.IsDir() {
			return nil
		}
		name := entryName(f)
		names = append(names, name)
		if !preload || !isRecordName(name) {
			return nil
		}
		buf, err := ioutil.ReadAll(f)
		if err != nil {
			return err
		}
		s.preloaded[name] = buf
		size += uint64(len(buf))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if preload {
		logger.Info("preloaded record archive", zap.String("path", path), zap.String("size", humanize.Bytes(size)))
	}

	ix, err := resolveOffsets(path, names)
	if err != nil {
		return nil, err
	}
	s.index = ix
	return s, nil
}

func (s *tarStore) Read(humanIdx, dayIdx int) (*record.Record, error) {
	name, err := s.lookup(humanIdx, dayIdx)
	if err != nil {
		return nil, err
	}

	s.m.RLock()
	buf, ok := s.preloaded[name]
	s.m.RUnlock()
	if ok {
		rec := &record.Record{}
		if err := serialization.Decode(bytes.NewReader(buf), name, rec); err != nil {
			return nil, err
		}
		return rec, nil
	}

	// archiver flattens walk errors into strings, so decode errors are
	// carried out of the walk separately
	var rec *record.Record
	var decodeErr error
	err = archiver.NewTarGz().Walk(s.path, func(f archiver.File) error {
		if entryName(f) != name {
			return nil
		}
		rec = &record.Record{}
		decodeErr = serialization.Decode(f, name, rec)
		return archiver.ErrStopWalk
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", s.path)
	}
	if rec == nil {
		return nil, errors.Wrapf(ErrRecordNotFound, "%s is missing from %s", name, s.path)
	}
	return rec, nil
}

// Close drops the preloaded entries.
func (s *tarStore) Close() error {
	s.m.Lock()
	defer s.m.Unlock()
	s.preloaded = nil
	return nil
}
