package store

import (
	"archive/zip"
	"bytes"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/kiteco/ctt/ctt-go/record"
	"github.com/kiteco/ctt/ctt-golib/errors"
	"github.com/kiteco/ctt/ctt-golib/fileutil"
	"github.com/kiteco/ctt/ctt-golib/serialization"
	"go.uber.org/zap"
)

// zipStore reads records from a zip archive. Without preloading the archive
// is reopened on every read. Remote archives are always preloaded.
type zipStore struct {
	*index
	path   string
	remote bool
	// position of each entry in the archive's central directory
	positions map[string]int

	m         sync.RWMutex
	preloaded *zip.Reader
}

func newZipStore(path string, preload bool) (*zipStore, error) {
	s := &zipStore{path: path, remote: strings.Contains(path, "://"), positions: make(map[string]int)}

	var files []*zip.File
	if preload || s.remote {
		buf, err := fileutil.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "preloading %s", path)
		}
		zr, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", path)
		}
		logger.Info("preloaded record archive", zap.String("path", path), zap.String("size", humanize.Bytes(uint64(len(buf)))))
		s.preloaded = zr
		files = zr.File
	} else {
		zr, err := zip.OpenReader(path)
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", path)
		}
		defer zr.Close()
		files = zr.File
	}

	names := make([]string, 0, len(files))
	for i, f := range files {
		names = append(names, f.Name)
		s.positions[f.Name] = i
	}
	ix, err := resolveOffsets(path, names)
	if err != nil {
		return nil, err
	}
	s.index = ix
	return s, nil
}

func (s *zipStore) Read(humanIdx, dayIdx int) (*record.Record, error) {
	name, err := s.lookup(humanIdx, dayIdx)
	if err != nil {
		return nil, err
	}

	s.m.RLock()
	zr := s.preloaded
	s.m.RUnlock()
	if zr != nil {
		return decodeZipEntry(zr.File[s.positions[name]])
	}
	if s.remote {
		return nil, errors.Wrapf(ErrStoreClosed, "%s", s.path)
	}

	return s.readFromDisk(name)
}

func (s *zipStore) readFromDisk(name string) (*record.Record, error) {
	zr, err := zip.OpenReader(s.path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", s.path)
	}
	defer zr.Close()

	pos := s.positions[name]
	if pos >= len(zr.File) || zr.File[pos].Name != name {
		return nil, errors.Errorf("%s changed since it was indexed", s.path)
	}
	return decodeZipEntry(zr.File[pos])
}

func decodeZipEntry(f *zip.File) (rec *record.Record, err error) {
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", f.Name)
	}
	defer errors.Defer(&err, rc.Close)

	rec = &record.Record{}
	if err := serialization.Decode(rc, f.Name, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Close drops the preloaded archive. Local archives fall back to reading from
// disk afterwards.
func (s *zipStore) Close() error {
	s.m.Lock()
	defer s.m.Unlock()
	s.preloaded = nil
	return nil
}
