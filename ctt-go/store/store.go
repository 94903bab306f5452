// Package store resolves zero-based (human, day) indices to raw records,
// regardless of whether the records live in a directory, an archive or memory.
package store

import (
	"strconv"
	"strings"

	"github.com/kiteco/ctt/ctt-go/record"
	"github.com/kiteco/ctt/ctt-golib/errors"
	"github.com/kiteco/ctt/ctt-golib/fileutil"
	"github.com/kiteco/ctt/ctt-golib/logging"
	"github.com/kiteco/ctt/ctt-golib/serialization"
	"go.uber.org/zap"
)

var (
	// ErrRecordNotFound is returned by Read when no record backs an index.
	ErrRecordNotFound = errors.New("record not found")
	// ErrBadFilename is returned at construction for names that are not
	// {day}-{human}.{ext}.
	ErrBadFilename = errors.New("unparseable record name")
	// ErrUnsupportedPath is returned for paths that are neither a directory
	// nor a supported archive.
	ErrUnsupportedPath = errors.New("unsupported record store path")
	// ErrEmptyStore is returned when a path holds no records.
	ErrEmptyStore = errors.New("no records found")
	// ErrStoreClosed is returned by Read on a remote archive after Close.
	ErrStoreClosed = errors.New("record store closed")
)

var logger = logging.Named("store")

// Store reads raw records by zero-based index. Implementations are safe for
// concurrent Read calls.
type Store interface {
	// Read returns the record of the given human on the given day.
	Read(humanIdx, dayIdx int) (*record.Record, error)
	// NumHumans is the size of the human axis of the index grid.
	NumHumans() int
	// NumDays is the size of the day axis of the index grid.
	NumDays() int
	// Close releases any preloaded data. Local archives keep serving reads
	// from disk afterwards.
	Close() error
}

// Options configure Open.
type Options struct {
	// Preload reads archives into memory once at construction.
	Preload bool
	// CacheSize, if positive, keeps that many decoded records in an LRU.
	CacheSize int
}

// Open selects a store implementation for path: a local directory or s3://
// prefix ending in a slash, a .zip archive, or a .tar.gz/.tgz archive.
func Open(path string, opts Options) (Store, error) {
	var s Store
	var err error
	switch {
	case fileutil.IsDir(path):
		s, err = newDirStore(path)
	case strings.HasSuffix(path, ".zip"):
		s, err = newZipStore(path, opts.Preload)
	case strings.HasSuffix(path, ".tar.gz"), strings.HasSuffix(path, ".tgz"):
		s, err = newTarStore(path, opts.Preload)
	default:
		return nil, errors.Wrapf(ErrUnsupportedPath, "%s", path)
	}
	if err != nil {
		return nil, err
	}
	if opts.CacheSize > 0 {
		return WithCache(s, opts.CacheSize)
	}
	return s, nil
}

type key struct {
	day, human int
}

// index maps storage keys to entry names and holds the offsets that make the
// public indices zero-based.
type index struct {
	entries     map[key]string
	dayOffset   int
	humanOffset int
	numDays     int
	numHumans   int
}

// parseName splits a record name like "3-17.json" or "-1-100.json.gz" into its
// day and human components.
func parseName(name string) (day, human int, err error) {
	stem, _, ok := serialization.SplitExt(fileutil.Base(name))
	if !ok {
		return 0, 0, errors.Wrapf(ErrBadFilename, "%s: unsupported extension", name)
	}
	i := strings.LastIndex(stem, "-")
	if i <= 0 {
		return 0, 0, errors.Wrapf(ErrBadFilename, "%s", name)
	}
	day, err = strconv.Atoi(stem[:i])
	if err != nil {
		return 0, 0, errors.Wrapf(ErrBadFilename, "%s: bad day: %v", name, err)
	}
	human, err = strconv.Atoi(stem[i+1:])
	if err != nil {
		return 0, 0, errors.Wrapf(ErrBadFilename, "%s: bad human: %v", name, err)
	}
	return day, human, nil
}

// isRecordName filters archive and directory listings down to record files.
func isRecordName(name string) bool {
	if strings.HasPrefix(name, "__MACOSX") || strings.Contains(name, "/__MACOSX") {
		return false
	}
	base := fileutil.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(name, "/") {
		return false
	}
	return serialization.Supported(base)
}

// resolveOffsets builds the index for the given entry names.
func resolveOffsets(source string, names []string) (*index, error) {
	ix := &index{entries: make(map[key]string)}

	var minDay, maxDay, minHuman, maxHuman int
	for _, name := range names {
		if !isRecordName(name) {
			continue
		}
		day, human, err := parseName(name)
		if err != nil {
			return nil, err
		}
		k := key{day: day, human: human}
		if prev, dup := ix.entries[k]; dup {
			return nil, errors.Wrapf(ErrBadFilename, "%s and %s hold the same record", prev, name)
		}
		if len(ix.entries) == 0 {
			minDay, maxDay, minHuman, maxHuman = day, day, human, human
		}
		ix.entries[k] = name
		minDay, maxDay = minInt(minDay, day), maxInt(maxDay, day)
		minHuman, maxHuman = minInt(minHuman, human), maxInt(maxHuman, human)
	}
	if len(ix.entries) == 0 {
		return nil, errors.Wrapf(ErrEmptyStore, "%s", source)
	}

	ix.dayOffset = minDay
	ix.humanOffset = minHuman
	ix.numDays = maxDay - minDay + 1
	ix.numHumans = maxHuman - minHuman + 1

	logger.Debug("resolved record offsets",
		zap.String("source", source),
		zap.Int("records", len(ix.entries)),
		zap.Int("day_offset", ix.dayOffset),
		zap.Int("human_offset", ix.humanOffset),
		zap.Int("num_days", ix.numDays),
		zap.Int("num_humans", ix.numHumans))

	return ix, nil
}

// lookup returns the entry name backing a zero-based index.
func (ix *index) lookup(humanIdx, dayIdx int) (string, error) {
	k := key{day: dayIdx + ix.dayOffset, human: humanIdx + ix.humanOffset}
	name, ok := ix.entries[k]
	if !ok {
		return "", errors.Wrapf(ErrRecordNotFound, "%d-%d (human %d, day %d)", k.day, k.human, humanIdx, dayIdx)
	}
	return name, nil
}

func (ix *index) NumHumans() int {
	return ix.numHumans
}

func (ix *index) NumDays() int {
	return ix.numDays
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
