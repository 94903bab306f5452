package store

import (
	"archive/zip"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/kiteco/ctt/ctt-go/record"
	"github.com/kiteco/ctt/ctt-golib/errors"
	"github.com/kiteco/ctt/ctt-golib/serialization"
	"github.com/mholt/archiver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var (
	testDays   = []int{-1, 0, 1}
	testHumans = []int{100, 101}
)

func testRecord(day, human int) *record.Record {
	return record.NewTestRecord(day, record.Encounter{PartnerID: human, Message: 1, Duration: 1, Day: day})
}

// writeRecords writes one file per (day, human) and returns the directory and
// the written paths.
func writeRecords(t *testing.T, ext string) (string, []string) {
	dir, err := ioutil.TempDir("", "store")
	require.NoError(t, err)

	var paths []string
	for _, d := range testDays {
		for _, h := range testHumans {
			path := filepath.Join(dir, fmt.Sprintf("%d-%d%s", d, h, ext))
			require.NoError(t, serialization.EncodeFile(path, testRecord(d, h)))
			paths = append(paths, path)
		}
	}
	return dir, paths
}

func writeZip(t *testing.T, dest string, paths []string) {
	f, err := os.Create(dest)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, p := range paths {
		w, err := zw.Create(filepath.Base(p))
		require.NoError(t, err)
		buf, err := ioutil.ReadFile(p)
		require.NoError(t, err)
		_, err = w.Write(buf)
		require.NoError(t, err)
	}
	_, err = zw.Create("__MACOSX/._0-100.json")
	require.NoError(t, err)
	require.NoError(t, zw.Close())
}

func requireGrid(t *testing.T, s Store) {
	require.Equal(t, len(testHumans), s.NumHumans())
	require.Equal(t, len(testDays), s.NumDays())
	for hi, h := range testHumans {
		for di, d := range testDays {
			rec, err := s.Read(hi, di)
			require.NoError(t, err)
			assert.Equal(t, d, rec.CurrentDay)
			assert.Equal(t, h, rec.Observed.CandidateEncounters[0].PartnerID)
		}
	}
	_, err := s.Read(len(testHumans), 0)
	assert.True(t, errors.Is(err, ErrRecordNotFound))
}

func TestParseName(t *testing.T) {
	for _, tc := range []struct {
		name       string
		day, human int
		ok         bool
	}{
		{"3-17.json", 3, 17, true},
		{"-1-100.json", -1, 100, true},
		{"/some/dir/12-0.gob.gz", 12, 0, true},
		{"s3://bucket/run/-13-5.json.sz", -13, 5, true},
		{"x-1.json", 0, 0, false},
		{"17.json", 0, 0, false},
		{"1-2-3.json", 0, 0, false},
	} {
		day, human, err := parseName(tc.name)
		if !tc.ok {
			assert.True(t, errors.Is(err, ErrBadFilename), tc.name)
			continue
		}
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.day, day, tc.name)
		assert.Equal(t, tc.human, human, tc.name)
	}
}

func TestDirStore(t *testing.T) {
	dir, paths := writeRecords(t, ".json")
	defer os.RemoveAll(dir)
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0644))

	s, err := Open(dir, Options{})
	require.NoError(t, err)
	defer s.Close()
	requireGrid(t, s)

	require.NoError(t, os.Remove(paths[0]))
	_, err = s.Read(0, 0)
	assert.Error(t, err)
}

func TestDirStoreCompressed(t *testing.T) {
	dir, _ := writeRecords(t, ".gob.sz")
	defer os.RemoveAll(dir)

	s, err := Open(dir, Options{})
	require.NoError(t, err)
	requireGrid(t, s)
}

func TestZipStore(t *testing.T) {
	dir, paths := writeRecords(t, ".json.gz")
	defer os.RemoveAll(dir)
	archive := filepath.Join(dir, "records.zip")
	writeZip(t, archive, paths)

	for _, preload := range []bool{false, true} {
		s, err := Open(archive, Options{Preload: preload})
		require.NoError(t, err)
		requireGrid(t, s)
		require.NoError(t, s.Close())
	}
}

func TestTarStore(t *testing.T) {
	dir, paths := writeRecords(t, ".json")
	defer os.RemoveAll(dir)
	archive := filepath.Join(dir, "records.tar.gz")
	require.NoError(t, archiver.NewTarGz().Archive(paths, archive))

	for _, preload := range []bool{false, true} {
		s, err := Open(archive, Options{Preload: preload})
		require.NoError(t, err)
		requireGrid(t, s)
		require.NoError(t, s.Close())
	}
}

func TestOpenErrors(t *testing.T) {
	_, err := Open("/definitely/not/here.pkl", Options{})
	assert.True(t, errors.Is(err, ErrUnsupportedPath))

	dir, err := ioutil.TempDir("", "store")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	_, err = Open(dir, Options{})
	assert.True(t, errors.Is(err, ErrEmptyStore))

	require.NoError(t, serialization.EncodeFile(filepath.Join(dir, "day3-human1.json"), testRecord(3, 1)))
	_, err = Open(dir, Options{})
	assert.True(t, errors.Is(err, ErrBadFilename))
	require.NoError(t, os.Remove(filepath.Join(dir, "day3-human1.json")))

	require.NoError(t, serialization.EncodeFile(filepath.Join(dir, "3-1.json"), testRecord(3, 1)))
	require.NoError(t, serialization.EncodeFile(filepath.Join(dir, "3-1.json.gz"), testRecord(3, 1)))
	_, err = Open(dir, Options{})
	assert.True(t, errors.Is(err, ErrBadFilename))
}

func TestMemoryStore(t *testing.T) {
	data := [][]*record.Record{
		{testRecord(0, 0), testRecord(1, 0), testRecord(2, 0)},
		{testRecord(0, 1), nil},
	}
	s, err := NewMemory(data)
	require.NoError(t, err)
	assert.Equal(t, 2, s.NumHumans())
	assert.Equal(t, 3, s.NumDays())

	rec, err := s.Read(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Observed.CandidateEncounters[0].PartnerID)

	for _, idx := range [][2]int{{1, 1}, {1, 2}, {2, 0}, {-1, 0}} {
		_, err := s.Read(idx[0], idx[1])
		assert.True(t, errors.Is(err, ErrRecordNotFound), "%v", idx)
	}

	_, err = NewMemory(nil)
	assert.True(t, errors.Is(err, ErrEmptyStore))
}

type countingStore struct {
	Store
	reads int
}

func (c *countingStore) Read(humanIdx, dayIdx int) (*record.Record, error) {
	c.reads++
	return c.Store.Read(humanIdx, dayIdx)
}

func TestCache(t *testing.T) {
	mem, err := NewMemory([][]*record.Record{{testRecord(0, 0), testRecord(1, 0), testRecord(2, 0)}})
	require.NoError(t, err)
	counting := &countingStore{Store: mem}

	s, err := WithCache(counting, 2)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		rec, err := s.Read(0, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, rec.CurrentDay)
	}
	assert.Equal(t, 1, counting.reads)

	s.Read(0, 0)
	s.Read(0, 2)
	s.Read(0, 1) // evicted by the two reads above
	assert.Equal(t, 4, counting.reads)

	_, err = s.Read(0, 5)
	assert.True(t, errors.Is(err, ErrRecordNotFound))
	assert.Equal(t, 1, s.NumHumans())
	require.NoError(t, s.Close())
}

func TestSchemaViolation(t *testing.T) {
	dir, err := ioutil.TempDir("", "store")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "3-0.json")
	require.NoError(t, ioutil.WriteFile(path, []byte(`{"current_day": 3, "observed": {"candidate_encounters": [[1, 2, 3]]}}`), 0644))
	archives, err := ioutil.TempDir("", "store")
	require.NoError(t, err)
	defer os.RemoveAll(archives)
	zipPath := filepath.Join(archives, "records.zip")
	writeZip(t, zipPath, []string{path})
	tarPath := filepath.Join(archives, "records.tar.gz")
	require.NoError(t, archiver.NewTarGz().Archive([]string{path}, tarPath))

	for _, tc := range []struct {
		path    string
		preload bool
	}{
		{dir, false},
		{zipPath, false},
		{zipPath, true},
		{tarPath, false},
		{tarPath, true},
	} {
		s, err := Open(tc.path, Options{Preload: tc.preload})
		require.NoError(t, err, tc.path)
		_, err = s.Read(0, 0)
		assert.True(t, errors.Is(err, record.ErrSchema), "%s (preload %v): %v", tc.path, tc.preload, err)
		require.NoError(t, s.Close())
	}
}

func TestZipStoreClose(t *testing.T) {
	dir, paths := writeRecords(t, ".json")
	defer os.RemoveAll(dir)
	archive := filepath.Join(dir, "records.zip")
	writeZip(t, archive, paths)

	s, err := newZipStore(archive, true)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, err := s.Read(j%len(testHumans), j%len(testDays))
				assert.NoError(t, err)
			}
		}()
	}
	require.NoError(t, s.Close())
	wg.Wait()

	// local archives are read from disk once the preloaded copy is gone
	requireGrid(t, s)

	remote, err := newZipStore(archive, true)
	require.NoError(t, err)
	remote.remote = true
	_, err = remote.Read(0, 0)
	require.NoError(t, err)
	require.NoError(t, remote.Close())
	_, err = remote.Read(0, 0)
	assert.True(t, errors.Is(err, ErrStoreClosed))
}

func TestOffsetsLoggedAtDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	defer func(l *zap.Logger) { logger = l }(logger)
	logger = zap.New(core)

	dir, _ := writeRecords(t, ".json")
	defer os.RemoveAll(dir)
	_, err := Open(dir, Options{})
	require.NoError(t, err)

	entries := logs.FilterMessage("resolved record offsets").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, int64(len(testDays)*len(testHumans)), entries[0].ContextMap()["records"])
	for _, e := range logs.All() {
		assert.NotEqual(t, zapcore.InfoLevel, e.Level, e.Message)
	}
}
