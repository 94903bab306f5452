package fileutil

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoin(t *testing.T) {
	assert.Equal(t, "s3://bucket/a/b.json", Join("s3://bucket/a", "b.json"))
	assert.Equal(t, "s3://bucket/a/b.json", Join("s3://bucket/a/", "b.json"))
	assert.Equal(t, filepath.Join("/tmp", "x", "y"), Join("/tmp", "x", "y"))
	assert.Equal(t, "", Join())
}

func TestBase(t *testing.T) {
	assert.Equal(t, "0-1.json", Base("s3://bucket/dir/0-1.json"))
	assert.Equal(t, "0-1.json", Base(filepath.Join("dir", "0-1.json")))
}

func TestListDirAndReadFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "fileutil")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0644))
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "b.txt"), []byte("bb"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	assert.True(t, IsDir(dir))
	assert.False(t, IsDir(filepath.Join(dir, "a.txt")))
	assert.True(t, IsDir("s3://bucket/prefix/"))

	paths, err := ListDir(dir)
	require.NoError(t, err)
	sort.Strings(paths)
	assert.Equal(t, []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")}, paths)

	data, err := ReadFile(paths[1])
	require.NoError(t, err)
	assert.Equal(t, "bb", string(data))
}

func TestReadFileHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/opts.yaml" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("preload: true\n"))
	}))
	defer srv.Close()

	data, err := ReadFile(srv.URL + "/opts.yaml")
	require.NoError(t, err)
	assert.Equal(t, "preload: true\n", string(data))

	_, err = ReadFile(srv.URL + "/missing.yaml")
	assert.Error(t, err)
	assert.False(t, IsDir(srv.URL))
}
