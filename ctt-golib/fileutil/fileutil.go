// Package fileutil reads local files, s3 objects and http resources through
// one set of path-based functions.
package fileutil

import (
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/kiteco/ctt/ctt-golib/awsutil"
	"github.com/kiteco/ctt/ctt-golib/errors"
)

// NewReader opens path for reading: s3:// uris are read from S3, http(s)
// urls are fetched, anything else is opened on the local filesystem.
func NewReader(path string) (io.ReadCloser, error) {
	switch {
	case awsutil.IsS3URI(path):
		return awsutil.NewS3Reader(path)
	case IsHTTP(path):
		return httpReader(path)
	}
	return os.Open(path)
}

func httpReader(url string) (io.ReadCloser, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, errors.Wrapf(err, "getting %s", url)
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(ioutil.Discard, resp.Body)
		resp.Body.Close()
		return nil, errors.Errorf("getting %s: %s", url, resp.Status)
	}
	return resp.Body, nil
}

// ReadFile reads the contents of a local or remote path.
func ReadFile(path string) ([]byte, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return ioutil.ReadAll(r)
}

// IsHTTP returns true for http:// and https:// paths.
func IsHTTP(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// IsDir returns true if path is a local directory or an s3 prefix. S3 prefixes
// are only treated as directories when they end in a slash.
func IsDir(path string) bool {
	if awsutil.IsS3URI(path) {
		return strings.HasSuffix(path, "/")
	}
	if IsHTTP(path) {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ListDir returns the files directly inside dir, or the objects under an
// s3 prefix, as paths that NewReader accepts.
func ListDir(dir string) ([]string, error) {
	if awsutil.IsS3URI(dir) {
		return awsutil.ListObjects(dir)
	}

	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", dir)
	}
	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths, nil
}

// Join joins path elements, keeping the scheme of remote paths intact.
func Join(parts ...string) string {
	if len(parts) == 0 {
		return ""
	}
	first := parts[0]
	if i := strings.Index(first, "://"); i > -1 {
		scheme, rest := first[:i+3], first[i+3:]
		return scheme + path.Join(append([]string{rest}, parts[1:]...)...)
	}
	return filepath.Join(parts...)
}

// Base returns the last element of a local or remote path.
func Base(p string) string {
	if strings.Contains(p, "://") {
		return path.Base(p)
	}
	return filepath.Base(p)
}
