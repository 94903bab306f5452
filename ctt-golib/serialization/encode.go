package serialization

import (
	"compress/gzip"
	"encoding/gob"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
	"github.com/kiteco/ctt/ctt-golib/errors"
)

// Encoder is an interface that matches gob.Encoder and json.Encoder
type Encoder interface {
	Encode(interface{}) error
}

// Encode writes v to w using the encoding and compression implied by name.
// bzip2 output is not supported.
func Encode(w io.Writer, name string, v interface{}) (err error) {
	_, ext, ok := SplitExt(name)
	if !ok {
		return errors.Errorf("could not find encoder for %s", name)
	}

	switch {
	case strings.HasSuffix(ext, ".gz"):
		zw := gzip.NewWriter(w)
		defer errors.Defer(&err, zw.Close)
		w = zw
	case strings.HasSuffix(ext, ".sz"):
		sw := snappy.NewBufferedWriter(w)
		defer errors.Defer(&err, sw.Close)
		w = sw
	case strings.HasSuffix(ext, ".bz2"):
		return errors.Errorf("bzip2 encoding is not supported: %s", name)
	}

	var e Encoder
	switch {
	case strings.HasPrefix(ext, ".json"):
		e = json.NewEncoder(w)
	case strings.HasPrefix(ext, ".gob"):
		e = gob.NewEncoder(w)
	}
	if err := e.Encode(v); err != nil {
		return errors.Wrapf(err, "error encoding %s", name)
	}
	return nil
}

// EncodeFile writes v to a local file, creating parent directories as needed.
func EncodeFile(path string, v interface{}) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer errors.Defer(&err, f.Close)
	return Encode(f, path, v)
}
