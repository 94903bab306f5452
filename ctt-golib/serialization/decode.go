package serialization

import (
	"compress/bzip2"
	"compress/gzip"
	"encoding/gob"
	"encoding/json"
	"io"
	"strings"

	"github.com/golang/snappy"
	"github.com/kiteco/ctt/ctt-golib/errors"
	"github.com/kiteco/ctt/ctt-golib/fileutil"
)

// Decoder is an interface that matches gob.Decoder and json.Decoder
type Decoder interface {
	// Decode extracts an object from the stream
	Decode(interface{}) error
}

var (
	compressions = []string{".gz", ".bz2", ".sz"}
	encodings    = []string{".json", ".gob"}
)

// SplitExt splits name into its base and its serialization extension, e.g.
// "3-7.json.gz" becomes ("3-7", ".json.gz"). ok is false if the name does not
// end in a supported extension.
func SplitExt(name string) (base, ext string, ok bool) {
	rest := name
	var comp string
	for _, c := range compressions {
		if strings.HasSuffix(rest, c) {
			comp = c
			rest = strings.TrimSuffix(rest, c)
			break
		}
	}
	for _, e := range encodings {
		if strings.HasSuffix(rest, e) {
			return strings.TrimSuffix(rest, e), e + comp, true
		}
	}
	return name, "", false
}

// Supported returns true if name ends in an extension that Decode understands.
func Supported(name string) bool {
	_, _, ok := SplitExt(name)
	return ok
}

// DecodeFile loads a single object from a local or remote file. If the path
// ends with .gz, .bz2 or .sz then the contents will be decompressed. The
// encoding is then determined by the remaining file extension, which can be
// .json or .gob.
//
//   var rec record.Record
//   err := serialization.DecodeFile("/data/run/3-17.json.gz", &rec)
func DecodeFile(path string, v interface{}) error {
	r, err := fileutil.NewReader(path)
	if err != nil {
		return errors.Wrapf(err, "error loading %s", path)
	}
	defer r.Close()
	return Decode(r, path, v)
}

// Decode is like DecodeFile but reads from r, using name to determine the
// compression and encoding.
func Decode(r io.Reader, name string, v interface{}) error {
	_, ext, ok := SplitExt(name)
	if !ok {
		return errors.Errorf("could not find decoder for %s", name)
	}

	switch {
	case strings.HasSuffix(ext, ".gz"):
		rd, err := gzip.NewReader(r)
		if err != nil {
			return errors.Wrapf(err, "error loading %s", name)
		}
		defer rd.Close()
		r = rd
	case strings.HasSuffix(ext, ".bz2"):
		r = bzip2.NewReader(r)
	case strings.HasSuffix(ext, ".sz"):
		r = snappy.NewReader(r)
	}

	var d Decoder
	switch {
	case strings.HasPrefix(ext, ".json"):
		d = json.NewDecoder(r)
	case strings.HasPrefix(ext, ".gob"):
		d = gob.NewDecoder(r)
	}

	if err := d.Decode(v); err != nil {
		return errors.Wrapf(err, "error decoding %s", name)
	}
	return nil
}
