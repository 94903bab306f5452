// Package config holds the construction-time options of a dataset and loads
// them from JSON or YAML files.
package config

import (
	"bytes"
	"encoding/json"
	"path/filepath"

	"github.com/kiteco/ctt/ctt-go/dataset"
	"github.com/kiteco/ctt/ctt-go/encoder"
	"github.com/kiteco/ctt/ctt-go/store"
	"github.com/kiteco/ctt/ctt-golib/errors"
	"github.com/kiteco/ctt/ctt-golib/fileutil"
	yaml "gopkg.in/yaml.v2"
)

// ErrInvalid is returned for options that cannot be used.
var ErrInvalid = errors.New("invalid options")

// Options are the recognized dataset options.
type Options struct {
	RelativeDays         bool `json:"relative_days" yaml:"relative_days"`
	ClipHistoryDays      bool `json:"clip_history_days" yaml:"clip_history_days"`
	BitEncodedMessages   bool `json:"bit_encoded_messages" yaml:"bit_encoded_messages"`
	LenientEncounterDays bool `json:"lenient_encounter_days" yaml:"lenient_encounter_days"`

	Preload   bool `json:"preload" yaml:"preload"`
	CacheSize int  `json:"cache_size" yaml:"cache_size"`

	MaxResampleAttempts int `json:"max_resample_attempts" yaml:"max_resample_attempts"`
}

// Default returns the options used when nothing is configured.
func Default() Options {
	enc := encoder.DefaultOptions()
	return Options{
		RelativeDays:       enc.RelativeDays,
		ClipHistoryDays:    enc.ClipHistoryDays,
		BitEncodedMessages: enc.BitEncodedMessages,
	}
}

// Load reads options from a .json, .yaml or .yml file (local, s3:// or
// http). Keys missing from the file keep their default values.
func Load(path string) (Options, error) {
	opts := Default()

	buf, err := fileutil.ReadFile(path)
	if err != nil {
		return opts, errors.Wrapf(err, "reading %s", path)
	}

	switch ext := filepath.Ext(path); ext {
	case ".json":
		d := json.NewDecoder(bytes.NewReader(buf))
		d.DisallowUnknownFields()
		err = d.Decode(&opts)
	case ".yaml", ".yml":
		err = yaml.UnmarshalStrict(buf, &opts)
	default:
		return opts, errors.Wrapf(ErrInvalid, "%s: unsupported config extension %q", path, ext)
	}
	if err != nil {
		return opts, errors.Wrapf(err, "decoding %s", path)
	}
	return opts, opts.Validate()
}

// Validate checks the options for values no component accepts.
func (o Options) Validate() error {
	if o.CacheSize < 0 {
		return errors.Wrapf(ErrInvalid, "cache_size must not be negative, got %d", o.CacheSize)
	}
	return nil
}

// Encoder returns the encoder options. transform may be nil.
func (o Options) Encoder(transform encoder.Transform) encoder.Options {
	return encoder.Options{
		RelativeDays:         o.RelativeDays,
		ClipHistoryDays:      o.ClipHistoryDays,
		BitEncodedMessages:   o.BitEncodedMessages,
		LenientEncounterDays: o.LenientEncounterDays,
		Transform:            transform,
	}
}

// Store returns the store options.
func (o Options) Store() store.Options {
	return store.Options{
		Preload:   o.Preload,
		CacheSize: o.CacheSize,
	}
}

// Dataset returns the dataset options.
func (o Options) Dataset() dataset.Options {
	return dataset.Options{
		MaxResampleAttempts: o.MaxResampleAttempts,
	}
}

// Open opens the records at path and returns a dataset configured by o.
func (o Options) Open(path string, transform encoder.Transform) (*dataset.Dataset, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	s, err := store.Open(path, o.Store())
	if err != nil {
		return nil, err
	}
	return dataset.New(s, encoder.New(o.Encoder(transform)), o.Dataset()), nil
}
