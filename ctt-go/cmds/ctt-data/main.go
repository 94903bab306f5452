package main

import (
	"fmt"
	"sort"

	"github.com/kiteco/ctt/ctt-go/config"
	"github.com/kiteco/ctt/ctt-go/dataset"
	"github.com/kiteco/ctt/ctt-go/fields"
	"github.com/kiteco/ctt/ctt-golib/cmdline"
	"github.com/kiteco/ctt/ctt-golib/errors"
	"github.com/kiteco/ctt/ctt-golib/logging"
	"github.com/kiteco/ctt/ctt-golib/tensor"
)

// DatasetArgs are shared by the commands that read a record store.
type DatasetArgs struct {
	Data     string `arg:"positional,required" help:"record directory, s3:// prefix, .zip or .tar.gz archive"`
	Config   string `help:"dataset options file (.json, .yaml)"`
	Preload  bool   `help:"load archives into memory up front"`
	LogLevel string `help:"debug, info, warn or error"`
}

func (a DatasetArgs) options() (config.Options, error) {
	if a.LogLevel != "" && !logging.SetLevel(a.LogLevel) {
		return config.Options{}, errors.Errorf("unknown log level %s", a.LogLevel)
	}
	opts := config.Default()
	if a.Config != "" {
		var err error
		if opts, err = config.Load(a.Config); err != nil {
			return opts, err
		}
	}
	if a.Preload {
		opts.Preload = true
	}
	return opts, nil
}

func (a DatasetArgs) open() (*dataset.Dataset, error) {
	opts, err := a.options()
	if err != nil {
		return nil, err
	}
	return opts.Open(a.Data, nil)
}

// printTensors prints the shape of each tensor, then the projection of each
// requested field.
func printTensors(tensors map[string]tensor.Tensor, project []string) error {
	var names []string
	for name := range tensors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-28s %s\n", name, tensors[name].ShapeString())
	}

	for _, field := range project {
		t, err := fields.Default.Project(tensors, field)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s: %v\n", field, t.ShapeString(), t.Data)
	}
	return nil
}

func main() {
	cmdline.MustDispatch(describeCmd, showCmd, batchCmd, preprocessCmd)
}
