package main

import (
	"github.com/kiteco/ctt/ctt-go/dataset"
	"github.com/kiteco/ctt/ctt-go/encoder"
	"github.com/kiteco/ctt/ctt-golib/cmdline"
)

var preprocessCmd = cmdline.Command{
	Name:     "preprocess",
	Synopsis: "encode a single record file as a batch of one",
	Args:     &preprocessArgs{},
}

type preprocessArgs struct {
	Record   string   `arg:"positional,required" help:"record file (.json, .gob, optionally .gz, .bz2 or .sz)"`
	Config   string   `help:"dataset options file (.json, .yaml)"`
	Project  []string `help:"fields to project from the batch"`
	LogLevel string   `help:"debug, info, warn or error"`
}

func (args *preprocessArgs) Handle() error {
	opts, err := DatasetArgs{Config: args.Config, LogLevel: args.LogLevel}.options()
	if err != nil {
		return err
	}

	p := dataset.NewPreprocessor(encoder.New(opts.Encoder(nil)))
	batch, err := p.PreprocessFile(args.Record)
	if err != nil {
		return err
	}
	return printTensors(batch, args.Project)
}
