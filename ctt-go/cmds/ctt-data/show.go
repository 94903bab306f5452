package main

import (
	"fmt"

	"github.com/kiteco/ctt/ctt-golib/cmdline"
	"github.com/kr/pretty"
)

var showCmd = cmdline.Command{
	Name:     "show",
	Synopsis: "pretty-print one raw record and the shapes of its encoding",
	Args:     &showArgs{},
}

type showArgs struct {
	DatasetArgs
	Human   int      `help:"zero-based human index"`
	Day     int      `help:"zero-based day index"`
	Project []string `help:"fields to project from the encoded sample"`
}

func (args *showArgs) Handle() error {
	ds, err := args.open()
	if err != nil {
		return err
	}
	defer ds.Store().Close()

	rec, err := ds.Store().Read(args.Human, args.Day)
	if err != nil {
		return err
	}
	pretty.Println(rec)

	sample, err := ds.Get(args.Human, args.Day)
	if err != nil {
		return err
	}
	fmt.Printf("encoded sample, %d encounters:\n", sample.NumEncounters())
	return printTensors(sample, args.Project)
}
