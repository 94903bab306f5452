package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/gocarina/gocsv"
	"github.com/kiteco/ctt/ctt-go/dataset"
	"github.com/kiteco/ctt/ctt-golib/cmdline"
)

var describeCmd = cmdline.Command{
	Name:     "describe",
	Synopsis: "print the grid size and encounter statistics of a record store",
	Args:     &describeArgs{Samples: 1000},
}

type describeArgs struct {
	DatasetArgs
	Samples int    `help:"number of records to examine, 0 for all"`
	CSV     string `help:"write per-record encounter counts to this csv file"`
}

func (args *describeArgs) Handle() error {
	ds, err := args.open()
	if err != nil {
		return err
	}
	defer ds.Store().Close()

	s, err := dataset.Describe(ds, args.Samples)
	if err != nil {
		return err
	}

	fmt.Printf("humans: %s, days: %s, records: %s\n",
		humanize.Comma(int64(s.NumHumans)), humanize.Comma(int64(s.NumDays)), humanize.Comma(int64(ds.Len())))
	fmt.Printf("examined %d records, %d degenerate\n", s.Examined, s.Degenerate)
	e := s.Encounters
	fmt.Printf("encounters: min %.0f, median %.1f, mean %.2f, p90 %.1f, max %.0f, stddev %.2f\n",
		e.Min, e.Median, e.Mean, e.P90, e.Max, e.StdDev)

	if args.CSV == "" {
		return nil
	}
	f, err := os.Create(args.CSV)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gocsv.Marshal(&s.Records, f); err != nil {
		return err
	}
	fmt.Printf("wrote %d rows to %s\n", len(s.Records), args.CSV)
	return nil
}
