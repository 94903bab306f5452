package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/kiteco/ctt/ctt-go/collate"
	"github.com/kiteco/ctt/ctt-go/loader"
	"github.com/kiteco/ctt/ctt-golib/cmdline"
)

var batchCmd = cmdline.Command{
	Name:     "batch",
	Synopsis: "collate batches from a record store and print their shapes",
	Args: &batchArgs{
		BatchSize: 32,
		Batches:   1,
	},
}

type batchArgs struct {
	DatasetArgs
	BatchSize int      `help:"samples per batch"`
	Batches   int      `help:"number of batches, 0 for a full epoch"`
	Shuffle   bool     `help:"visit records in random order"`
	Seed      int64    `help:"shuffle seed"`
	Workers   int      `help:"parallel record readers, defaults to the number of CPUs"`
	Out       string   `help:"write the batches to this gob feed file"`
	Project   []string `help:"fields to project from each batch"`
}

func (args *batchArgs) Handle() error {
	start := time.Now()

	ds, err := args.open()
	if err != nil {
		return err
	}
	defer ds.Store().Close()

	l, err := loader.New(ds, loader.Options{
		BatchSize:  args.BatchSize,
		Shuffle:    args.Shuffle,
		Seed:       args.Seed,
		NumWorkers: args.Workers,
	})
	if err != nil {
		return err
	}

	it := l.Epoch(context.Background())
	defer it.Close()

	var batches []collate.Batch
	for args.Batches == 0 || len(batches) < args.Batches {
		batch, err := it.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		fmt.Printf("batch %d: %d samples\n", len(batches), batch.Size())
		if err := printTensors(batch, args.Project); err != nil {
			return err
		}
		batches = append(batches, batch)
	}

	if args.Out != "" {
		if err := collate.SaveBatches(args.Out, batches); err != nil {
			return err
		}
		fmt.Printf("wrote %d batches to %s\n", len(batches), args.Out)
	}

	fmt.Printf("done, took %v\n", time.Since(start))
	return nil
}
