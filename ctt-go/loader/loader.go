// Package loader iterates over a dataset in collated batches, fetching the
// samples of each batch in parallel.
package loader

import (
	"context"
	"io"
	"math/rand"
	"runtime"
	"sync"

	"github.com/kiteco/ctt/ctt-go/collate"
	"github.com/kiteco/ctt/ctt-go/dataset"
	"github.com/kiteco/ctt/ctt-go/encoder"
	"github.com/kiteco/ctt/ctt-golib/envutil"
	"github.com/kiteco/ctt/ctt-golib/errors"
	"github.com/kiteco/ctt/ctt-golib/logging"
	"github.com/kiteco/ctt/ctt-golib/workerpool"
	"go.uber.org/zap"
)

// ErrBatchSize is returned by New for a non-positive batch size.
var ErrBatchSize = errors.New("batch size must be positive")

var logger = logging.Named("loader")

// Options configure a Loader.
type Options struct {
	BatchSize int
	// Shuffle visits the items in a random order, reseeded from Seed and the
	// epoch number so every epoch is reproducible.
	Shuffle bool
	Seed    int64
	// NumWorkers defaults to $CTT_NUM_WORKERS, or runtime.NumCPU() if unset.
	NumWorkers int
	// DropLast skips a final batch smaller than BatchSize.
	DropLast bool
}

// Loader produces epochs of batches over a source.
type Loader struct {
	src  dataset.Source
	opts Options

	m     sync.Mutex
	epoch int64
}

// New returns a loader over src.
func New(src dataset.Source, opts Options) (*Loader, error) {
	if opts.BatchSize <= 0 {
		return nil, errors.Wrapf(ErrBatchSize, "got %d", opts.BatchSize)
	}
	if opts.NumWorkers <= 0 {
		n, err := envutil.GetenvInt("CTT_NUM_WORKERS", runtime.NumCPU())
		if err != nil {
			return nil, err
		}
		opts.NumWorkers = n
	}
	return &Loader{src: src, opts: opts}, nil
}

// NumBatches is the number of batches in one epoch.
func (l *Loader) NumBatches() int {
	n := l.src.Len() / l.opts.BatchSize
	if !l.opts.DropLast && l.src.Len()%l.opts.BatchSize != 0 {
		n++
	}
	return n
}

// Epoch starts a pass over the source. The iterator must be closed.
func (l *Loader) Epoch(ctx context.Context) *Iterator {
	l.m.Lock()
	epoch := l.epoch
	l.epoch++
	l.m.Unlock()

	order := make([]int, l.src.Len())
	if l.opts.Shuffle {
		order = rand.New(rand.NewSource(l.opts.Seed + epoch)).Perm(len(order))
	} else {
		for i := range order {
			order[i] = i
		}
	}

	logger.Debug("starting epoch",
		zap.Int64("epoch", epoch),
		zap.Int("items", len(order)),
		zap.Int("batches", l.NumBatches()))

	return &Iterator{
		ctx:   ctx,
		opts:  l.opts,
		src:   l.src,
		order: order,
		pool:  workerpool.New(l.opts.NumWorkers),
	}
}

// Iterator yields the batches of one epoch. It is not safe for concurrent use.
type Iterator struct {
	ctx   context.Context
	opts  Options
	src   dataset.Source
	order []int
	pos   int
	pool  *workerpool.Pool
}

// Next returns the next batch, io.EOF once the epoch is over, or the
// context's error once it is canceled.
func (it *Iterator) Next() (collate.Batch, error) {
	if err := it.ctx.Err(); err != nil {
		return nil, err
	}

	end := it.pos + it.opts.BatchSize
	if end > len(it.order) {
		end = len(it.order)
	}
	if it.pos == end || (it.opts.DropLast && end-it.pos < it.opts.BatchSize) {
		it.Close()
		return nil, io.EOF
	}
	indices := it.order[it.pos:end]
	it.pos = end

	samples := make([]encoder.Sample, len(indices))
	var jobs []workerpool.Job
	for i, idx := range indices {
		i, idx := i, idx
		jobs = append(jobs, func() error {
			if err := it.ctx.Err(); err != nil {
				return err
			}
			s, err := it.src.Item(idx)
			if err != nil {
				return errors.Wrapf(err, "item %d", idx)
			}
			samples[i] = s
			return nil
		})
	}
	it.pool.AddBlocking(jobs)
	if err := it.pool.Wait(); err != nil {
		if ctxErr := it.ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	return collate.Collate(samples)
}

// Close stops the iterator's workers.
func (it *Iterator) Close() {
	it.pool.Stop()
}
