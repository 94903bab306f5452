package loader

import (
	"context"
	"io"
	"sort"
	"testing"

	"github.com/kiteco/ctt/ctt-go/collate"
	"github.com/kiteco/ctt/ctt-go/dataset"
	"github.com/kiteco/ctt/ctt-go/encoder"
	"github.com/kiteco/ctt/ctt-go/record"
	"github.com/kiteco/ctt/ctt-go/store"
	"github.com/kiteco/ctt/ctt-golib/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSource returns a dataset of numHumans x numDays records where human h
// has h+1 encounters every day.
func newSource(t *testing.T, numHumans, numDays int) *dataset.Dataset {
	data := make([][]*record.Record, numHumans)
	for h := range data {
		for d := 0; d < numDays; d++ {
			var encs []record.Encounter
			for i := 0; i <= h; i++ {
				encs = append(encs, record.Encounter{PartnerID: i, Message: 1, Duration: 1, Day: d})
			}
			data[h] = append(data[h], record.NewTestRecord(d, encs...))
		}
	}
	s, err := store.NewMemory(data)
	require.NoError(t, err)
	return dataset.New(s, encoder.New(encoder.DefaultOptions()), dataset.Options{})
}

// drain collects the flat indices of every sample in an epoch, in order.
func drain(t *testing.T, l *Loader, numDays int) ([]int, []int) {
	it := l.Epoch(context.Background())
	defer it.Close()

	var indices, sizes []int
	for {
		batch, err := it.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		sizes = append(sizes, batch.Size())
		humans, days := batch[encoder.HumanIdx], batch[encoder.DayIdx]
		for i := 0; i < batch.Size(); i++ {
			indices = append(indices, int(humans.Data[i])*numDays+int(days.Data[i]))
		}
	}
	return indices, sizes
}

func TestSequential(t *testing.T) {
	l, err := New(newSource(t, 2, 5), Options{BatchSize: 4, NumWorkers: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, l.NumBatches())

	indices, sizes := drain(t, l, 5)
	assert.Equal(t, []int{4, 4, 2}, sizes)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, indices)
}

func TestDropLast(t *testing.T) {
	l, err := New(newSource(t, 2, 5), Options{BatchSize: 4, DropLast: true})
	require.NoError(t, err)
	assert.Equal(t, 2, l.NumBatches())

	indices, sizes := drain(t, l, 5)
	assert.Equal(t, []int{4, 4}, sizes)
	assert.Len(t, indices, 8)
}

func TestShuffle(t *testing.T) {
	src := newSource(t, 3, 4)
	opts := Options{BatchSize: 5, Shuffle: true, Seed: 7}

	a, err := New(src, opts)
	require.NoError(t, err)
	b, err := New(src, opts)
	require.NoError(t, err)

	first, _ := drain(t, a, 4)
	again, _ := drain(t, b, 4)
	assert.Equal(t, first, again)

	sorted := append([]int(nil), first...)
	sort.Ints(sorted)
	for i := range sorted {
		assert.Equal(t, i, sorted[i])
	}

	second, _ := drain(t, a, 4)
	assert.NotEqual(t, first, second)
}

func TestBatchPadding(t *testing.T) {
	l, err := New(newSource(t, 3, 1), Options{BatchSize: 3})
	require.NoError(t, err)

	it := l.Epoch(context.Background())
	defer it.Close()
	batch, err := it.Next()
	require.NoError(t, err)

	mask := batch[collate.Mask]
	assert.Equal(t, []int{3, 3}, mask.Shape)
	assert.Equal(t, []float32{1, 0, 0, 1, 1, 0, 1, 1, 1}, mask.Data)
}

func TestBadBatchSize(t *testing.T) {
	_, err := New(newSource(t, 1, 1), Options{})
	assert.True(t, errors.Is(err, ErrBatchSize))
}

type failingSource struct {
	dataset.Source
	fail int
}

var errItem = errors.New("item failed")

func (f failingSource) Item(idx int) (encoder.Sample, error) {
	if idx == f.fail {
		return nil, errItem
	}
	return f.Source.Item(idx)
}

func TestItemError(t *testing.T) {
	l, err := New(failingSource{Source: newSource(t, 2, 2), fail: 3}, Options{BatchSize: 2})
	require.NoError(t, err)

	it := l.Epoch(context.Background())
	defer it.Close()
	_, err = it.Next()
	require.NoError(t, err)
	_, err = it.Next()
	assert.Error(t, err)
}

func TestCancel(t *testing.T) {
	l, err := New(newSource(t, 2, 4), Options{BatchSize: 2})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	it := l.Epoch(ctx)
	defer it.Close()

	_, err = it.Next()
	require.NoError(t, err)
	cancel()
	_, err = it.Next()
	assert.Equal(t, context.Canceled, err)
}
