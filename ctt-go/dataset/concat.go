package dataset

import (
	"sort"

	"github.com/kiteco/ctt/ctt-go/encoder"
	"github.com/kiteco/ctt/ctt-golib/errors"
)

// Concatenated indexes several sources one after the other.
type Concatenated struct {
	sources []Source
	// ends[i] is the flat index one past the last item of sources[i].
	ends []int
}

// Concat returns a source serving the items of every source in order.
func Concat(sources ...Source) *Concatenated {
	c := &Concatenated{sources: sources}
	var total int
	for _, s := range sources {
		total += s.Len()
		c.ends = append(c.ends, total)
	}
	return c
}

// Len is the total number of items.
func (c *Concatenated) Len() int {
	if len(c.ends) == 0 {
		return 0
	}
	return c.ends[len(c.ends)-1]
}

// Item returns the item at the flat index idx.
func (c *Concatenated) Item(idx int) (encoder.Sample, error) {
	if idx < 0 || idx >= c.Len() {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "%d not in [0, %d)", idx, c.Len())
	}
	i := sort.SearchInts(c.ends, idx+1)
	start := 0
	if i > 0 {
		start = c.ends[i-1]
	}
	return c.sources[i].Item(idx - start)
}
