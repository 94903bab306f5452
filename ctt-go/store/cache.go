package store

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/kiteco/ctt/ctt-go/record"
	"go.uber.org/zap"
)

// cachedStore keeps recently decoded records. Records are never mutated after
// decoding, so sharing them between callers is safe.
type cachedStore struct {
	Store
	cache *lru.Cache
}

// WithCache wraps s with an LRU of up to size decoded records.
func WithCache(s Store, size int) (Store, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	logger.Debug("caching decoded records", zap.Int("size", size))
	return &cachedStore{Store: s, cache: cache}, nil
}

func (c *cachedStore) Read(humanIdx, dayIdx int) (*record.Record, error) {
	k := key{day: dayIdx, human: humanIdx}
	if v, ok := c.cache.Get(k); ok {
		return v.(*record.Record), nil
	}
	rec, err := c.Store.Read(humanIdx, dayIdx)
	if err != nil {
		return nil, err
	}
	c.cache.Add(k, rec)
	return rec, nil
}

func (c *cachedStore) Close() error {
	c.cache.Purge()
	return c.Store.Close()
}
