package tokenizer

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Encoder is the subset of the tiktoken API the counter needs.
type Encoder interface {
	Encode(text string, allowedSpecial, disallowedSpecial []string) []int
}

// builderFunc constructs an encoder for an encoding name.
type builderFunc func(encoding string) (Encoder, error)

// tiktokenBuilder builds real tiktoken encodings.
func tiktokenBuilder(encoding string) (Encoder, error) {
	return tiktoken.GetEncoding(encoding)
}

// Cache is a lazily-populated map from encoding name to tokenizer handle.
//
// Reads take the lock-free fast path through sync.Map; on miss the mutex is
// acquired and the map re-checked before constructing, so a race between two
// callers builds each encoding at most once. Entries live for the process
// lifetime and are never evicted. Construction failures are not cached.
type Cache struct {
	mu       sync.Mutex
	encoders sync.Map // encoding name -> Encoder
	build    builderFunc
}

// shared is the process-wide cache used by every counter instance.
var shared = &Cache{build: tiktokenBuilder}

// Shared returns the process-wide tokenizer cache.
func Shared() *Cache {
	return shared
}

// newCacheWithBuilder creates an isolated cache with a custom builder.
// Used by tests to observe construction behavior.
func newCacheWithBuilder(build builderFunc) *Cache {
	return &Cache{build: build}
}

// Get returns the encoder for an encoding name, constructing and caching it
// on first use.
func (c *Cache) Get(encoding string) (Encoder, error) {
	if enc, ok := c.encoders.Load(encoding); ok {
		return enc.(Encoder), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Re-check under the lock: another caller may have won the race.
	if enc, ok := c.encoders.Load(encoding); ok {
		return enc.(Encoder), nil
	}

	enc, err := c.build(encoding)
	if err != nil {
		return nil, err
	}
	c.encoders.Store(encoding, enc)
	return enc, nil
}
