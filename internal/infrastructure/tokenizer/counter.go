package tokenizer

import (
	"github.com/jbctechsolutions/modelrouter/internal/domain/routing"
)

// heuristicCharsPerToken is the divisor for the character-based fallback
// estimate used when no tokenizer is available.
const heuristicCharsPerToken = 3

// Counter counts tokens with the encoding matching the request's model
// family, degrading to a character-based heuristic when the tokenizer cannot
// be constructed. It is safe for concurrent use and shares the process-wide
// encoding cache.
type Counter struct {
	cache *Cache
}

// Ensure Counter implements the domain TokenCounter interface.
var _ routing.TokenCounter = (*Counter)(nil)

// NewCounter creates a Counter backed by the shared process-wide cache.
func NewCounter() *Counter {
	return &Counter{cache: shared}
}

// CountTokens returns the token count of text for the given model.
// Tokenizer construction or encoding failures are never surfaced; the
// heuristic estimate is returned instead.
func (c *Counter) CountTokens(model, text string) int {
	if text == "" {
		return 0
	}

	enc, err := c.cache.Get(ResolveFamily(model).Encoding())
	if err != nil {
		return len(text) / heuristicCharsPerToken
	}
	return len(enc.Encode(text, nil, nil))
}
