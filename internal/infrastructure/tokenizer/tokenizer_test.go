package tokenizer

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestResolveFamily(t *testing.T) {
	tests := []struct {
		model string
		want  Family
	}{
		{model: "gpt-4o", want: FamilyGPT},
		{model: "gpt-4o-mini", want: FamilyGPT},
		{model: "o1-preview", want: FamilyGPT},
		{model: "o3-mini", want: FamilyGPT},
		{model: "chatgpt-4o-latest", want: FamilyGPT},
		{model: "claude-3-5-haiku-20241022", want: FamilyClaude},
		{model: "anthropic/claude-3-7-sonnet", want: FamilyClaude},
		{model: "gemini-2.0-flash", want: FamilyGemini},
		{model: "google/gemini-1.5-pro", want: FamilyGemini},
		{model: "llama3.2:3b", want: FamilyGeneric},
		{model: "", want: FamilyGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if got := ResolveFamily(tt.model); got != tt.want {
				t.Errorf("ResolveFamily(%q) = %q, want %q", tt.model, got, tt.want)
			}
		})
	}
}

func TestFamily_Encoding(t *testing.T) {
	tests := []struct {
		family Family
		want   string
	}{
		{family: FamilyGPT, want: EncodingO200K},
		{family: FamilyGemini, want: EncodingO200K},
		{family: FamilyClaude, want: EncodingCL100K},
		{family: FamilyGeneric, want: DefaultEncoding},
		{family: Family("unknown"), want: DefaultEncoding},
	}

	for _, tt := range tests {
		if got := tt.family.Encoding(); got != tt.want {
			t.Errorf("%q.Encoding() = %q, want %q", tt.family, got, tt.want)
		}
	}
}

// countingEncoder records how many times it was built and returns one token
// per character.
type countingEncoder struct{}

func (countingEncoder) Encode(text string, _, _ []string) []int {
	tokens := make([]int, len(text))
	return tokens
}

func TestCache_ConstructsOncePerKey(t *testing.T) {
	var builds int64
	cache := newCacheWithBuilder(func(encoding string) (Encoder, error) {
		atomic.AddInt64(&builds, 1)
		return countingEncoder{}, nil
	})

	const goroutines = 16
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := cache.Get(EncodingCL100K); err != nil {
					t.Errorf("Get: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt64(&builds); got != 1 {
		t.Errorf("builder ran %d times under contention, want exactly 1", got)
	}

	// A second key builds independently.
	if _, err := cache.Get(EncodingO200K); err != nil {
		t.Fatalf("Get second encoding: %v", err)
	}
	if got := atomic.LoadInt64(&builds); got != 2 {
		t.Errorf("builder ran %d times for two keys, want 2", got)
	}
}

func TestCache_FailureNotCached(t *testing.T) {
	var builds int
	cache := newCacheWithBuilder(func(encoding string) (Encoder, error) {
		builds++
		if builds == 1 {
			return nil, errors.New("transient")
		}
		return countingEncoder{}, nil
	})

	if _, err := cache.Get(EncodingCL100K); err == nil {
		t.Fatal("first Get should fail")
	}
	if _, err := cache.Get(EncodingCL100K); err != nil {
		t.Fatalf("second Get should retry construction: %v", err)
	}
}

func TestCounter_HeuristicOnBuildFailure(t *testing.T) {
	counter := &Counter{cache: newCacheWithBuilder(func(encoding string) (Encoder, error) {
		return nil, errors.New("no network")
	})}

	// 30 characters at 3 chars per token.
	text := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	if got := counter.CountTokens("gpt-4o", text); got != 10 {
		t.Errorf("CountTokens() = %d, want heuristic estimate 10", got)
	}
}

func TestCounter_EmptyText(t *testing.T) {
	counter := NewCounter()
	if got := counter.CountTokens("gpt-4o", ""); got != 0 {
		t.Errorf("CountTokens(empty) = %d, want 0", got)
	}
}

func TestCounter_RealEncoding(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping tiktoken download in short mode")
	}

	counter := NewCounter()
	text := "The quick brown fox jumps over the lazy dog."

	count := counter.CountTokens("claude-3-5-sonnet-20241022", text)
	if count < 8 || count > 15 {
		t.Errorf("CountTokens(%q) = %d, expected between 8 and 15", text, count)
	}

	// Repeated counting must be consistent.
	if again := counter.CountTokens("claude-3-5-sonnet-20241022", text); again != count {
		t.Errorf("inconsistent counts: %d then %d", count, again)
	}
}
