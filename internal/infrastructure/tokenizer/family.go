// Package tokenizer provides token counting infrastructure using tiktoken.
// Tokenizers are resolved by coarse model family and cached process-wide,
// since constructing an encoding is expensive and many rule instances
// reference the same family.
package tokenizer

import "strings"

// Encoding names understood by tiktoken.
const (
	EncodingCL100K = "cl100k_base"
	EncodingO200K  = "o200k_base"
)

// DefaultEncoding is used for model families without a specific mapping.
// cl100k_base is a reasonable approximation for most modern LLMs.
const DefaultEncoding = EncodingCL100K

// Family is a coarse grouping of model names that share a token-encoding
// scheme.
type Family string

const (
	FamilyGPT     Family = "gpt"
	FamilyClaude  Family = "claude"
	FamilyGemini  Family = "gemini"
	FamilyGeneric Family = "generic"
)

// ResolveFamily maps a model name to its tokenizer family.
// Matching is on well-known name prefixes and substrings; unknown models map
// to the generic family.
func ResolveFamily(model string) Family {
	m := strings.ToLower(model)

	switch {
	case strings.Contains(m, "claude"):
		return FamilyClaude
	case strings.Contains(m, "gemini"):
		return FamilyGemini
	case strings.HasPrefix(m, "gpt"), strings.HasPrefix(m, "o1"),
		strings.HasPrefix(m, "o3"), strings.HasPrefix(m, "o4"),
		strings.HasPrefix(m, "chatgpt"):
		return FamilyGPT
	default:
		return FamilyGeneric
	}
}

// Encoding returns the tiktoken encoding name for the family.
func (f Family) Encoding() string {
	switch f {
	case FamilyGPT, FamilyGemini:
		return EncodingO200K
	case FamilyClaude:
		return EncodingCL100K
	default:
		return DefaultEncoding
	}
}
