package generation

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
)

// estimateTokens counts tokens with the cl100k vocabulary. It backs up
// responses that omit counts; the service's own numbers win when present.
// Returns 0 when the text is empty or the vocabulary fails to load.
func estimateTokens(text string) int64 {
	codecOnce.Do(func() {
		codec, _ = tokenizer.Get(tokenizer.Cl100kBase)
	})
	if codec == nil || text == "" {
		return 0
	}

	ids, _, err := codec.Encode(text)
	if err != nil {
		return 0
	}
	return int64(len(ids))
}
