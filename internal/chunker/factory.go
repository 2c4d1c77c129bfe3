package chunker

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const (
	UnitChars  = "chars"
	UnitTokens = "tokens"
)

// NewLengthFunc returns the length measure for a unit name.
func NewLengthFunc(unit, encoding string) (LengthFunc, error) {
	switch strings.ToLower(unit) {
	case "", UnitChars:
		return RuneLength, nil
	case UnitTokens:
		return TokenLength(encoding)
	default:
		return nil, fmt.Errorf("unknown length unit: %s", unit)
	}
}

// TokenLength counts tokens with a tiktoken encoding. The name may be an
// encoding ("cl100k_base") or a model ("gpt-4o").
func TokenLength(encoding string) (LengthFunc, error) {
	tke, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		tke, err = tiktoken.EncodingForModel(encoding)
		if err != nil {
			return nil, fmt.Errorf("load token encoding %q: %w", encoding, err)
		}
	}
	var mu sync.Mutex
	return func(s string) int {
		mu.Lock()
		defer mu.Unlock()
		return len(tke.Encode(s, nil, nil))
	}, nil
}
