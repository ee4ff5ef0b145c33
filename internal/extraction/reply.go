package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoJSON        = errors.New("reply contains no JSON array or object")
	ErrMalformedJSON = errors.New("reply contains malformed JSON")
	ErrNoAnswers     = errors.New("reply contains an empty answer array")
)

// ParseReply locates the answer JSON inside a model reply that may carry
// surrounding prose. The span from the first '[' to the last ']' wins; only
// when there is none is the span from the first '{' to the last '}' tried,
// and a lone object is returned as a one-element sequence.
//
// Replies holding several unrelated bracketed substrings are ambiguous; the
// outermost span is taken as authoritative and usually fails to parse.
// Elements are returned undecoded and may not be objects.
func ParseReply(reply string) ([]json.RawMessage, error) {
	if span, ok := enclosingSpan(reply, '[', ']'); ok {
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(span), &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
		}
		if len(items) == 0 {
			return nil, ErrNoAnswers
		}
		return items, nil
	}

	if span, ok := enclosingSpan(reply, '{', '}'); ok {
		var obj json.RawMessage
		if err := json.Unmarshal([]byte(span), &obj); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
		}
		return []json.RawMessage{obj}, nil
	}

	return nil, ErrNoJSON
}

func enclosingSpan(s string, open, closing byte) (string, bool) {
	start := strings.IndexByte(s, open)
	if start < 0 {
		return "", false
	}
	end := strings.LastIndexByte(s, closing)
	if end < start {
		return "", false
	}
	return s[start : end+1], true
}
