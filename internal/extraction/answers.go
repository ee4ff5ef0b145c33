package extraction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var errNotObject = errors.New("answer element is not a JSON object")

type answerPair struct {
	Label string
	Value interface{}
}

// decodeAnswer reads one reply element as an object, keeping key order.
// Nested values are decoded generically; numbers keep their literal form.
func decodeAnswer(raw json.RawMessage) ([]answerPair, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading answer: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errNotObject
	}

	var pairs []answerPair
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading answer key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected answer key %v", keyTok)
		}
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("reading answer %q: %w", key, err)
		}
		pairs = append(pairs, answerPair{Label: key, Value: value})
	}
	return pairs, nil
}
