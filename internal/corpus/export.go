package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"docqa/internal/domain"
)

// WriteJSON writes the corpus as an array of row objects with keys in header
// order, indented with four spaces.
func WriteJSON(w io.Writer, c *domain.Corpus) error {
	var compact bytes.Buffer
	compact.WriteByte('[')
	for i, doc := range c.Documents {
		if i > 0 {
			compact.WriteByte(',')
		}
		compact.WriteByte('{')
		for j, col := range c.Columns {
			if j > 0 {
				compact.WriteByte(',')
			}
			k, err := domain.MarshalLiteral(col)
			if err != nil {
				return err
			}
			v, err := domain.MarshalLiteral(doc[col])
			if err != nil {
				return err
			}
			compact.Write(k)
			compact.WriteByte(':')
			compact.Write(v)
		}
		compact.WriteByte('}')
	}
	compact.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "    "); err != nil {
		return fmt.Errorf("indenting corpus export: %w", err)
	}
	out.WriteByte('\n')
	_, err := w.Write(out.Bytes())
	return err
}
