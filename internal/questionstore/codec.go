package questionstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"docqa/internal/domain"
)

// DecodeJSON reads a question-set file: a single object mapping category
// name to an array of {label, question, prompt} objects. Category order is
// kept. A repeated category key is merged into its first occurrence.
func DecodeJSON(r io.Reader) ([]domain.Category, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImport, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, domain.ErrInvalidImport
	}

	var cats []domain.Category
	index := make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImport, err)
		}
		name, _ := keyTok.(string)

		var recs []domain.QuestionRecord
		if err := dec.Decode(&recs); err != nil {
			return nil, fmt.Errorf("%w: category %q: %v", domain.ErrInvalidImport, name, err)
		}
		cats = appendCategory(cats, index, name, recs)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImport, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after mapping", domain.ErrInvalidImport)
	}
	return cats, nil
}

// DecodeYAML reads the YAML form of a question-set file.
func DecodeYAML(r io.Reader) ([]domain.Category, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImport, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, domain.ErrInvalidImport
	}

	root := doc.Content[0]
	var cats []domain.Category
	index := make(map[string]int)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if key.Kind != yaml.ScalarNode || value.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("%w: category %q must map to a list", domain.ErrInvalidImport, key.Value)
		}
		var recs []domain.QuestionRecord
		if err := value.Decode(&recs); err != nil {
			return nil, fmt.Errorf("%w: category %q: %v", domain.ErrInvalidImport, key.Value, err)
		}
		cats = appendCategory(cats, index, key.Value, recs)
	}
	return cats, nil
}

// EncodeJSON writes categories as a pretty-printed mapping, four-space
// indented, with non-ASCII characters left literal.
func EncodeJSON(w io.Writer, cats []domain.Category) error {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, cat := range cats {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n    ")
		key, err := domain.MarshalLiteral(cat.Name)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteString(": ")

		recs := cat.Records
		if recs == nil {
			recs = []domain.QuestionRecord{}
		}
		var body bytes.Buffer
		enc := json.NewEncoder(&body)
		enc.SetEscapeHTML(false)
		enc.SetIndent("    ", "    ")
		if err := enc.Encode(recs); err != nil {
			return fmt.Errorf("encoding category %q: %w", cat.Name, err)
		}
		buf.Write(bytes.TrimRight(body.Bytes(), "\n"))
	}
	if len(cats) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")

	_, err := w.Write(buf.Bytes())
	return err
}

// EncodeYAML writes categories as an ordered YAML mapping.
func EncodeYAML(w io.Writer, cats []domain.Category) error {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, cat := range cats {
		recs := cat.Records
		if recs == nil {
			recs = []domain.QuestionRecord{}
		}
		var value yaml.Node
		if err := value.Encode(recs); err != nil {
			return fmt.Errorf("encoding category %q: %w", cat.Name, err)
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: cat.Name},
			&value,
		)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}); err != nil {
		return err
	}
	return enc.Close()
}

// Decode picks the decoder for format.
func Decode(r io.Reader, format domain.ExportFormat) ([]domain.Category, error) {
	switch format {
	case domain.ExportFormatJSON:
		return DecodeJSON(r)
	case domain.ExportFormatYAML:
		return DecodeYAML(r)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, format)
	}
}

// Encode picks the encoder for format.
func Encode(w io.Writer, cats []domain.Category, format domain.ExportFormat) error {
	switch format {
	case domain.ExportFormatJSON:
		return EncodeJSON(w, cats)
	case domain.ExportFormatYAML:
		return EncodeYAML(w, cats)
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, format)
	}
}

func appendCategory(cats []domain.Category, index map[string]int, name string, recs []domain.QuestionRecord) []domain.Category {
	if recs == nil {
		recs = []domain.QuestionRecord{}
	}
	if i, ok := index[name]; ok {
		cats[i].Records = append(cats[i].Records, recs...)
		return cats
	}
	index[name] = len(cats)
	return append(cats, domain.Category{Name: name, Records: recs})
}
