package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Format is an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml and yml in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("export: unknown format %q", s)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Document is one exported batch of generated entities.
type Document struct {
	Entity      string    `json:"entity" yaml:"entity"`
	Count       int       `json:"count" yaml:"count"`
	Persisted   bool      `json:"persisted" yaml:"persisted"`
	Seed        uint64    `json:"seed,omitempty" yaml:"seed,omitempty"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Items       []any     `json:"items" yaml:"items"`
}

// NewDocument wraps items, typically the typed slice returned by a factory's
// BuildN or PersistN. Count is taken from items.
func NewDocument[E any](entity string, items []E, persisted bool) Document {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return Document{
		Entity:      entity,
		Count:       len(out),
		Persisted:   persisted,
		GeneratedAt: time.Now().UTC(),
		Items:       out,
	}
}

// Encode writes doc to w in format f.
func Encode(w io.Writer, f Format, doc Document) error {
	if doc.Items == nil {
		doc.Items = []any{}
	}

	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("export: encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("export: encode yaml: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("export: unknown format %q", string(f))
}

// Write encodes doc and hands it to w in one piece.
func Write(ctx context.Context, w Writer, f Format, doc Document) error {
	var buf bytes.Buffer
	if err := Encode(&buf, f, doc); err != nil {
		return err
	}
	return w.Write(ctx, buf.Bytes(), f.ContentType())
}
