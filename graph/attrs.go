package graph

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// encodeAttrs serializes an attribute map into its stored blob form.
// A nil map encodes as an empty map so decoding always yields a usable Attrs.
func encodeAttrs(attrs Attrs) ([]byte, error) {
	if attrs == nil {
		attrs = Attrs{}
	}
	b, err := msgpack.Marshal(map[string]any(attrs))
	if err != nil {
		return nil, fmt.Errorf("graph: encode attributes: %w", err)
	}
	return b, nil
}

// decodeAttrs deserializes a stored blob back into an attribute map.
func decodeAttrs(b []byte) (Attrs, error) {
	m := map[string]any{}
	if len(b) == 0 {
		return Attrs(m), nil
	}
	if err := msgpack.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("graph: decode attributes: %w", err)
	}
	return Attrs(m), nil
}
