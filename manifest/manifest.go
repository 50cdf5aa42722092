package manifest

import (
	"bytes"
	"fmt"
	"iter"

	json "github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Manifest maps keys to values in insertion order.
// The zero value is not usable; call New.
type Manifest struct {
	entries *orderedmap.OrderedMap[string, interface{}]
}

// New returns an empty manifest.
func New() *Manifest {
	return &Manifest{
		entries: orderedmap.New[string, interface{}](),
	}
}

// Set assigns val to key. A key that is already present
// keeps its original position.
func (ma *Manifest) Set(key string, val interface{}) {
	ma.entries.Set(key, val)
}

// Get returns the value stored under key.
func (ma *Manifest) Get(key string) (interface{}, bool) {
	return ma.entries.Get(key)
}

// Delete removes key. Deleting an absent key is a no-op.
func (ma *Manifest) Delete(key string) {
	ma.entries.Delete(key)
}

// Len returns the number of keys. A nil manifest is empty.
func (ma *Manifest) Len() int {
	if ma == nil {
		return 0
	}

	return ma.entries.Len()
}

// Keys returns a copy of the keys in insertion order.
func (ma *Manifest) Keys() []string {
	if ma == nil {
		return nil
	}

	keys := make([]string, 0, ma.entries.Len())
	for key := range ma.All() {
		keys = append(keys, key)
	}

	return keys
}

// All iterates over key/value pairs in insertion order.
func (ma *Manifest) All() iter.Seq2[string, interface{}] {
	return func(yield func(string, interface{}) bool) {
		if ma == nil {
			return
		}

		for pair := ma.entries.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// ToMap flattens the manifest into a plain map. Nested
// manifests are converted recursively.
func (ma *Manifest) ToMap() map[string]interface{} {
	res := make(map[string]interface{}, ma.Len())

	for key, val := range ma.All() {
		if nested, ok := val.(*Manifest); ok {
			res[key] = nested.ToMap()
			continue
		}

		res[key] = val
	}

	return res
}

// MarshalJSON encodes the manifest as a JSON object whose
// members follow insertion order. HTML characters are not
// escaped, so the output matches what browsers' and
// Node's JSON.stringify produce for the same mapping.
func (ma *Manifest) MarshalJSON() ([]byte, error) {
	const errCtx = "marshaling manifest"

	var buf bytes.Buffer

	if err := ma.writeJSON(&buf); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return buf.Bytes(), nil
}

func (ma *Manifest) writeJSON(buf *bytes.Buffer) error {
	buf.WriteByte('{')

	idx := 0

	for key, val := range ma.All() {
		if idx > 0 {
			buf.WriteByte(',')
		}

		idx++

		kb, err := json.MarshalNoEscape(key)
		if err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}

		buf.Write(kb)
		buf.WriteByte(':')

		if nested, ok := val.(*Manifest); ok {
			if err := nested.writeJSON(buf); err != nil {
				return err
			}

			continue
		}

		vb, err := json.MarshalNoEscape(val)
		if err != nil {
			return fmt.Errorf("value of %q: %w", key, err)
		}

		buf.Write(vb)
	}

	buf.WriteByte('}')

	return nil
}
