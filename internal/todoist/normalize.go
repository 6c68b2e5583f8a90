package todoist

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

var emptyArray = json.RawMessage("[]")

// NormalizeList coerces an API response payload into a JSON array. The rules,
// applied in order:
//
//  1. a bare array is returned as-is;
//  2. an object with an array-valued "results" property yields that array;
//  3. otherwise the first array-valued property in document order wins;
//  4. anything else yields an empty array.
//
// It never fails: malformed or unexpected payloads normalize to "[]".
func NormalizeList(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return emptyArray
	}
	if trimmed[0] == '[' {
		if json.Valid(trimmed) {
			return trimmed
		}
		return emptyArray
	}
	if trimmed[0] != '{' {
		return emptyArray
	}

	// Scan the object's properties with a token decoder so "first array"
	// means first in the document, not map iteration order.
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil { // consume '{'
		return emptyArray
	}

	var firstArray json.RawMessage
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			break
		}
		key, ok := keyTok.(string)
		if !ok {
			break
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			break
		}
		value = bytes.TrimSpace(value)
		if len(value) == 0 || value[0] != '[' {
			continue
		}
		if key == "results" {
			return value
		}
		if firstArray == nil {
			firstArray = value
		}
	}

	if firstArray != nil {
		return firstArray
	}
	return emptyArray
}

// decodeList normalizes raw into an array and unmarshals it into out, which
// must be a pointer to a slice.
func decodeList(raw json.RawMessage, out interface{}) error {
	normalized := NormalizeList(raw)
	return errors.Wrap(json.Unmarshal(normalized, out), "failed to decode normalized list")
}
