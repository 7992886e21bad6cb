package models

import (
	"bytes"
	"encoding/json"
)

// Field records whether a JSON key was present and whether it was null.
// Used by PATCH payloads where absent and null mean different things.
type Field[T any] struct {
	Set  bool
	Null bool
	V    T
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Null = true
		return nil
	}
	return json.Unmarshal(b, &f.V)
}
