package httputil

import (
	"bytes"
	"encoding/json"
)

// Patch is a JSON merge-patch member. It tells an absent member apart from an
// explicit null, which a plain pointer cannot.
type Patch[T any] struct {
	Present bool
	Null    bool
	Value   T
}

func (p *Patch[T]) UnmarshalJSON(data []byte) error {
	p.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		p.Null = true
		return nil
	}
	return json.Unmarshal(data, &p.Value)
}

// OrClear maps the member onto an update field: nil when absent, cleared when
// null, the sent value otherwise.
func (p Patch[T]) OrClear(cleared T) *T {
	switch {
	case !p.Present:
		return nil
	case p.Null:
		return &cleared
	default:
		v := p.Value
		return &v
	}
}
