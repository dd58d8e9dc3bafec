package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/domain/reconcile"
)

// Accepter looks for a value inside a decoded JSON document
type Accepter func(doc any) (any, bool)

// At accepts the value at the given object path. An empty path accepts the
// document itself.
func At(path ...string) Accepter {
	return func(doc any) (any, bool) {
		cur := doc
		for _, key := range path {
			obj, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			if cur, ok = obj[key]; !ok || cur == nil {
				return nil, false
			}
		}
		return cur, true
	}
}

// Decode parses a JSON body, keeping numbers as json.Number
func Decode(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", reconcile.ErrMalformed, err)
	}
	return doc, nil
}

// FirstString returns the first non-empty scalar found, as a string.
// Accepters hitting objects, arrays or empty strings are skipped.
func FirstString(doc any, accepters ...Accepter) string {
	for _, accept := range accepters {
		v, ok := accept(doc)
		if !ok {
			continue
		}
		if s := scalarString(v); s != "" {
			return s
		}
	}
	return ""
}

// FirstSlice returns the first array found
func FirstSlice(doc any, accepters ...Accepter) ([]any, bool) {
	for _, accept := range accepters {
		v, ok := accept(doc)
		if !ok {
			continue
		}
		if arr, ok := v.([]any); ok {
			return arr, true
		}
	}
	return nil, false
}

// Str reads key from a JSON object row as a trimmed string
func Str(row any, key string) string {
	return FirstString(row, At(key))
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}
