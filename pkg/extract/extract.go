// Package extract pulls scalar values out of loosely shaped upstream JSON.
//
// Upstream APIs are not consistent about where they put an identifier, so
// callers describe each accepted location as a Func and try them in order
// with First.
package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// Func looks up one value in a decoded JSON document.
// It reports false when the value is absent or not a usable scalar.
type Func func(doc any) (string, bool)

// Parse decodes body keeping numbers intact so large ids survive.
func Parse(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Path builds a Func from a JSONPath expression such as "$.result.id".
func Path(expr string) Func {
	return func(doc any) (string, bool) {
		val, err := jsonpath.Get(expr, doc)
		if err != nil {
			return "", false
		}
		return scalar(val)
	}
}

// Paths is shorthand for a list of Path extractors.
func Paths(exprs ...string) []Func {
	out := make([]Func, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, Path(e))
	}
	return out
}

// First runs fns in order and returns the first value found.
func First(doc any, fns []Func) (string, bool) {
	for _, fn := range fns {
		if v, ok := fn(doc); ok {
			return v, true
		}
	}
	return "", false
}

// FirstFromBody parses body and runs First on it. Invalid JSON finds nothing.
func FirstFromBody(body []byte, fns []Func) (string, bool) {
	doc, err := Parse(body)
	if err != nil {
		return "", false
	}
	return First(doc, fns)
}

func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case json.Number:
		return t.String(), true
	case float64:
		return fmt.Sprint(t), true
	case int, int64:
		return fmt.Sprint(t), true
	case []any:
		// jsonpath wildcards return a slice; accept a single element
		if len(t) == 1 {
			return scalar(t[0])
		}
		return "", false
	default:
		return "", false
	}
}
