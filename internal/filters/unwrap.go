package filters

import (
	"strings"

	"github.com/tidwall/gjson"
)

type shape int

const (
	shapeAbsent shape = iota
	shapeScalar
	shapeList
)

// field is an LLM filter value after wrapper removal.
type field struct {
	shape shape
	value gjson.Result
}

// Wrapper keys the extractor has been seen to nest values under, highest
// priority first.
var wrapperKeys = []string{"values", "value", "items", "data"}

// unwrapField decodes one LLM filter value. Accepted shapes are a bare scalar,
// an array, or an object carrying either of those under a wrapper key.
// Anything else is absent.
func unwrapField(r gjson.Result) field {
	f := classify(r)
	if f.shape != shapeAbsent || !r.IsObject() {
		return f
	}
	for _, key := range wrapperKeys {
		inner := r.Get(key)
		if !present(inner) {
			continue
		}
		// one level only; a wrapped object is not a value
		return classify(inner)
	}
	return field{}
}

func classify(r gjson.Result) field {
	switch {
	case !present(r), r.IsObject():
		return field{}
	case r.IsArray():
		return field{shape: shapeList, value: r}
	default:
		return field{shape: shapeScalar, value: r}
	}
}

func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}

// stringList returns the string members of the field. A bare string becomes a
// singleton list; non-string members are dropped.
func (f field) stringList() []string {
	switch f.shape {
	case shapeScalar:
		if f.value.Type == gjson.String {
			return []string{strings.TrimSpace(f.value.Str)}
		}
	case shapeList:
		var out []string
		for _, item := range f.value.Array() {
			if item.Type == gjson.String {
				out = append(out, strings.TrimSpace(item.Str))
			}
		}
		return out
	}
	return nil
}

func (f field) number() (float64, bool) {
	if f.shape == shapeScalar && f.value.Type == gjson.Number {
		return f.value.Num, true
	}
	return 0, false
}
