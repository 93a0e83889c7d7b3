package cache

import (
	"encoding/json"
	"reflect"
)

// JSONSizer measures payloads by their JSON-serialized byte length,
// which matches what the gateway would send over the wire. Values that
// cannot be marshaled fall back to a rough in-memory estimate; sizing
// never fails.
type JSONSizer struct{}

// Size implements Sizer.
func (JSONSizer) Size(value any) int {
	b, err := json.Marshal(value)
	if err != nil {
		return estimate(value)
	}
	return len(b)
}

// estimate approximates the in-memory footprint of a value that could
// not be serialized. Accuracy only matters for budget accounting, so a
// coarse figure is acceptable.
func estimate(value any) int {
	if value == nil {
		return 0
	}
	switch v := value.(type) {
	case string:
		return len(v)
	case []byte:
		return len(v)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len() * int(rv.Type().Elem().Size())
	case reflect.Map:
		return rv.Len() * int(rv.Type().Key().Size()+rv.Type().Elem().Size())
	default:
		return int(rv.Type().Size())
	}
}

// Ensure JSONSizer implements Sizer
var _ Sizer = JSONSizer{}
