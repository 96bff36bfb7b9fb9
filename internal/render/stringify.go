package render

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/spanlens/spanlens/internal/model1"
)

// Stringify renders a raw column value. Nil values and nil pointers come
// out as the placeholder.
func Stringify(v any) string {
	if isNil(v) {
		return model1.Placeholder
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return model1.Placeholder
		}
		rv = rv.Elem()
	}
	v = rv.Interface()

	switch t := v.(type) {
	case string:
		if t == "" {
			return model1.Placeholder
		}
		return t
	case time.Time:
		return FormatTime(t)
	case time.Duration:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case json.RawMessage:
		if len(t) == 0 || string(t) == "null" {
			return model1.Placeholder
		}
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}
