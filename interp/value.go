package interp

import (
	"fmt"
	"reflect"
	"strconv"
)

// DefaultNA is the text substituted for a missing (nil) value.
const DefaultNA = "NA"

// Tokens converts an evaluated value into text tokens.
//
// A nil value yields the single token na. Slices and arrays yield one token
// per element, except []byte, which is treated as a string. Every other value
// yields exactly one token.
func Tokens(value any, na string) []string {
	switch v := value.(type) {
	case nil:
		return []string{na}
	case string:
		return []string{v}
	case []string:
		return append([]string(nil), v...)
	case []byte:
		return []string{string(v)}
	case []any:
		out := make([]string, len(v))
		for i, elem := range v {
			out[i] = Token(elem, na)
		}

		return out
	}

	rv := reflect.ValueOf(value)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]string, rv.Len())
		for i := range out {
			out[i] = Token(rv.Index(i).Interface(), na)
		}

		return out
	default:
		return []string{Token(value, na)}
	}
}

// Token converts a single value into text. Unlike [Tokens], slices are not
// expanded.
func Token(value any, na string) string {
	if isNilPointer(value) {
		return na
	}

	switch v := value.(type) {
	case nil:
		return na
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	case error:
		return v.Error()
	}

	return fmt.Sprint(value)
}

// isNilPointer reports whether value is a typed nil pointer. Its methods,
// String and Error included, may not be callable.
func isNilPointer(value any) bool {
	rv := reflect.ValueOf(value)

	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
