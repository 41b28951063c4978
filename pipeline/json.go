package pipeline

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/oleiade/reflections"
)

// inlineFriendlyMarshalJSON marshals the given struct to JSON while honoring
// its yaml field tags, including ",inline". encoding/json has no inline
// concept, so the struct is flattened into one map first: tagged fields
// under their tag names (dropping ones tagged omitempty that hold their zero
// value), and the inline map's entries at the top level, with the tagged
// fields winning any name clash.
func inlineFriendlyMarshalJSON(q any) ([]byte, error) {
	fieldNames, err := reflections.Fields(q)
	if err != nil {
		return nil, fmt.Errorf("could not get fields of %T: %w", q, err)
	}

	var inlineFields map[string]any
	taggedFields := make([]struct {
		key   string
		value any
	}, 0, len(fieldNames))

	for _, fieldName := range fieldNames {
		tag, err := reflections.GetFieldTag(q, fieldName, "yaml")
		if err != nil {
			return nil, fmt.Errorf("could not get yaml tag of %T.%s: %w", q, fieldName, err)
		}

		switch tag {
		case "-":
			continue

		case ",inline":
			value, err := reflections.GetField(q, fieldName)
			if err != nil {
				return nil, fmt.Errorf("could not get inline field value of %T.%s: %w", q, fieldName, err)
			}
			inf, ok := value.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("inline field %T.%s must be a map[string]any, was %T", q, fieldName, value)
			}
			inlineFields = inf

		default:
			value, err := reflections.GetField(q, fieldName)
			if err != nil {
				return nil, fmt.Errorf("could not get value of %T.%s: %w", q, fieldName, err)
			}

			key, opts, _ := strings.Cut(tag, ",")
			if opts == "omitempty" && isEmptyValue(value) {
				continue
			}
			taggedFields = append(taggedFields, struct {
				key   string
				value any
			}{key, value})
		}
	}

	allFields := make(map[string]any, len(taggedFields)+len(inlineFields))
	for k, v := range inlineFields {
		allFields[k] = v
	}
	// Tagged fields take precedence over inline fields.
	for _, f := range taggedFields {
		allFields[f.key] = f.value
	}

	return json.Marshal(allFields)
}

// isEmptyValue mirrors the emptiness rules encoding/json applies for
// omitempty.
func isEmptyValue(q any) bool {
	if q == nil {
		return true
	}

	switch v := reflect.ValueOf(q); v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	}
	return false
}
