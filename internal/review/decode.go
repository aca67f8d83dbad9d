package review

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ValidationError reports why a mapping could not be turned into a record.
type ValidationError struct {
	Schema   string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%d validation error(s) for %s: %s", len(e.Problems), e.Schema, strings.Join(e.Problems, "; "))
}

type normalizer interface {
	normalize()
}

// Decode validates raw against the schema and decodes it into out.
//
// Every schema field must be present and non-null. Numeric strings satisfy a
// number field and numbers satisfy a string field; booleans, empty strings and
// scalars in place of lists do not.
func Decode(s Schema, raw any, out any) error {
	obj, ok := raw.(map[string]any)
	if !ok {
		return &ValidationError{Schema: s.Title, Problems: []string{fmt.Sprintf("expected an object, got %s", kindOf(raw))}}
	}

	if problems := s.check(obj, ""); len(problems) > 0 {
		return &ValidationError{Schema: s.Title, Problems: problems}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("build %s decoder: %w", s.Title, err)
	}

	if err := decoder.Decode(obj); err != nil {
		var decodeErr *mapstructure.Error
		if errors.As(err, &decodeErr) {
			return &ValidationError{Schema: s.Title, Problems: decodeErr.Errors}
		}
		return &ValidationError{Schema: s.Title, Problems: []string{err.Error()}}
	}

	if n, ok := out.(normalizer); ok {
		n.normalize()
	}

	return nil
}

// DecodeAs is the generic form of Decode.
func DecodeAs[T any](s Schema, raw any) (T, error) {
	var record T
	if err := Decode(s, raw, &record); err != nil {
		var zero T
		return zero, err
	}
	return record, nil
}

// check reports missing fields and shape mismatches that weak decoding would
// otherwise paper over.
func (s Schema) check(obj map[string]any, prefix string) []string {
	var problems []string
	for _, f := range s.Fields {
		name := prefix + f.Name
		v, ok := obj[f.Name]
		if !ok || v == nil {
			problems = append(problems, fmt.Sprintf("%s: field required", name))
			continue
		}

		switch f.Type {
		case TypeObject:
			nested, ok := v.(map[string]any)
			if !ok {
				problems = append(problems, fmt.Sprintf("%s: expected an object, got %s", name, kindOf(v)))
				continue
			}
			if f.Schema != nil {
				problems = append(problems, f.Schema.check(nested, name+".")...)
			}
		case TypeString:
			switch v.(type) {
			case string, float64:
			default:
				problems = append(problems, fmt.Sprintf("%s: expected a string, got %s", name, kindOf(v)))
			}
		case TypeNumber:
			if !isNumber(v) {
				problems = append(problems, fmt.Sprintf("%s: value is not a valid float, got %s", name, kindOf(v)))
			}
		case TypeStringList:
			items, ok := v.([]any)
			if !ok {
				problems = append(problems, fmt.Sprintf("%s: expected an array, got %s", name, kindOf(v)))
				continue
			}
			for i, item := range items {
				switch item.(type) {
				case string, float64:
				default:
					problems = append(problems, fmt.Sprintf("%s.%d: expected a string, got %s", name, i, kindOf(item)))
				}
			}
		}
	}
	return problems
}

// isNumber accepts JSON numbers and strings that parse as a float.
func isNumber(v any) bool {
	switch n := v.(type) {
	case float64:
		return true
	case string:
		_, err := strconv.ParseFloat(n, 64)
		return err == nil
	default:
		return false
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64, int, int64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
