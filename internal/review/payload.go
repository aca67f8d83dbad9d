package review

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const fence = "```"

// ErrNoPayload is returned when a response carries no recognisable JSON payload.
var ErrNoPayload = errors.New("no json payload found")

// ListResult is what a list payload decoded into.
type ListResult[T any] struct {
	Records []T
	// Dropped counts array elements that failed validation.
	Dropped int
	// Errors holds every parse and validation failure in encounter order.
	Errors []error
}

// FindArray locates the JSON array embedded in a model response.
//
// A fenced block whose body is an array wins. Otherwise the span from the first
// '[' to the last ']' is returned, which may swallow trailing text that itself
// contains brackets.
func FindArray(raw string) (string, error) {
	for _, block := range fencedBlocks(raw) {
		if strings.HasPrefix(block, "[") {
			return block, nil
		}
	}

	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end < start {
		return "", ErrNoPayload
	}
	return raw[start : end+1], nil
}

// ObjectText returns the text a single-object parse should consume: the first
// fenced block holding an object, or the whole trimmed response.
func ObjectText(raw string) string {
	for _, block := range fencedBlocks(raw) {
		if strings.HasPrefix(block, "{") {
			return block
		}
	}
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), "`"))
}

// ParseObject strictly parses the whole response as one record of the schema.
func ParseObject(raw string, s Schema, out any) error {
	text := ObjectText(raw)
	if text == "" {
		return ErrNoPayload
	}

	var data any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return fmt.Errorf("parse %s: %w", s.Title, err)
	}

	return Decode(s, data, out)
}

// ParseList decodes every valid element of the array embedded in raw. When no
// array can be parsed it falls back to reading the response as a single record.
// It never fails; problems are reported through the result.
func ParseList[T any](raw string, s Schema) ListResult[T] {
	var res ListResult[T]

	items, err := parseArray(raw)
	if err == nil {
		res.Records = make([]T, 0, len(items))
		for i, item := range items {
			record, err := DecodeAs[T](s, item)
			if err != nil {
				res.Dropped++
				res.Errors = append(res.Errors, fmt.Errorf("item %d: %w", i, err))
				continue
			}
			res.Records = append(res.Records, record)
		}
		return res
	}
	res.Errors = append(res.Errors, err)

	var single T
	if err := ParseObject(raw, s, &single); err != nil {
		res.Records = []T{}
		res.Errors = append(res.Errors, fmt.Errorf("single %s fallback: %w", s.Title, err))
		return res
	}

	res.Records = []T{single}
	return res
}

func parseArray(raw string) ([]any, error) {
	text, err := FindArray(raw)
	if err != nil {
		return nil, err
	}

	var items []any
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, fmt.Errorf("parse array: %w", err)
	}
	return items, nil
}

// fencedBlocks returns the trimmed bodies of all complete ``` blocks in order.
func fencedBlocks(raw string) []string {
	var blocks []string
	rest := raw
	for {
		open := strings.Index(rest, fence)
		if open == -1 {
			return blocks
		}
		rest = rest[open+len(fence):]

		// the info string ("json") runs to the end of the opening line
		nl := strings.IndexByte(rest, '\n')
		if nl == -1 {
			return blocks
		}
		body := rest[nl+1:]

		end := strings.Index(body, fence)
		if end == -1 {
			return blocks
		}
		blocks = append(blocks, strings.TrimSpace(body[:end]))
		rest = body[end+len(fence):]
	}
}
