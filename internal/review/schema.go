package review

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FieldType is the primitive JSON type a schema field must coerce to.
type FieldType string

const (
	TypeString     FieldType = "string"
	TypeNumber     FieldType = "number"
	TypeStringList FieldType = "array"
	TypeObject     FieldType = "object"
)

// Field describes a single required field of a record.
type Field struct {
	Name        string
	Type        FieldType
	Description string
	// Schema is set for TypeObject fields.
	Schema *Schema
}

// Schema lists the required fields of a record in declaration order.
// Every field is required; there are no defaults.
type Schema struct {
	Title  string
	Fields []Field
}

// FormatInstructions returns the text injected into prompts that tells the model
// to answer with a single JSON object conforming to the schema.
func (s Schema) FormatInstructions() string {
	var b strings.Builder
	b.WriteString("The output should be formatted as a JSON instance that conforms to the JSON schema below.\n")
	b.WriteString("Return the JSON object inside a fenced json code block and nothing else.\n\n")
	b.WriteString("Here is the output schema:\n```json\n")
	b.WriteString(s.jsonSchema())
	b.WriteString("\n```")
	return b.String()
}

// ListFormatInstructions is like FormatInstructions but asks for a JSON array
// whose every element conforms to the schema.
func (s Schema) ListFormatInstructions() string {
	var b strings.Builder
	b.WriteString("The output should be a JSON array in which every element conforms to the JSON schema below.\n")
	b.WriteString("Return the array inside a fenced json code block and nothing else. Return [] when nothing is found.\n\n")
	b.WriteString("Here is the element schema:\n```json\n")
	b.WriteString(s.jsonSchema())
	b.WriteString("\n```")
	return b.String()
}

// jsonSchema renders the schema as compact JSON keeping field order stable.
func (s Schema) jsonSchema() string {
	var b strings.Builder
	s.writeJSONSchema(&b)
	return b.String()
}

func (s Schema) writeJSONSchema(b *strings.Builder) {
	fmt.Fprintf(b, `{"title": %s, "type": "object", "properties": {`, quote(s.Title))
	for i, f := range s.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "%s: ", quote(f.Name))
		switch f.Type {
		case TypeObject:
			if f.Schema != nil {
				f.Schema.writeJSONSchema(b)
				continue
			}
			fmt.Fprintf(b, `{"description": %s, "type": "object"}`, quote(f.Description))
		case TypeStringList:
			fmt.Fprintf(b, `{"description": %s, "type": "array", "items": {"type": "string"}}`, quote(f.Description))
		default:
			fmt.Fprintf(b, `{"description": %s, "type": %s}`, quote(f.Description), quote(string(f.Type)))
		}
	}
	b.WriteString(`}, "required": [`)
	for i, f := range s.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quote(f.Name))
	}
	b.WriteString("]}")
}

func quote(s string) string {
	out, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(out)
}
