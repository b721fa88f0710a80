package llm

import (
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Kind is the JSON shape of a declared output field.
type Kind int

const (
	KindString Kind = iota
	KindStringList
	KindObjectList
)

// Field is one declared output field. Items describes the members of a
// KindObjectList field.
type Field struct {
	Name        string
	Description string
	Kind        Kind
	Items       []Field
}

// Schema is an ordered set of output fields. Every field is required.
type Schema struct {
	Fields []Field
}

// NewSchema builds a schema from fields in declaration order.
func NewSchema(fields ...Field) *Schema {
	return &Schema{Fields: fields}
}

// Names returns the field names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// FormatInstructions renders the schema as a fenced JSON skeleton that is
// appended to prompts for backends without native schema support.
func (s *Schema) FormatInstructions() string {
	var sb strings.Builder
	sb.WriteString("The output should be a markdown code snippet formatted in the following schema, ")
	sb.WriteString("including the leading and trailing \"```json\" and \"```\":\n\n```json\n{\n")
	for _, f := range s.Fields {
		sb.WriteString(fmt.Sprintf("\t%q: %s  // %s\n", f.Name, f.typeName(), f.Description))
	}
	sb.WriteString("}\n```")
	return sb.String()
}

func (f Field) typeName() string {
	switch f.Kind {
	case KindStringList:
		return "list of string"
	case KindObjectList:
		parts := make([]string, 0, len(f.Items))
		for _, item := range f.Items {
			parts = append(parts, fmt.Sprintf("%q: %s", item.Name, item.typeName()))
		}
		return "list of {" + strings.Join(parts, ", ") + "}"
	default:
		return "string"
	}
}

// GenaiSchema converts the schema to Gemini's response_schema form.
func (s *Schema) GenaiSchema() *genai.Schema {
	return objectSchema(s.Fields)
}

func objectSchema(fields []Field) *genai.Schema {
	out := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(fields)),
	}
	for _, f := range fields {
		out.Properties[f.Name] = f.genaiSchema()
		out.Required = append(out.Required, f.Name)
		out.PropertyOrdering = append(out.PropertyOrdering, f.Name)
	}
	return out
}

func (f Field) genaiSchema() *genai.Schema {
	switch f.Kind {
	case KindStringList:
		return &genai.Schema{
			Type:        genai.TypeArray,
			Description: f.Description,
			Items:       &genai.Schema{Type: genai.TypeString},
		}
	case KindObjectList:
		return &genai.Schema{
			Type:        genai.TypeArray,
			Description: f.Description,
			Items:       objectSchema(f.Items),
		}
	default:
		return &genai.Schema{Type: genai.TypeString, Description: f.Description}
	}
}
