// Package mapping models a search index's field-kind tree and the walks
// over it: dotted-path listing with kind/name filters, plus the schema-side
// walks used when the index does not exist yet.
package mapping

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Kind is the closed set of field kinds a mapping tree can carry.
type Kind string

const (
	KindText    Kind = "text"
	KindKeyword Kind = "keyword"
	KindDate    Kind = "date"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindObject  Kind = "object"
)

// Field is one node of the mapping tree. Object-kinded fields carry
// children; leaf kinds do not.
type Field struct {
	Name     string  `json:"name"`
	Kind     Kind    `json:"kind"`
	Children []Field `json:"children,omitempty"`
}

// Filter narrows a Paths walk. Zero value matches every field.
type Filter struct {
	Kind Kind   // include only fields of this kind when set
	Name string // include only fields whose leaf name equals this when set
}

// Paths walks the tree depth-first and returns dot-joined paths of fields
// matching the filter. Object fields recurse into their children regardless
// of whether they themselves match.
func Paths(fields []Field, f Filter) []string {
	return walk("", fields, f)
}

func walk(prefix string, fields []Field, f Filter) []string {
	var out []string
	for _, fld := range fields {
		if (f.Kind == "" || fld.Kind == f.Kind) && (f.Name == "" || fld.Name == f.Name) {
			out = append(out, prefix+fld.Name)
		}
		if fld.Kind == KindObject && len(fld.Children) > 0 {
			out = append(out, walk(prefix+fld.Name+".", fld.Children, f)...)
		}
	}
	return out
}

// schemaNode is the subset of JSON-schema structure the walks care about.
type schemaNode struct {
	Type       string                `json:"type"`
	Format     string                `json:"format"`
	Properties map[string]schemaNode `json:"properties"`
	Items      *schemaNode           `json:"items"`
}

// SchemaPropertyPaths walks a declared JSON schema and collects every
// dotted path whose leaf property key equals name. All matches, not just
// the first, since a logical field may live at several nesting levels.
func SchemaPropertyPaths(schema []byte, name string) ([]string, error) {
	root, err := parseSchema(schema)
	if err != nil {
		return nil, err
	}
	var out []string
	collectPropertyPaths(root, "", name, &out)
	return out, nil
}

func collectPropertyPaths(node schemaNode, prefix, name string, out *[]string) {
	for _, key := range sortedKeys(node.Properties) {
		prop := node.Properties[key]
		if key == name {
			*out = append(*out, prefix+name)
		}
		child := prop
		if prop.Items != nil {
			child = *prop.Items
		}
		collectPropertyPaths(child, prefix+key+".", name, out)
	}
}

// FieldsFromSchema derives a mapping tree from a declared JSON schema,
// used to seed a freshly created index. String properties map to text
// (date-formatted ones to date), numbers and integers to number, booleans
// to boolean; objects and arrays of objects recurse.
func FieldsFromSchema(schema []byte) ([]Field, error) {
	root, err := parseSchema(schema)
	if err != nil {
		return nil, err
	}
	return fieldsFromNode(root), nil
}

func fieldsFromNode(node schemaNode) []Field {
	var out []Field
	for _, key := range sortedKeys(node.Properties) {
		prop := node.Properties[key]
		if prop.Items != nil {
			prop = *prop.Items
		}
		out = append(out, Field{
			Name:     key,
			Kind:     kindFor(prop),
			Children: fieldsFromNode(prop),
		})
	}
	return out
}

func kindFor(node schemaNode) Kind {
	switch node.Type {
	case "object":
		return KindObject
	case "number", "integer":
		return KindNumber
	case "boolean":
		return KindBoolean
	case "string":
		if node.Format == "date" || node.Format == "date-time" {
			return KindDate
		}
		return KindText
	default:
		if len(node.Properties) > 0 {
			return KindObject
		}
		return KindKeyword
	}
}

func parseSchema(schema []byte) (schemaNode, error) {
	var root schemaNode
	if err := json.Unmarshal(schema, &root); err != nil {
		return schemaNode{}, fmt.Errorf("parse schema: %w", err)
	}
	return root, nil
}

// sortedKeys keeps walks deterministic across runs.
func sortedKeys(m map[string]schemaNode) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseKind converts a user-supplied kind filter, rejecting values outside
// the closed set.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case KindText, KindKeyword, KindDate, KindNumber, KindBoolean, KindObject:
		return k, nil
	default:
		return "", fmt.Errorf("unknown field kind %q", s)
	}
}
