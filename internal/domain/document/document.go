// Package document is a small typed JSON-tree abstraction over ingested
// payloads. Datasets are schema-governed but tolerate missing and extra
// fields, so every access is an explicit presence check instead of a
// struct mapping.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Well-known field names stamped onto or read from ingested payloads.
const (
	FieldID          = "Id"
	FieldIDLower     = "id"
	FieldDBCreated   = "DbCreated"
	FieldDBCreatedBy = "DbCreatedBy"
	FieldProcessType = "HsProcessType"
	FieldOsobaID     = "OsobaId"
	FieldDocumentURL = "DocumentUrl"
	FieldPlainText   = "DocumentPlainText"
)

// Process marker discriminator values.
const (
	ProcessPerson   = "person"
	ProcessDocument = "document"
)

// Object is one JSON object node. Nested objects share storage with the
// root, so mutating a marker mutates the enclosing document.
type Object map[string]any

// Parse decodes raw JSON into an Object. The payload must be a JSON object,
// not an array or scalar.
func Parse(data []byte) (Object, error) {
	var o Object
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&o); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return o, nil
}

// Marshal serializes the object back to JSON.
func (o Object) Marshal() ([]byte, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}

// Has reports whether key is present with a non-null value.
func (o Object) Has(key string) bool {
	v, ok := o[key]
	return ok && v != nil
}

// String returns the value at key when it is a non-null string.
func (o Object) String(key string) (string, bool) {
	v, ok := o[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Set stores a value at key. A nil value becomes an explicit JSON null.
func (o Object) Set(key string, value any) {
	o[key] = value
}

// KeyFold returns the first actual key of o whose lowercase form equals one
// of the candidates, in candidate order. Payload authors use varying casing
// for the person fields, so lookups fold case.
func (o Object) KeyFold(candidates ...string) (string, bool) {
	for _, want := range candidates {
		for k := range o {
			if strings.ToLower(k) == want {
				return k, true
			}
		}
	}
	return "", false
}

// HasID reports whether the payload itself carries an Id or id field.
// This is independent of the caller-supplied item id.
func (o Object) HasID() bool {
	return o.Has(FieldID) || o.Has(FieldIDLower)
}

// Stamp records the creation moment and creator identity on the payload.
func (o Object) Stamp(createdBy string, now time.Time) {
	o[FieldDBCreated] = now.UTC().Format(time.RFC3339)
	o[FieldDBCreatedBy] = createdBy
}

// Marker is an embedded sub-object tagged with a HsProcessType discriminator.
type Marker struct {
	Object Object
}

// Type returns the discriminator value, or "" when it is not a string.
func (m Marker) Type() string {
	t, _ := m.Object.String(FieldProcessType)
	return t
}

// Markers walks the document depth-first and collects every embedded object
// carrying a HsProcessType discriminator, including the root and objects
// nested inside arrays.
func (o Object) Markers() []Marker {
	var out []Marker
	collectMarkers(o, &out)
	return out
}

func collectMarkers(node any, out *[]Marker) {
	switch v := node.(type) {
	case Object:
		collectFromMap(map[string]any(v), out)
	case map[string]any:
		collectFromMap(v, out)
	case []any:
		for _, item := range v {
			collectMarkers(item, out)
		}
	}
}

func collectFromMap(m map[string]any, out *[]Marker) {
	if _, ok := m[FieldProcessType]; ok {
		*out = append(*out, Marker{Object: Object(m)})
	}
	for _, v := range m {
		collectMarkers(v, out)
	}
}
