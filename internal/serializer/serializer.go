// Package serializer renders entities into ordered field sets, with
// client-controlled selective expansion of relational fields via the
// `include` query parameter.
package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// optionalUniverse is the closed set of relational field names eligible for
// exclusion. Tokens outside this set are silently ignored.
var optionalUniverse = map[string]struct{}{
	"tags":     {},
	"user":     {},
	"posts":    {},
	"comments": {},
}

// Include is the parsed `include` query parameter. The zero value means "no
// override": every declared field is rendered.
type Include struct {
	present bool
	allowed map[string]struct{}
}

// ParseInclude parses the raw `include` query parameter. Tokens are split on
// commas and whitespace-trimmed; empty tokens are discarded. A raw value with
// no usable tokens behaves as if the parameter were absent. Matching against
// the optional universe is case-sensitive.
func ParseInclude(raw string) Include {
	var present bool
	allowed := make(map[string]struct{})
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		present = true
		if _, ok := optionalUniverse[tok]; ok {
			allowed[tok] = struct{}{}
		}
	}
	if !present {
		return Include{}
	}
	return Include{present: true, allowed: allowed}
}

// allows reports whether the optional field name survives this include set.
func (in Include) allows(name string) bool {
	if !in.present {
		return true
	}
	_, ok := in.allowed[name]
	return ok
}

// Field is a single rendered field.
type Field struct {
	Name  string
	Value any
}

// Object is an ordered rendering of an entity. It marshals to a JSON object
// whose keys appear in declaration order.
type Object []Field

// MarshalJSON implements json.Marshaler preserving field order.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Names returns the rendered field names in order.
func (o Object) Names() []string {
	names := make([]string, len(o))
	for i, f := range o {
		names[i] = f.Name
	}
	return names
}

// Get returns the value of the named field and whether it was rendered.
func (o Object) Get(name string) (any, bool) {
	for _, f := range o {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// FieldDef declares one field of a schema: its name, whether it is subject to
// include-based exclusion, and how to compute its rendered value.
type FieldDef[T any] struct {
	Name     string
	Optional bool
	Value    func(*T) any
}

// Always declares a field that is emitted unconditionally.
func Always[T any](name string, value func(*T) any) FieldDef[T] {
	return FieldDef[T]{Name: name, Value: value}
}

// Optional declares a relational field that the client may exclude. The name
// must belong to the optional universe.
func Optional[T any](name string, value func(*T) any) FieldDef[T] {
	return FieldDef[T]{Name: name, Optional: true, Value: value}
}

// Schema is an immutable per-type rendering descriptor: an ordered field list
// with a declared optional subset. Schemas are configured once at package
// init and never mutated.
type Schema[T any] struct {
	fields []FieldDef[T]
}

// NewSchema builds a schema from the given ordered field definitions.
func NewSchema[T any](fields ...FieldDef[T]) *Schema[T] {
	for _, f := range fields {
		if f.Optional {
			if _, ok := optionalUniverse[f.Name]; !ok {
				panic(fmt.Sprintf("serializer: optional field %q outside the optional universe", f.Name))
			}
		}
	}
	return &Schema[T]{fields: fields}
}

// Render produces the ordered field set for a single entity. Optional fields
// not allowed by the include set are dropped; always-emitted fields are never
// dropped. Render is a pure function of (entity, include).
func (s *Schema[T]) Render(v *T, inc Include) Object {
	out := make(Object, 0, len(s.fields))
	for _, f := range s.fields {
		if f.Optional && !inc.allows(f.Name) {
			continue
		}
		out = append(out, Field{Name: f.Name, Value: f.Value(v)})
	}
	return out
}

// RenderList maps Render over a collection.
func (s *Schema[T]) RenderList(vs []*T, inc Include) []Object {
	out := make([]Object, 0, len(vs))
	for _, v := range vs {
		out = append(out, s.Render(v, inc))
	}
	return out
}
