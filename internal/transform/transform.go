// Package transform flattens persistence entities together with a selected
// subset of their eagerly loaded relations into plain key/value structures
// for serialization. It performs no data access; callers preload relations
// before invoking it.
package transform

import (
	"reflect"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Relation describes one named relation an entity exposes to the flattener:
// its JSON key, its cardinality, and the already loaded value.
type Relation struct {
	Name  string
	Many  bool
	Value interface{}
}

// Entity is implemented by domain types that participate in flattening.
type Entity interface {
	FlattenRelations() []Relation
}

// Flatten serializes each entity into a map of its own fields merged with
// the requested relations. The relations argument maps a relation name to
// the related entity fields to keep; an empty field list keeps the full
// default serialization. Requesting a relation the entity does not declare
// is a no-op.
func Flatten[E Entity](items []E, relations map[string][]string) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		out = append(out, FlattenOne(item, relations))
	}
	return out
}

// FlattenOne flattens a single entity. See Flatten.
func FlattenOne(item Entity, relations map[string][]string) map[string]interface{} {
	base := asMap(item)
	declared := item.FlattenRelations()

	// Relation keys ride along in the default serialization; strip them so
	// only the requested ones appear, shaped per the field selection.
	for _, rel := range declared {
		delete(base, rel.Name)
	}

	for _, rel := range declared {
		fields, wanted := relations[rel.Name]
		if !wanted {
			continue
		}
		if isNil(rel.Value) {
			base[rel.Name] = nil
			continue
		}
		if rel.Many {
			base[rel.Name] = pickMany(rel.Value, fields)
		} else {
			base[rel.Name] = pick(asMap(rel.Value), fields)
		}
	}
	return base
}

func pickMany(value interface{}, fields []string) []map[string]interface{} {
	var rows []map[string]interface{}
	raw, err := json.Marshal(value)
	if err != nil {
		return []map[string]interface{}{}
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return []map[string]interface{}{}
	}
	if fields == nil {
		fields = []string{}
	}
	out := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		out = append(out, pick(row, fields))
	}
	return out
}

func pick(m map[string]interface{}, fields []string) map[string]interface{} {
	if len(fields) == 0 {
		return m
	}
	out := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		if v, ok := m[f]; ok {
			out[f] = v
		}
	}
	return out
}

func asMap(v interface{}) map[string]interface{} {
	m := map[string]interface{}{}
	raw, err := json.Marshal(v)
	if err != nil {
		return m
	}
	_ = json.Unmarshal(raw, &m)
	return m
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
