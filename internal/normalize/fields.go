package normalize

import "github.com/tidwall/gjson"

// Field lists the raw key spellings seen for one canonical field, most
// preferred first.
type Field struct {
	Name string
	Keys []string
}

// FieldMap is the ordered mapping table for a record type.
type FieldMap []Field

// Keys returns the candidate keys for a canonical field name.
func (m FieldMap) Keys(name string) []string {
	for _, f := range m {
		if f.Name == name {
			return f.Keys
		}
	}
	return nil
}

// Get looks up a canonical field on record.
func (m FieldMap) Get(record gjson.Result, name string) gjson.Result {
	return Lookup(record, m.Keys(name))
}

// Lookup returns the first candidate key whose value survives Unwrap.
// Tabular-store rows ({"id": ..., "fields": {...}}) are searched in
// "fields" first and then at the top level. Keys are matched literally, so
// spellings with spaces or dots work.
func Lookup(record gjson.Result, keys []string) gjson.Result {
	scopes := make([]map[string]gjson.Result, 0, 2)
	if record.IsObject() {
		if fields := record.Get("fields"); fields.IsObject() {
			scopes = append(scopes, fields.Map())
		}
		scopes = append(scopes, record.Map())
	}
	for _, scope := range scopes {
		for _, k := range keys {
			v, ok := scope[k]
			if !ok {
				continue
			}
			if _, usable := Unwrap(v); usable {
				return v
			}
		}
	}
	return gjson.Result{}
}

// Records extracts the record list from any of the accepted envelopes:
// {"data": [...]}, a bare array, or {"records": [...]}. Anything else is an
// empty list.
func Records(payload []byte) []gjson.Result {
	if !gjson.ValidBytes(payload) {
		return nil
	}
	root := gjson.ParseBytes(payload)
	switch {
	case root.IsArray():
		return objects(root)
	case root.IsObject():
		for _, key := range []string{"data", "records"} {
			if list := root.Get(key); list.IsArray() {
				return objects(list)
			}
		}
	}
	return nil
}

func objects(list gjson.Result) []gjson.Result {
	out := make([]gjson.Result, 0, len(list.Array()))
	for _, item := range list.Array() {
		if item.IsObject() {
			out = append(out, item)
		}
	}
	return out
}
