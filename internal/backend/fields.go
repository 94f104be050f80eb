package backend

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Fields is a decoded JSON object whose keys may come in camelCase or
// PascalCase, depending on which backend serializer produced it.
type Fields map[string]json.RawMessage

// DecodeFields decodes an object body. An empty body yields no fields.
func DecodeFields(body []byte) (Fields, error) {
	f := Fields{}
	if len(strings.TrimSpace(string(body))) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(body, &f); err != nil {
		return nil, err
	}
	return f, nil
}

// Raw returns the first non-null value among names, each tried as given and
// with its first letter upper-cased.
func (f Fields) Raw(names ...string) (json.RawMessage, bool) {
	for _, name := range names {
		if v, ok := f[name]; ok && string(v) != "null" {
			return v, true
		}
		r, size := utf8.DecodeRuneInString(name)
		pascal := string(unicode.ToUpper(r)) + name[size:]
		if v, ok := f[pascal]; ok && string(v) != "null" {
			return v, true
		}
	}
	return nil, false
}

// Int returns the first numeric value among names (numeric strings count).
func (f Fields) Int(names ...string) (int, bool) {
	v, ok := f.Raw(names...)
	if !ok {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		var s string
		if json.Unmarshal(v, &s) != nil {
			return 0, false
		}
		n = json.Number(strings.TrimSpace(s))
	}
	if i, err := n.Int64(); err == nil {
		return int(i), true
	}
	if fl, err := strconv.ParseFloat(string(n), 64); err == nil {
		return int(fl), true
	}
	return 0, false
}

// String returns the first string value among names.
func (f Fields) String(names ...string) (string, bool) {
	v, ok := f.Raw(names...)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

// Object returns the first nested object among names.
func (f Fields) Object(names ...string) (Fields, bool) {
	v, ok := f.Raw(names...)
	if !ok {
		return nil, false
	}
	var nested Fields
	if err := json.Unmarshal(v, &nested); err != nil {
		return nil, false
	}
	return nested, true
}
