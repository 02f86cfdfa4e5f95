// Package serialize turns stored documents into plain values that templates
// and JSON encoders can consume without knowing about BSON types.
//
// ObjectIDs become hex strings and timestamps become YYYY-MM-DD dates (the
// time of day is dropped). Documents keep their key order. Documents that
// were already passed through extended JSON ({"$oid": ...}, {"$date": ...})
// are unwrapped to the bare string. Serializing an already serialized value
// returns it unchanged.
package serialize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the layout used for every timestamp.
const DateLayout = "2006-01-02"

// Field is one key of a serialized document.
type Field struct {
	Key   string
	Value any
}

// Doc is a serialized document. Key order is preserved.
type Doc []Field

// Get returns the value stored under key, or nil.
func (d Doc) Get(key string) any {
	for _, f := range d {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// Has reports whether key is present.
func (d Doc) Has(key string) bool {
	for _, f := range d {
		if f.Key == key {
			return true
		}
	}
	return false
}

// Set replaces the value under key or appends it.
func (d Doc) Set(key string, value any) Doc {
	for i := range d {
		if d[i].Key == key {
			d[i].Value = value
			return d
		}
	}
	return append(d, Field{Key: key, Value: value})
}

// ID returns the "_id" field as a string.
func (d Doc) ID() string {
	s, _ := d.Get("_id").(string)
	return s
}

func (d Doc) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Struct serializes a typed model through its BSON representation, so the
// keys match the stored field names.
func Struct(v any) (Doc, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, errors.Wrapf(err, "marshal %T", v)
	}
	doc, _ := Value(bson.Raw(raw)).(Doc)
	return doc, nil
}

// Structs serializes each element of a slice of models.
func Structs[T any](items []T) ([]Doc, error) {
	out := make([]Doc, 0, len(items))
	for i := range items {
		d, err := Struct(items[i])
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Value serializes v. It never fails; unknown scalar types pass through.
func Value(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case primitive.ObjectID:
		return t.Hex()
	case *primitive.ObjectID:
		if t == nil {
			return nil
		}
		return t.Hex()
	case time.Time:
		return FormatDate(t)
	case *time.Time:
		if t == nil {
			return nil
		}
		return FormatDate(*t)
	case primitive.DateTime:
		return FormatDate(t.Time())
	case Doc:
		return document(t)
	case bson.D:
		d := make(Doc, 0, len(t))
		for _, e := range t {
			d = append(d, Field{Key: e.Key, Value: e.Value})
		}
		return document(d)
	case bson.M:
		return document(sortedFields(t))
	case map[string]any:
		return document(sortedFields(t))
	case bson.Raw:
		var d bson.D
		if err := bson.Unmarshal(t, &d); err != nil {
			return t
		}
		return Value(d)
	case bson.A:
		return list([]any(t))
	case []any:
		return list(t)
	case []Doc:
		out := make([]any, len(t))
		for i := range t {
			out[i] = Value(t[i])
		}
		return out
	}

	// Other slices of documents, e.g. []bson.D or []bson.M.
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8 && !isScalarSlice(rv) {
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Value(rv.Index(i).Interface())
		}
		return out
	}
	return v
}

// FormatDate renders t as a UTC calendar date.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

func document(d Doc) any {
	if v, ok := lookup(d, "$oid"); ok {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(Value(v))
	}
	if v, ok := lookup(d, "$date"); ok {
		return unwrapDate(v)
	}

	out := make(Doc, len(d))
	for i, f := range d {
		out[i] = Field{Key: f.Key, Value: Value(f.Value)}
	}
	return out
}

func lookup(d Doc, key string) (any, bool) {
	for _, f := range d {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// unwrapDate handles the shapes {"$date": "2024-01-02T10:00:00Z"},
// {"$date": {"$numberLong": "1704189600000"}} and {"$date": 1704189600000}.
func unwrapDate(v any) string {
	switch t := v.(type) {
	case string:
		return strings.SplitN(t, "T", 2)[0]
	case int64:
		return FormatDate(time.UnixMilli(t))
	case int32:
		return FormatDate(time.UnixMilli(int64(t)))
	case float64:
		return FormatDate(time.UnixMilli(int64(t)))
	case time.Time, primitive.DateTime:
		return Value(t).(string)
	case bson.D, bson.M, map[string]any, Doc:
		var inner any
		switch m := t.(type) {
		case bson.D:
			inner = m.Map()["$numberLong"]
		case bson.M:
			inner = m["$numberLong"]
		case map[string]any:
			inner = m["$numberLong"]
		case Doc:
			inner = m.Get("$numberLong")
		}
		if s, ok := inner.(string); ok {
			if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
				return FormatDate(time.UnixMilli(ms))
			}
		}
	}
	return strings.SplitN(fmt.Sprint(v), "T", 2)[0]
}

func list(items []any) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = Value(item)
	}
	return out
}

func sortedFields(m map[string]any) Doc {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	d := make(Doc, 0, len(keys))
	for _, k := range keys {
		d = append(d, Field{Key: k, Value: m[k]})
	}
	return d
}

func isScalarSlice(rv reflect.Value) bool {
	switch rv.Type().Elem().Kind() {
	case reflect.String, reflect.Bool, reflect.Int, reflect.Int32, reflect.Int64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
