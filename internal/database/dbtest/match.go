package dbtest

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

func matches(doc bson.Raw, filter bson.M) bool {
	for key, want := range filter {
		got, err := doc.LookupErr(key)
		if err != nil {
			return false
		}
		if ops, ok := want.(bson.M); ok && isOperatorDoc(ops) {
			if !matchOperators(got, ops) {
				return false
			}
			continue
		}
		if !equal(got, want) {
			return false
		}
	}
	return true
}

func isOperatorDoc(m bson.M) bool {
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return false
		}
	}
	return len(m) > 0
}

func matchOperators(got bson.RawValue, ops bson.M) bool {
	for op, arg := range ops {
		switch op {
		case "$in":
			values, _ := arg.([]any)
			if a, ok := arg.(bson.A); ok {
				values = a
			}
			found := false
			for _, v := range values {
				if equal(got, v) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case "$gt", "$gte", "$lt", "$lte":
			g, ok := number(got)
			if !ok {
				return false
			}
			w, ok := number(rawOf(arg))
			if !ok {
				return false
			}
			switch op {
			case "$gt":
				ok = g > w
			case "$gte":
				ok = g >= w
			case "$lt":
				ok = g < w
			case "$lte":
				ok = g <= w
			}
			if !ok {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func equal(got bson.RawValue, want any) bool {
	w := rawOf(want)
	if gn, ok := number(got); ok {
		if wn, ok := number(w); ok {
			return gn == wn
		}
		return false
	}
	return got.Equal(w)
}

func rawOf(v any) bson.RawValue {
	t, data, err := bson.MarshalValue(v)
	if err != nil {
		return bson.RawValue{}
	}
	return bson.RawValue{Type: t, Value: data}
}

func number(v bson.RawValue) (float64, bool) {
	switch v.Type {
	case bson.TypeDouble:
		return v.Double(), true
	case bson.TypeInt32:
		return float64(v.Int32()), true
	case bson.TypeInt64:
		return float64(v.Int64()), true
	}
	return 0, false
}
