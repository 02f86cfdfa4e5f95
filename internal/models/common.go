package models

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BusinessID is the user supplied customer identifier ("customerId").
// Older documents stored it as a number, so decoding accepts numbers and
// normalises them to their decimal string. It is always written as a string.
type BusinessID string

func (b *BusinessID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeString:
		*b = BusinessID(rv.StringValue())
	case bson.TypeInt32:
		*b = BusinessID(strconv.FormatInt(int64(rv.Int32()), 10))
	case bson.TypeInt64:
		*b = BusinessID(strconv.FormatInt(rv.Int64(), 10))
	case bson.TypeDouble:
		*b = BusinessID(strconv.FormatFloat(rv.Double(), 'f', -1, 64))
	case bson.TypeNull, bson.TypeUndefined:
		*b = ""
	default:
		return errors.Errorf("customerId: unsupported bson type %s", t)
	}
	return nil
}

// CustomerRef is the customer reference stored on an order. New orders store
// the customer's BusinessID verbatim, never its _id. Legacy orders may hold a
// number or an ObjectID, so the decoded value is kept as is and resolved at
// read time.
type CustomerRef struct {
	value any
}

// NewCustomerRef references a customer by business identifier.
func NewCustomerRef(customerID string) CustomerRef {
	return CustomerRef{value: customerID}
}

// RawCustomerRef wraps an already decoded value (string, int64, float64 or
// primitive.ObjectID).
func RawCustomerRef(v any) CustomerRef {
	return CustomerRef{value: v}
}

// Value returns the stored value: string, int64, float64, primitive.ObjectID
// or nil.
func (r CustomerRef) Value() any { return r.value }

// IsZero reports whether the reference is missing or empty.
func (r CustomerRef) IsZero() bool {
	switch v := r.value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	}
	return false
}

func (r CustomerRef) String() string {
	switch v := r.value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case primitive.ObjectID:
		return v.Hex()
	default:
		return fmt.Sprint(v)
	}
}

func (r CustomerRef) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if r.value == nil {
		return bson.TypeNull, nil, nil
	}
	return bson.MarshalValue(r.value)
}

func (r *CustomerRef) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeString:
		r.value = rv.StringValue()
	case bson.TypeInt32:
		r.value = int64(rv.Int32())
	case bson.TypeInt64:
		r.value = rv.Int64()
	case bson.TypeDouble:
		r.value = rv.Double()
	case bson.TypeObjectID:
		r.value = rv.ObjectID()
	case bson.TypeNull, bson.TypeUndefined:
		r.value = nil
	default:
		return errors.Errorf("customerId: unsupported bson type %s", t)
	}
	return nil
}

func (r CustomerRef) MarshalJSON() ([]byte, error) {
	if oid, ok := r.value.(primitive.ObjectID); ok {
		return json.Marshal(oid.Hex())
	}
	return json.Marshal(r.value)
}
