package pgen

import (
	"bytes"
	"strconv"
	"strings"
)

// ValueKind tags each variant of the Value union.
type ValueKind int

const (
	ValueKind_Integer ValueKind = iota
	ValueKind_Float
	ValueKind_Boolean
	ValueKind_Nil
	ValueKind_Bytes
	ValueKind_List
)

func (k ValueKind) String() string {
	return map[ValueKind]string{
		ValueKind_Integer: "integer",
		ValueKind_Float:   "float",
		ValueKind_Boolean: "boolean",
		ValueKind_Nil:     "nil",
		ValueKind_Bytes:   "bytes",
		ValueKind_List:    "list",
	}[k]
}

// Value is the interface implemented by everything a parse can
// capture.  The set of variants is closed: integers, floats,
// booleans, nil, byte strings and lists are all there is.  Lists are
// the only compound kind and own their elements.
type Value interface {
	// Kind returns the variant tag of the value
	Kind() ValueKind

	// String returns the representation of the value recursively
	String() string

	// Accept is an entrypoint for each value into the visitor
	Accept(ValueVisitor) error

	// Equal compares two Values and returns true if they're
	// considered equal
	Equal(Value) bool
}

type ValueVisitor interface {
	VisitInteger(*IntegerValue) error
	VisitFloat(*FloatValue) error
	VisitBoolean(*BooleanValue) error
	VisitNil(*NilValue) error
	VisitBytes(*BytesValue) error
	VisitList(*ListValue) error
}

// Value Type: Integer

type IntegerValue struct{ Value int64 }

func NewInteger(v int64) *IntegerValue { return &IntegerValue{Value: v} }

func (v IntegerValue) Kind() ValueKind               { return ValueKind_Integer }
func (v IntegerValue) String() string                { return strconv.FormatInt(v.Value, 10) }
func (v *IntegerValue) Accept(vis ValueVisitor) error { return vis.VisitInteger(v) }

func (v IntegerValue) Equal(o Value) bool {
	switch other := o.(type) {
	case *IntegerValue:
		return v.Value == other.Value
	default:
		return false
	}
}

// Value Type: Float

type FloatValue struct{ Value float64 }

func NewFloat(v float64) *FloatValue { return &FloatValue{Value: v} }

func (v FloatValue) Kind() ValueKind                { return ValueKind_Float }
func (v FloatValue) String() string                 { return strconv.FormatFloat(v.Value, 'g', -1, 64) }
func (v *FloatValue) Accept(vis ValueVisitor) error { return vis.VisitFloat(v) }

func (v FloatValue) Equal(o Value) bool {
	switch other := o.(type) {
	case *FloatValue:
		return v.Value == other.Value
	default:
		return false
	}
}

// Value Type: Boolean

type BooleanValue struct{ Value bool }

func NewBoolean(v bool) *BooleanValue { return &BooleanValue{Value: v} }

func (v BooleanValue) Kind() ValueKind                { return ValueKind_Boolean }
func (v BooleanValue) String() string                 { return strconv.FormatBool(v.Value) }
func (v *BooleanValue) Accept(vis ValueVisitor) error { return vis.VisitBoolean(v) }

func (v BooleanValue) Equal(o Value) bool {
	switch other := o.(type) {
	case *BooleanValue:
		return v.Value == other.Value
	default:
		return false
	}
}

// Value Type: Nil

type NilValue struct{}

func NewNil() *NilValue { return &NilValue{} }

func (v NilValue) Kind() ValueKind                { return ValueKind_Nil }
func (v NilValue) String() string                 { return "nil" }
func (v *NilValue) Accept(vis ValueVisitor) error { return vis.VisitNil(v) }

func (v NilValue) Equal(o Value) bool {
	switch o.(type) {
	case *NilValue:
		return true
	default:
		return false
	}
}

// Value Type: Bytes

type BytesValue struct{ Value []byte }

func NewBytes(v []byte) *BytesValue { return &BytesValue{Value: v} }

// NewBytesString is a shortcut for capturing constants written as
// string literals
func NewBytesString(v string) *BytesValue { return &BytesValue{Value: []byte(v)} }

func (v BytesValue) Kind() ValueKind                { return ValueKind_Bytes }
func (v BytesValue) String() string                 { return strconv.Quote(string(v.Value)) }
func (v *BytesValue) Accept(vis ValueVisitor) error { return vis.VisitBytes(v) }

func (v BytesValue) Equal(o Value) bool {
	switch other := o.(type) {
	case *BytesValue:
		return bytes.Equal(v.Value, other.Value)
	default:
		return false
	}
}

// Value Type: List

type ListValue struct{ Items []Value }

func NewList(items []Value) *ListValue { return &ListValue{Items: items} }

func (v ListValue) Kind() ValueKind                { return ValueKind_List }
func (v *ListValue) Accept(vis ValueVisitor) error { return vis.VisitList(v) }

func (v ListValue) String() string {
	var s strings.Builder
	s.WriteString("{")
	for i, item := range v.Items {
		s.WriteString(item.String())
		if i < len(v.Items)-1 {
			s.WriteString(", ")
		}
	}
	s.WriteString("}")
	return s.String()
}

func (v ListValue) Equal(o Value) bool {
	other, ok := o.(*ListValue)
	if !ok || len(v.Items) != len(other.Items) {
		return false
	}
	for i, item := range v.Items {
		if !item.Equal(other.Items[i]) {
			return false
		}
	}
	return true
}
