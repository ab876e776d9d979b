// Package domain defines the values exchanged with the protocol engine and the
// typed failures the engine client reports.
package domain

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ValueType tags an engine value on the wire.
type ValueType string

const (
	ValueTypeNumber            ValueType = "number"
	ValueTypeText              ValueType = "text"
	ValueTypeProtocolReference ValueType = "protocolReference"
	ValueTypeEnum              ValueType = "enum"
	ValueTypeStruct            ValueType = "struct"
	ValueTypeParty             ValueType = "party"
)

// Value is a tagged engine value. The payload is kept raw until read through an accessor.
type Value struct {
	Type  ValueType       `json:"type"`
	Value json.RawMessage `json:"value"`
}

// Party is the engine representation of a protocol party.
type Party struct {
	Entity map[string][]string `json:"entity"`
	Access map[string][]string `json:"access"`
}

// StructValue is the payload of a struct value.
type StructValue struct {
	TypeName string           `json:"typeName"`
	Fields   map[string]Value `json:"fields"`
}

// EnumValue is the payload of an enum value.
type EnumValue struct {
	TypeName string `json:"typeName"`
	Variant  string `json:"variant"`
}

func newValue(t ValueType, v any) Value {
	// Every payload below is a plain struct, string or number; Marshal cannot fail on them.
	raw, _ := json.Marshal(v)
	return Value{Type: t, Value: raw}
}

func Number(n float64) Value {
	return newValue(ValueTypeNumber, n)
}

func Text(s string) Value {
	return newValue(ValueTypeText, s)
}

func ProtocolReference(id uuid.UUID) Value {
	return newValue(ValueTypeProtocolReference, id)
}

func Enum(typeName, variant string) Value {
	return newValue(ValueTypeEnum, EnumValue{TypeName: typeName, Variant: variant})
}

func Struct(typeName string, fields map[string]Value) Value {
	return newValue(ValueTypeStruct, StructValue{TypeName: typeName, Fields: fields})
}

func PartyValue(p Party) Value {
	return newValue(ValueTypeParty, p)
}

func (v Value) decode(want ValueType, out any) error {
	if v.Type != want {
		return fmt.Errorf("engine value: expected %s, got %q", want, v.Type)
	}
	if err := json.Unmarshal(v.Value, out); err != nil {
		return fmt.Errorf("engine value: decode %s: %w", want, err)
	}
	return nil
}

// AsNumber returns the payload of a number value.
func (v Value) AsNumber() (float64, error) {
	var n float64
	err := v.decode(ValueTypeNumber, &n)
	return n, err
}

// AsText returns the payload of a text value.
func (v Value) AsText() (string, error) {
	var s string
	err := v.decode(ValueTypeText, &s)
	return s, err
}

// AsProtocolReference returns the protocol id referenced by the value.
func (v Value) AsProtocolReference() (uuid.UUID, error) {
	var id uuid.UUID
	err := v.decode(ValueTypeProtocolReference, &id)
	return id, err
}

// AsEnum returns the payload of an enum value.
func (v Value) AsEnum() (EnumValue, error) {
	var e EnumValue
	err := v.decode(ValueTypeEnum, &e)
	return e, err
}

// AsStruct returns the payload of a struct value.
func (v Value) AsStruct() (StructValue, error) {
	var s StructValue
	err := v.decode(ValueTypeStruct, &s)
	return s, err
}

// AsParty returns the payload of a party value.
func (v Value) AsParty() (Party, error) {
	var p Party
	err := v.decode(ValueTypeParty, &p)
	return p, err
}
