// Copyright 2024 The HoraeDB Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package model

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/apache/incubator-horaedb-proto/golang/pkg/storagepb"
)

// DataType enumerates the value types of HoraeDB columns.
type DataType uint8

const (
	DataTypeNull DataType = iota
	// DataTypeTimestamp is a unix timestamp with millisecond precision.
	DataTypeTimestamp
	DataTypeDouble
	DataTypeFloat
	DataTypeVarbinary
	DataTypeString
	DataTypeUint64
	DataTypeUint32
	DataTypeUint16
	DataTypeUint8
	DataTypeInt64
	DataTypeInt32
	DataTypeInt16
	DataTypeInt8
	DataTypeBool
)

// Value is one cell of a tag, a field or a query result column.
type Value struct {
	typ DataType
	i64 int64
	f64 float64
	str string
	bin []byte
}

func NewNullValue() Value               { return Value{typ: DataTypeNull} }
func NewTimestampValue(ms int64) Value  { return Value{typ: DataTypeTimestamp, i64: ms} }
func NewDoubleValue(v float64) Value    { return Value{typ: DataTypeDouble, f64: v} }
func NewFloatValue(v float32) Value     { return Value{typ: DataTypeFloat, f64: float64(v)} }
func NewVarbinaryValue(v []byte) Value  { return Value{typ: DataTypeVarbinary, bin: v} }
func NewStringValue(v string) Value     { return Value{typ: DataTypeString, str: v} }
func NewUint64Value(v uint64) Value     { return Value{typ: DataTypeUint64, i64: int64(v)} }
func NewUint32Value(v uint32) Value     { return Value{typ: DataTypeUint32, i64: int64(v)} }
func NewUint16Value(v uint16) Value     { return Value{typ: DataTypeUint16, i64: int64(v)} }
func NewUint8Value(v uint8) Value       { return Value{typ: DataTypeUint8, i64: int64(v)} }
func NewInt64Value(v int64) Value       { return Value{typ: DataTypeInt64, i64: v} }
func NewInt32Value(v int32) Value       { return Value{typ: DataTypeInt32, i64: int64(v)} }
func NewInt16Value(v int16) Value       { return Value{typ: DataTypeInt16, i64: int64(v)} }
func NewInt8Value(v int8) Value         { return Value{typ: DataTypeInt8, i64: int64(v)} }

func NewBoolValue(v bool) Value {
	val := Value{typ: DataTypeBool}
	if v {
		val.i64 = 1
	}
	return val
}

func (v Value) DataType() DataType { return v.typ }
func (v Value) IsNull() bool       { return v.typ == DataTypeNull }

func (v Value) Timestamp() int64    { return v.i64 }
func (v Value) Double() float64     { return v.f64 }
func (v Value) Float() float32      { return float32(v.f64) }
func (v Value) Varbinary() []byte   { return v.bin }
func (v Value) StringValue() string { return v.str }
func (v Value) Uint64() uint64      { return uint64(v.i64) }
func (v Value) Uint32() uint32      { return uint32(v.i64) }
func (v Value) Uint16() uint16      { return uint16(v.i64) }
func (v Value) Uint8() uint8        { return uint8(v.i64) }
func (v Value) Int64() int64        { return v.i64 }
func (v Value) Int32() int32        { return int32(v.i64) }
func (v Value) Int16() int16        { return int16(v.i64) }
func (v Value) Int8() int8          { return int8(v.i64) }
func (v Value) Bool() bool          { return v.i64 != 0 }

func (v Value) String() string {
	switch v.typ {
	case DataTypeNull:
		return "null"
	case DataTypeTimestamp, DataTypeInt64, DataTypeInt32, DataTypeInt16, DataTypeInt8:
		return fmt.Sprintf("%d", v.i64)
	case DataTypeUint64, DataTypeUint32, DataTypeUint16, DataTypeUint8:
		return fmt.Sprintf("%d", uint64(v.i64))
	case DataTypeDouble:
		return fmt.Sprintf("%v", v.f64)
	case DataTypeFloat:
		return fmt.Sprintf("%v", float32(v.f64))
	case DataTypeVarbinary:
		return fmt.Sprintf("%x", v.bin)
	case DataTypeString:
		return v.str
	case DataTypeBool:
		return fmt.Sprintf("%t", v.i64 != 0)
	default:
		return "unknown"
	}
}

// pbValue converts v into the wire representation. Null values have no wire
// representation and return nil, the point builder rejects them beforehand.
func (v Value) pbValue() *storagepb.Value {
	switch v.typ {
	case DataTypeTimestamp:
		return &storagepb.Value{Value: &storagepb.Value_TimestampValue{TimestampValue: v.i64}}
	case DataTypeDouble:
		return &storagepb.Value{Value: &storagepb.Value_Float64Value{Float64Value: v.f64}}
	case DataTypeFloat:
		return &storagepb.Value{Value: &storagepb.Value_Float32Value{Float32Value: float32(v.f64)}}
	case DataTypeVarbinary:
		return &storagepb.Value{Value: &storagepb.Value_VarbinaryValue{VarbinaryValue: v.bin}}
	case DataTypeString:
		return &storagepb.Value{Value: &storagepb.Value_StringValue{StringValue: v.str}}
	case DataTypeUint64:
		return &storagepb.Value{Value: &storagepb.Value_Uint64Value{Uint64Value: uint64(v.i64)}}
	case DataTypeUint32:
		return &storagepb.Value{Value: &storagepb.Value_Uint32Value{Uint32Value: uint32(v.i64)}}
	case DataTypeUint16:
		return &storagepb.Value{Value: &storagepb.Value_Uint16Value{Uint16Value: uint32(v.i64)}}
	case DataTypeUint8:
		return &storagepb.Value{Value: &storagepb.Value_Uint8Value{Uint8Value: uint32(v.i64)}}
	case DataTypeInt64:
		return &storagepb.Value{Value: &storagepb.Value_Int64Value{Int64Value: v.i64}}
	case DataTypeInt32:
		return &storagepb.Value{Value: &storagepb.Value_Int32Value{Int32Value: int32(v.i64)}}
	case DataTypeInt16:
		return &storagepb.Value{Value: &storagepb.Value_Int16Value{Int16Value: int32(v.i64)}}
	case DataTypeInt8:
		return &storagepb.Value{Value: &storagepb.Value_Int8Value{Int8Value: int32(v.i64)}}
	case DataTypeBool:
		return &storagepb.Value{Value: &storagepb.Value_BoolValue{BoolValue: v.i64 != 0}}
	default:
		return nil
	}
}

// appendTo appends the little endian encoding of v, used to key the series
// a point belongs to.
func (v Value) appendTo(dst []byte) []byte {
	switch v.typ {
	case DataTypeTimestamp, DataTypeUint64, DataTypeInt64:
		return binary.LittleEndian.AppendUint64(dst, uint64(v.i64))
	case DataTypeDouble:
		return binary.LittleEndian.AppendUint64(dst, math.Float64bits(v.f64))
	case DataTypeFloat:
		return binary.LittleEndian.AppendUint32(dst, math.Float32bits(float32(v.f64)))
	case DataTypeVarbinary:
		return append(dst, v.bin...)
	case DataTypeString:
		return append(dst, v.str...)
	case DataTypeUint32, DataTypeInt32:
		return binary.LittleEndian.AppendUint32(dst, uint32(v.i64))
	case DataTypeUint16, DataTypeInt16:
		return binary.LittleEndian.AppendUint16(dst, uint16(v.i64))
	case DataTypeUint8, DataTypeInt8:
		return append(dst, uint8(v.i64))
	case DataTypeBool:
		if v.i64 != 0 {
			return append(dst, 1)
		}
		return append(dst, 0)
	default:
		return dst
	}
}
