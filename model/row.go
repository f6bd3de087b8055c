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
	"bytes"
	"fmt"

	"github.com/apache/incubator-horaedb-proto/golang/pkg/storagepb"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/klauspost/compress/zstd"
)

// Column is one named cell of a result row.
type Column struct {
	Name  string
	Value Value
}

// Row is one result row of a select, columns keep the order of the result
// schema.
type Row struct {
	columns []Column
}

func (r Row) Columns() []Column {
	return r.columns
}

func (r Row) Column(name string) (Column, bool) {
	for _, col := range r.columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

func rowsFromArrowPayload(payload *storagepb.ArrowPayload) ([]Row, error) {
	var rows []Row
	for _, batch := range payload.GetRecordBatches() {
		data, err := decompressBatch(batch, payload.GetCompression())
		if err != nil {
			return nil, err
		}

		// One byte batch may hold multiple record batches.
		reader, err := ipc.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("open arrow ipc stream: %w", err)
		}
		for reader.Next() {
			recordRows, err := rowsFromRecord(reader.Record())
			if err != nil {
				reader.Release()
				return nil, err
			}
			rows = append(rows, recordRows...)
		}
		err = reader.Err()
		reader.Release()
		if err != nil {
			return nil, fmt.Errorf("read arrow ipc stream: %w", err)
		}
	}
	return rows, nil
}

func decompressBatch(batch []byte, compression storagepb.ArrowPayload_Compression) ([]byte, error) {
	switch compression {
	case storagepb.ArrowPayload_NONE:
		return batch, nil
	case storagepb.ArrowPayload_ZSTD:
		decoder, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer decoder.Close()
		return decoder.DecodeAll(batch, nil)
	default:
		return nil, fmt.Errorf("unsupported compression: %v", compression)
	}
}

func rowsFromRecord(record arrow.Record) ([]Row, error) {
	numRows := int(record.NumRows())
	numCols := int(record.NumCols())

	// Cells start out null and are filled column by column.
	cells := make([][]Value, numRows)
	for i := range cells {
		row := make([]Value, numCols)
		for j := range row {
			row[j] = NewNullValue()
		}
		cells[i] = row
	}
	for colIdx := 0; colIdx < numCols; colIdx++ {
		if err := fillColumn(cells, colIdx, record.Column(colIdx)); err != nil {
			return nil, err
		}
	}

	schema := record.Schema()
	rows := make([]Row, numRows)
	for rowIdx := range rows {
		columns := make([]Column, numCols)
		for colIdx := range columns {
			columns[colIdx] = Column{
				Name:  schema.Field(colIdx).Name,
				Value: cells[rowIdx][colIdx],
			}
		}
		rows[rowIdx] = Row{columns: columns}
	}
	return rows, nil
}

func fillColumn(cells [][]Value, colIdx int, col arrow.Array) error {
	fill := func(i int, v Value) {
		cells[i][colIdx] = v
	}

	switch arr := col.(type) {
	case *array.Null:
		// Cells are already null.
	case *array.Boolean:
		for i := 0; i < arr.Len(); i++ {
			if !arr.IsNull(i) {
				fill(i, NewBoolValue(arr.Value(i)))
			}
		}
	case *array.Int8:
		for i := 0; i < arr.Len(); i++ {
			if !arr.IsNull(i) {
				fill(i, NewInt8Value(arr.Value(i)))
			}
		}
	case *array.Int16:
		for i := 0; i < arr.Len(); i++ {
			if !arr.IsNull(i) {
				fill(i, NewInt16Value(arr.Value(i)))
			}
		}
	case *array.Int32:
		for i := 0; i < arr.Len(); i++ {
			if !arr.IsNull(i) {
				fill(i, NewInt32Value(arr.Value(i)))
			}
		}
	case *array.Int64:
		for i := 0; i < arr.Len(); i++ {
			if !arr.IsNull(i) {
				fill(i, NewInt64Value(arr.Value(i)))
			}
		}
	case *array.Uint8:
		for i := 0; i < arr.Len(); i++ {
			if !arr.IsNull(i) {
				fill(i, NewUint8Value(arr.Value(i)))
			}
		}
	case *array.Uint16:
		for i := 0; i < arr.Len(); i++ {
			if !arr.IsNull(i) {
				fill(i, NewUint16Value(arr.Value(i)))
			}
		}
	case *array.Uint32:
		for i := 0; i < arr.Len(); i++ {
			if !arr.IsNull(i) {
				fill(i, NewUint32Value(arr.Value(i)))
			}
		}
	case *array.Uint64:
		for i := 0; i < arr.Len(); i++ {
			if !arr.IsNull(i) {
				fill(i, NewUint64Value(arr.Value(i)))
			}
		}
	case *array.Float32:
		for i := 0; i < arr.Len(); i++ {
			if !arr.IsNull(i) {
				fill(i, NewFloatValue(arr.Value(i)))
			}
		}
	case *array.Float64:
		for i := 0; i < arr.Len(); i++ {
			if !arr.IsNull(i) {
				fill(i, NewDoubleValue(arr.Value(i)))
			}
		}
	case *array.String:
		for i := 0; i < arr.Len(); i++ {
			if !arr.IsNull(i) {
				fill(i, NewStringValue(arr.Value(i)))
			}
		}
	case *array.LargeString:
		for i := 0; i < arr.Len(); i++ {
			if !arr.IsNull(i) {
				fill(i, NewStringValue(arr.Value(i)))
			}
		}
	case *array.Binary:
		for i := 0; i < arr.Len(); i++ {
			if !arr.IsNull(i) {
				fill(i, NewVarbinaryValue(arr.Value(i)))
			}
		}
	case *array.LargeBinary:
		for i := 0; i < arr.Len(); i++ {
			if !arr.IsNull(i) {
				fill(i, NewVarbinaryValue(arr.Value(i)))
			}
		}
	case *array.Timestamp:
		// The server always produces millisecond timestamps.
		for i := 0; i < arr.Len(); i++ {
			if !arr.IsNull(i) {
				fill(i, NewTimestampValue(int64(arr.Value(i))))
			}
		}
	case *array.Time32:
		for i := 0; i < arr.Len(); i++ {
			if !arr.IsNull(i) {
				fill(i, NewTimestampValue(int64(arr.Value(i))))
			}
		}
	default:
		return fmt.Errorf("unsupported arrow column type: %s", col.DataType())
	}
	return nil
}
