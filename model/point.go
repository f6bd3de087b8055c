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
	"fmt"
	"strings"

	"github.com/apache/horaedb-client-go/errs"
)

const (
	reservedColumnTsid      = "tsid"
	reservedColumnTimestamp = "timestamp"
)

// IsReservedColumn reports whether name is a column maintained by the server
// itself and therefore unusable as a tag or field name.
func IsReservedColumn(name string) bool {
	return strings.EqualFold(name, reservedColumnTsid) ||
		strings.EqualFold(name, reservedColumnTimestamp)
}

// Point is one datum of a table: a timestamp, the tags identifying its
// series and the field values measured at that time.
type Point struct {
	Table     string
	Timestamp int64
	Tags      map[string]Value
	Fields    map[string]Value
}

// PointBuilder assembles one point. Errors are deferred to Build so calls
// can chain.
type PointBuilder struct {
	point        Point
	hasTimestamp bool
	err          error
}

func NewPointBuilder(table string) *PointBuilder {
	return &PointBuilder{
		point: Point{
			Table:  table,
			Tags:   make(map[string]Value),
			Fields: make(map[string]Value),
		},
	}
}

// SetTimestamp sets the timestamp of the point in milliseconds.
func (b *PointBuilder) SetTimestamp(ms int64) *PointBuilder {
	b.point.Timestamp = ms
	b.hasTimestamp = true
	return b
}

func (b *PointBuilder) AddTag(name string, val Value) *PointBuilder {
	if b.err != nil {
		return b
	}
	if err := checkColumn(name, val); err != nil {
		b.err = err
		return b
	}
	b.point.Tags[name] = val
	return b
}

func (b *PointBuilder) AddField(name string, val Value) *PointBuilder {
	if b.err != nil {
		return b
	}
	if err := checkColumn(name, val); err != nil {
		b.err = err
		return b
	}
	b.point.Fields[name] = val
	return b
}

func (b *PointBuilder) Build() (Point, error) {
	if b.err != nil {
		return Point{}, b.err
	}
	if b.point.Table == "" {
		return Point{}, errs.ErrEmptyPointTable
	}
	if !b.hasTimestamp {
		return Point{}, errs.ErrNoTimestamp
	}
	if len(b.point.Fields) == 0 {
		return Point{}, errs.ErrEmptyFields
	}
	return b.point, nil
}

func checkColumn(name string, val Value) error {
	if IsReservedColumn(name) {
		return fmt.Errorf("%w: %s", errs.ErrReservedColumn, name)
	}
	if val.IsNull() {
		return fmt.Errorf("%w: %s", errs.ErrNullValue, name)
	}
	return nil
}
